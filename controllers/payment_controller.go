package controllers

import (
	"net/http"

	"github.com/amalmariyasibi/OnlineMedicalStore-sub002/middleware"
	"github.com/amalmariyasibi/OnlineMedicalStore-sub002/models"
	"github.com/amalmariyasibi/OnlineMedicalStore-sub002/services"

	"github.com/gin-gonic/gin"
)

// PaymentController handles HTTP requests for the payment core.
type PaymentController struct {
	paymentService services.PaymentService
}

// NewPaymentController creates a new PaymentController.
func NewPaymentController(svc services.PaymentService) *PaymentController {
	return &PaymentController{paymentService: svc}
}

// CreateOrder handles POST /payment/create-order
func (pc *PaymentController) CreateOrder(c *gin.Context) {
	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	if req.UserID == "" {
		req.UserID = middleware.GetUserID(c)
	}

	order, svcErr := pc.paymentService.CreateOrder(c.Request.Context(), &req)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"success": false, "error": svcErr.Message})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "order": order})
}

// VerifyPayment handles POST /payment/verify
func (pc *PaymentController) VerifyPayment(c *gin.Context) {
	var req models.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	result, svcErr := pc.paymentService.VerifyPayment(c.Request.Context(), &req)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"success": false, "error": svcErr.Message})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "payment": result})
}

// GetPayment handles GET /payment/payment/:paymentId
func (pc *PaymentController) GetPayment(c *gin.Context) {
	paymentID := c.Param("paymentId")

	payment, svcErr := pc.paymentService.GetPayment(c.Request.Context(), paymentID)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"success": false, "error": svcErr.Message})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "payment": payment})
}

// Config handles GET /payment/config. Diagnostic only: credential presence
// booleans and a truncated key id, never secret values.
func (pc *PaymentController) Config(c *gin.Context) {
	c.JSON(http.StatusOK, pc.paymentService.ConfigStatus())
}
