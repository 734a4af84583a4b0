package routes

import (
	"net/http"

	"github.com/amalmariyasibi/OnlineMedicalStore-sub002/controllers"
	"github.com/amalmariyasibi/OnlineMedicalStore-sub002/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterPaymentRoutes(r *gin.Engine, pc *controllers.PaymentController) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	payment := r.Group("/payment")

	// Gateway webhook: no auth, no rate limiting (gateway retries must land).
	payment.POST("/webhook", pc.Webhook)
	payment.GET("/config", pc.Config)

	secured := payment.Group("")
	secured.Use(middleware.RateLimitMiddleware(), middleware.AuthMiddleware())
	secured.POST("/create-order", pc.CreateOrder)
	secured.POST("/verify", pc.VerifyPayment)
	secured.GET("/payment/:paymentId", pc.GetPayment)
}
