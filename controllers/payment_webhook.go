package controllers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

const webhookSignatureHeader = "X-Razorpay-Signature"

// Webhook handles POST /payment/webhook. The body must be read raw: the
// signature covers the exact bytes the gateway sent.
func (pc *PaymentController) Webhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read webhook body"})
		return
	}

	signature := c.GetHeader(webhookSignatureHeader)
	if svcErr := pc.paymentService.HandleWebhook(c.Request.Context(), body, signature); svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
