package main

import (
	"context"
	"log"

	"github.com/amalmariyasibi/OnlineMedicalStore-sub002/config"
	"github.com/amalmariyasibi/OnlineMedicalStore-sub002/controllers"
	"github.com/amalmariyasibi/OnlineMedicalStore-sub002/database"
	"github.com/amalmariyasibi/OnlineMedicalStore-sub002/gateway"
	"github.com/amalmariyasibi/OnlineMedicalStore-sub002/middleware"
	"github.com/amalmariyasibi/OnlineMedicalStore-sub002/models"
	aws_pkg "github.com/amalmariyasibi/OnlineMedicalStore-sub002/pkg/aws"
	"github.com/amalmariyasibi/OnlineMedicalStore-sub002/repository"
	"github.com/amalmariyasibi/OnlineMedicalStore-sub002/routes"
	"github.com/amalmariyasibi/OnlineMedicalStore-sub002/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("[PaymentService] Failed to load config:", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("[PaymentService] Failed to initialize logger:", err)
	}
	defer logger.Sync()

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to DB", zap.Error(err))
	}
	if err := db.AutoMigrate(&models.PaymentOrder{}); err != nil {
		logger.Fatal("Failed to migrate PaymentOrder model", zap.Error(err))
	}

	if cfg.RazorpayKeyID == "" || cfg.RazorpayKeySecret == "" {
		logger.Warn("Razorpay credentials not configured; payment operations will fail until set")
	}

	// Notification collaborator is best-effort: a missing SNS setup degrades
	// to log-only operation, it never blocks payments.
	var snsPublisher aws_pkg.SNSPublisher
	if cfg.PaymentSNSTopicARN != "" {
		awsCfg, awsErr := aws_pkg.LoadAWSConfig(context.Background())
		if awsErr != nil {
			logger.Warn("Failed to load AWS config; payment events disabled", zap.Error(awsErr))
		} else {
			snsPublisher = aws_pkg.NewSNSClient(awsCfg)
		}
	}

	gatewayClient := gateway.NewRazorpayClient(cfg.RazorpayKeyID, cfg.RazorpayKeySecret, cfg.GatewayTimeoutSeconds)
	orderRepo := repository.NewGormOrderRepository(db)
	paymentSvc := services.NewPaymentService(
		gatewayClient,
		orderRepo,
		snsPublisher,
		cfg.PaymentSNSTopicARN,
		services.Credentials{
			KeyID:         cfg.RazorpayKeyID,
			KeySecret:     cfg.RazorpayKeySecret,
			WebhookSecret: cfg.RazorpayWebhookSecret,
		},
		logger,
	)
	pc := controllers.NewPaymentController(paymentSvc)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(logger))
	routes.RegisterPaymentRoutes(r, pc)

	logger.Info("Payment service running", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}
