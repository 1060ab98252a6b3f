package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DeliveryStatus represents the delivery status of a notification
type DeliveryStatus string

const (
	StatusDelivered DeliveryStatus = "DELIVERED"
	StatusFailed    DeliveryStatus = "FAILED"
	StatusPending   DeliveryStatus = "PENDING"
)

// SendRequest represents the request to deliver a notification
type SendRequest struct {
	NotificationID string `json:"notification_id" binding:"required"`
	RecipientID    int64  `json:"recipient_id" binding:"required"`
	Type           string `json:"type" binding:"required"`
	Title          string `json:"title"`
	Message        string `json:"message"`
	JobID          *int64 `json:"job_id"`
}

// SendResponse represents the response from delivering a notification
type SendResponse struct {
	NotificationID string         `json:"notification_id"`
	Status         DeliveryStatus `json:"status"`
	DeliveredAt    *time.Time     `json:"delivered_at,omitempty"`
	ErrorCode      string         `json:"error_code,omitempty"`
	ErrorMsg       string         `json:"error_message,omitempty"`
	ProviderID     string         `json:"provider_id"`
	ProcessedAt    time.Time      `json:"processed_at"`
}

// StatusCheckResponse represents delivery status response
type StatusCheckResponse struct {
	NotificationID string         `json:"notification_id"`
	Status         DeliveryStatus `json:"status"`
	DeliveredAt    *time.Time     `json:"delivered_at,omitempty"`
	ErrorCode      string         `json:"error_code,omitempty"`
	ErrorMsg       string         `json:"error_message,omitempty"`
	ProviderID     string         `json:"provider_id"`
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status       string    `json:"status"`
	ProviderID   string    `json:"provider_id"`
	Timestamp    time.Time `json:"timestamp"`
	DeliveryRate float64   `json:"delivery_rate"`
}

// MockProvider simulates a push/in-app notification delivery service
type MockProvider struct {
	deliveryRate float64
	minDelay     time.Duration
	maxDelay     time.Duration
	providerID   string
	rng          *rand.Rand
}

// NewMockProvider creates a new mock provider instance
func NewMockProvider(deliveryRate float64, minDelay, maxDelay time.Duration) *MockProvider {
	return &MockProvider{
		deliveryRate: deliveryRate,
		minDelay:     minDelay,
		maxDelay:     maxDelay,
		providerID:   "MOCK_PROVIDER_" + uuid.New().String()[:8],
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// simulateDelivery simulates the notification delivery process
func (m *MockProvider) simulateDelivery(req *SendRequest) *SendResponse {
	delay := m.randomDelay()

	// Simulate network delay
	time.Sleep(delay)

	response := &SendResponse{
		NotificationID: req.NotificationID,
		ProviderID:     m.providerID,
		ProcessedAt:    time.Now(),
	}

	// Determine success or failure
	if m.shouldSucceed() {
		now := time.Now()
		response.Status = StatusDelivered
		response.DeliveredAt = &now

		log.Info().
			Str("notification_id", req.NotificationID).
			Int64("recipient_id", req.RecipientID).
			Str("type", req.Type).
			Dur("delay", delay).
			Msg("Notification delivered successfully")
	} else {
		response.Status = StatusFailed
		response.ErrorCode = m.randomErrorCode()
		response.ErrorMsg = m.errorMessage(response.ErrorCode)

		log.Warn().
			Str("notification_id", req.NotificationID).
			Int64("recipient_id", req.RecipientID).
			Str("error_code", response.ErrorCode).
			Msg("Notification delivery failed")
	}

	return response
}

func (m *MockProvider) randomDelay() time.Duration {
	delta := m.maxDelay - m.minDelay
	randomDelta := time.Duration(m.rng.Int63n(int64(delta)))
	return m.minDelay + randomDelta
}

func (m *MockProvider) shouldSucceed() bool {
	return m.rng.Float64() < m.deliveryRate
}

func (m *MockProvider) randomErrorCode() string {
	errorCodes := []string{
		"UNKNOWN_RECIPIENT",
		"NETWORK_ERROR",
		"TIMEOUT",
		"DEVICE_UNREACHABLE",
		"INVALID_PAYLOAD",
		"PROVIDER_REJECTED",
	}
	return errorCodes[m.rng.Intn(len(errorCodes))]
}

func (m *MockProvider) errorMessage(code string) string {
	messages := map[string]string{
		"UNKNOWN_RECIPIENT":  "The recipient is unknown or has no registered device",
		"NETWORK_ERROR":      "Network connectivity issue with provider",
		"TIMEOUT":            "Notification delivery timed out",
		"DEVICE_UNREACHABLE": "The recipient's device is unreachable",
		"INVALID_PAYLOAD":    "Notification payload violates provider policies",
		"PROVIDER_REJECTED":  "Provider rejected the notification",
	}

	if msg, ok := messages[code]; ok {
		return msg
	}
	return "Unknown error occurred"
}

// Handler struct holds the mock provider and routes
type Handler struct {
	provider *MockProvider
}

func NewHandler(provider *MockProvider) *Handler {
	return &Handler{provider: provider}
}

// SendNotification handles single notification delivery requests
func (h *Handler) SendNotification(c *gin.Context) {
	var req SendRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	log.Info().
		Str("notification_id", req.NotificationID).
		Int64("recipient_id", req.RecipientID).
		Str("type", req.Type).
		Msg("Received notification send request")

	response := h.provider.simulateDelivery(&req)

	statusCode := http.StatusOK
	if response.Status == StatusFailed {
		statusCode = http.StatusAccepted // 202: accepted but failed delivery
	}

	c.JSON(statusCode, response)
}

// GetStatus handles delivery status check requests
func (h *Handler) GetStatus(c *gin.Context) {
	notificationID := c.Param("notification_id")

	if notificationID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "notification_id is required",
		})
		return
	}

	// Simulate API delay
	time.Sleep(100 * time.Millisecond)

	// For demo, return random status
	response := StatusCheckResponse{
		NotificationID: notificationID,
		ProviderID:     h.provider.providerID,
	}

	if h.provider.shouldSucceed() {
		now := time.Now()
		response.Status = StatusDelivered
		response.DeliveredAt = &now
	} else {
		response.Status = StatusFailed
		response.ErrorCode = "TIMEOUT"
		response.ErrorMsg = "Notification delivery timed out"
	}

	c.JSON(http.StatusOK, response)
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(c *gin.Context) {
	// Simulate 5% downtime
	if h.provider.rng.Float64() < 0.05 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"error":  "Provider temporarily unavailable",
		})
		return
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:       "healthy",
		ProviderID:   h.provider.providerID,
		Timestamp:    time.Now(),
		DeliveryRate: h.provider.deliveryRate,
	})
}

// UpdateConfig allows changing provider configuration at runtime
func (h *Handler) UpdateConfig(c *gin.Context) {
	var config struct {
		DeliveryRate *float64 `json:"delivery_rate"`
	}

	if err := c.ShouldBindJSON(&config); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	if config.DeliveryRate != nil {
		if *config.DeliveryRate >= 0 && *config.DeliveryRate <= 1.0 {
			h.provider.deliveryRate = *config.DeliveryRate
			log.Info().Float64("rate", *config.DeliveryRate).Msg("Updated delivery rate")
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "Configuration updated",
		"delivery_rate": h.provider.deliveryRate,
	})
}

// SetupRouter configures all routes
func SetupRouter(handler *Handler) *gin.Engine {
	router := gin.Default()

	// Add request logging middleware
	router.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)

		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", duration).
			Msg("Request processed")
	})

	// API routes
	v1 := router.Group("/api/v1")
	{
		v1.POST("/notifications/send", handler.SendNotification)
		v1.GET("/notifications/status/:notification_id", handler.GetStatus)
		v1.GET("/health", handler.HealthCheck)
		v1.PUT("/config", handler.UpdateConfig)
	}

	// Root health check
	router.GET("/health", handler.HealthCheck)

	return router
}

func main() {
	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Get configuration from environment
	port := getEnv("PORT", "8081")
	deliveryRate := getEnvFloat("DELIVERY_RATE", 1)
	minDelay := getEnvDuration("MIN_DELAY", 100*time.Millisecond)
	maxDelay := getEnvDuration("MAX_DELAY", 1*time.Second)

	log.Info().
		Str("port", port).
		Float64("delivery_rate", deliveryRate).
		Dur("min_delay", minDelay).
		Dur("max_delay", maxDelay).
		Msg("Starting Mock Notification Provider")

	// Create mock provider
	provider := NewMockProvider(deliveryRate, minDelay, maxDelay)
	handler := NewHandler(provider)
	router := SetupRouter(handler)

	// Setup HTTP server
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		var f float64
		if _, err := fmt.Sscanf(value, "%f", &f); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
