package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"

	appConfig "redshift-sales-loader/internal/config"
	"redshift-sales-loader/internal/services/warehouse"
)

// Pinger checks warehouse reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	warehouse Pinger
	stage     string
}

// NewHealthHandler creates a new health handler. Without valid warehouse
// settings the handler still answers, reporting the warehouse as not configured.
func NewHealthHandler() (*HealthHandler, error) {
	cfg, err := appConfig.Load()
	if err != nil {
		return &HealthHandler{stage: getEnvOrDefault("STAGE", "unknown")}, nil
	}

	h := &HealthHandler{stage: cfg.Stage}
	if cfg.Validate() == nil {
		h.warehouse = warehouse.New(cfg)
	}
	return h, nil
}

// NewHealthHandlerWithPinger creates a health handler around p.
func NewHealthHandlerWithPinger(p Pinger, stage string) *HealthHandler {
	return &HealthHandler{warehouse: p, stage: stage}
}

// HealthResponse is the response structure for health checks.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Service   string `json:"service"`
	Version   string `json:"version"`
	Stage     string `json:"stage"`
	Warehouse string `json:"warehouse"`
}

// Check reports service and warehouse status.
func (h *HealthHandler) Check(ctx context.Context) (int, HealthResponse) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Service:   "redshift-sales-loader",
		Version:   getEnvOrDefault("SERVICE_VERSION", "1.0.0"),
		Stage:     h.stage,
	}

	switch {
	case h.warehouse == nil:
		response.Warehouse = "not configured"
		response.Status = "degraded"
	case h.warehouse.Ping(ctx) != nil:
		response.Warehouse = "unreachable"
		response.Status = "degraded"
	default:
		response.Warehouse = "connected"
	}

	if response.Status != "healthy" {
		return http.StatusServiceUnavailable, response
	}
	return http.StatusOK, response
}

// Handle processes health check requests.
func (h *HealthHandler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	headers := map[string]string{
		"Access-Control-Allow-Origin": "*",
		"Content-Type":                "application/json",
	}

	statusCode, response := h.Check(ctx)
	body, _ := json.Marshal(response)

	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers:    headers,
		Body:       string(body),
	}, nil
}

// getEnvOrDefault returns environment variable or default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
