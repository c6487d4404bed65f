package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"

	appConfig "redshift-sales-loader/internal/config"
	s3service "redshift-sales-loader/internal/services/s3"
	"redshift-sales-loader/internal/utils"
)

const uploadURLExpiry = time.Hour

// URLPresigner issues presigned upload URLs.
type URLPresigner interface {
	GeneratePresignedUploadURL(ctx context.Context, key string, contentType string, expiry time.Duration) (*s3service.PresignedURLResult, error)
}

// PresignedURLHandler hands out upload URLs into the landing bucket.
type PresignedURLHandler struct {
	presigner URLPresigner
	now       func() time.Time
}

// NewPresignedURLHandler creates a new presigned URL handler.
func NewPresignedURLHandler(ctx context.Context) (*PresignedURLHandler, error) {
	cfg, err := appConfig.Load()
	if err != nil {
		return nil, err
	}

	svc, err := s3service.NewService(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return NewPresignedURLHandlerWithPresigner(svc), nil
}

// NewPresignedURLHandlerWithPresigner creates a handler around p.
func NewPresignedURLHandlerWithPresigner(p URLPresigner) *PresignedURLHandler {
	return &PresignedURLHandler{presigner: p, now: time.Now}
}

// PresignedURLResponse is the response structure for presigned URL requests.
type PresignedURLResponse struct {
	UploadURL string `json:"uploadUrl"`
	S3Key     string `json:"s3Key"`
	ExpiresIn int    `json:"expiresIn"`
}

// Handle processes the API Gateway request for generating presigned URLs.
func (h *PresignedURLHandler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	headers := map[string]string{
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Headers": "Content-Type,Authorization",
		"Access-Control-Allow-Methods": "GET,OPTIONS",
		"Content-Type":                 "application/json",
	}

	if request.HTTPMethod == http.MethodOptions {
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusOK,
			Headers:    headers,
		}, nil
	}

	statusCode, payload := h.Issue(ctx, request.QueryStringParameters["filename"])
	body, _ := json.Marshal(payload)

	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers:    headers,
		Body:       string(body),
	}, nil
}

// Issue presigns an upload for filename and returns the status and JSON payload.
func (h *PresignedURLHandler) Issue(ctx context.Context, filename string) (int, interface{}) {
	logger := utils.GetLogger()

	if filename == "" {
		filename = "vendas.csv"
	}
	if !strings.HasSuffix(strings.ToLower(filename), ".csv") {
		return errorPayload(http.StatusBadRequest, "Only CSV files are allowed")
	}

	key := s3service.UploadKey(filename, h.now())
	result, err := h.presigner.GeneratePresignedUploadURL(ctx, key, "text/csv", uploadURLExpiry)
	if err != nil {
		logger.Error("Failed to generate presigned URL", utils.Error(err))
		return errorPayload(http.StatusInternalServerError, "Failed to generate upload URL")
	}

	return http.StatusOK, PresignedURLResponse{
		UploadURL: result.URL,
		S3Key:     result.Key,
		ExpiresIn: int(uploadURLExpiry / time.Second),
	}
}

func errorPayload(statusCode int, message string) (int, interface{}) {
	return statusCode, map[string]string{
		"error":   http.StatusText(statusCode),
		"message": message,
	}
}
