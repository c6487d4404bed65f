package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	s3service "redshift-sales-loader/internal/services/s3"
)

type stubPresigner struct {
	key    string
	expiry time.Duration
	err    error
}

func (p *stubPresigner) GeneratePresignedUploadURL(ctx context.Context, key string, contentType string, expiry time.Duration) (*s3service.PresignedURLResult, error) {
	p.key = key
	p.expiry = expiry
	if p.err != nil {
		return nil, p.err
	}
	return &s3service.PresignedURLResult{
		URL: "https://sales-data.s3.amazonaws.com/" + key + "?X-Amz-Signature=abc",
		Key: key,
	}, nil
}

func presignRequest(filename string) events.APIGatewayProxyRequest {
	return events.APIGatewayProxyRequest{
		HTTPMethod:            http.MethodGet,
		QueryStringParameters: map[string]string{"filename": filename},
	}
}

func TestPresignedURLHandler_Issues(t *testing.T) {
	presigner := &stubPresigner{}
	h := NewPresignedURLHandlerWithPresigner(presigner)
	h.now = func() time.Time { return time.Date(2024, 1, 31, 12, 0, 0, 0, time.UTC) }

	resp, err := h.Handle(context.Background(), presignRequest("jan.csv"))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body PresignedURLResponse
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &body))

	assert.True(t, strings.HasPrefix(body.S3Key, "uploads/2024/01/31/"), body.S3Key)
	assert.True(t, strings.HasSuffix(body.S3Key, "_jan.csv"), body.S3Key)
	assert.Equal(t, presigner.key, body.S3Key)
	assert.Equal(t, 3600, body.ExpiresIn)
	assert.Equal(t, time.Hour, presigner.expiry)
	assert.Contains(t, body.UploadURL, "X-Amz-Signature")
}

func TestPresignedURLHandler_RejectsNonCSV(t *testing.T) {
	presigner := &stubPresigner{}
	h := NewPresignedURLHandlerWithPresigner(presigner)

	resp, err := h.Handle(context.Background(), presignRequest("jan.xlsx"))
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, presigner.key)
}

func TestPresignedURLHandler_DefaultFilename(t *testing.T) {
	h := NewPresignedURLHandlerWithPresigner(&stubPresigner{})

	status, payload := h.Issue(context.Background(), "")
	require.Equal(t, http.StatusOK, status)
	assert.True(t, strings.HasSuffix(payload.(PresignedURLResponse).S3Key, "_vendas.csv"))
}

func TestPresignedURLHandler_PresignFailure(t *testing.T) {
	observeLogs(t)
	h := NewPresignedURLHandlerWithPresigner(&stubPresigner{err: errors.New("no credentials")})

	resp, err := h.Handle(context.Background(), presignRequest("jan.csv"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestPresignedURLHandler_Options(t *testing.T) {
	h := NewPresignedURLHandlerWithPresigner(&stubPresigner{})

	resp, err := h.Handle(context.Background(), events.APIGatewayProxyRequest{HTTPMethod: http.MethodOptions})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "GET,OPTIONS", resp.Headers["Access-Control-Allow-Methods"])
}
