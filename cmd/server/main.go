// Package main provides a local HTTP server for development and testing.
// It feeds S3 event JSON to the loader so a COPY can be tried without
// deploying the Lambda functions.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/cors"

	"redshift-sales-loader/internal/config"
	"redshift-sales-loader/internal/handlers"
	"redshift-sales-loader/internal/services/warehouse"
	"redshift-sales-loader/internal/utils"
)

// Server holds all dependencies
type Server struct {
	loader    *handlers.LoaderHandler
	health    *handlers.HealthHandler
	presigned *handlers.PresignedURLHandler
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := utils.InitLogger(cfg.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer utils.Sync()

	server := &Server{}

	if err := cfg.Validate(); err != nil {
		log.Printf("Warning: %v", err)
		log.Println("Server will run without the loader endpoint")
		server.health = handlers.NewHealthHandlerWithPinger(nil, cfg.Stage)
	} else {
		wh := warehouse.New(cfg)
		server.loader = handlers.NewLoaderHandlerWithConfig(cfg, wh, nil)
		server.health = handlers.NewHealthHandlerWithPinger(wh, cfg.Stage)
	}

	if cfg.UploadBucket != "" {
		presigned, err := handlers.NewPresignedURLHandler(context.Background())
		if err != nil {
			log.Printf("Warning: Could not initialize presigned URL handler: %v", err)
		}
		server.presigned = presigned
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", server.healthHandler)
	mux.HandleFunc("/api/health", server.healthHandler)
	mux.HandleFunc("/api/load", server.loadHandler)
	mux.HandleFunc("/api/presigned-url", server.presignedURLHandler)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})

	port := getEnvOrDefault("PORT", "8080")
	addr := fmt.Sprintf("0.0.0.0:%s", port)

	log.Printf("Redshift Sales Loader dev server")
	log.Printf("Listening on http://localhost:%s", port)

	srv := &http.Server{
		Addr:              addr,
		Handler:           c.Handler(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status, response := s.health.Check(r.Context())
	writeJSON(w, status, response)
}

// loadHandler accepts an S3 event notification as the request body.
func (s *Server) loadHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "POST required"})
		return
	}
	if s.loader == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "warehouse not configured"})
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	var event events.S3Event
	if err := json.Unmarshal(body, &event); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid S3 event: " + err.Error()})
		return
	}

	result, _ := s.loader.Handle(r.Context(), event)
	writeJSON(w, result.StatusCode, result)
}

func (s *Server) presignedURLHandler(w http.ResponseWriter, r *http.Request) {
	if s.presigned == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "UPLOAD_BUCKET not configured"})
		return
	}
	status, payload := s.presigned.Issue(r.Context(), r.URL.Query().Get("filename"))
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}
