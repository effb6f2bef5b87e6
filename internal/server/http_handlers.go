package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"time"

	growthosErrors "growthos/internal/errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const healthCheckTimeout = 5 * time.Second

// healthHandler reports dependency status. A configured store that cannot be reached marks the service degraded.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"status":  "healthy",
		"service": "growthos",
		"version": s.Version,
	}

	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	storeStatus := map[string]any{"enabled": s.Store.Enabled()}
	healthy := true
	if s.Store.Enabled() {
		if err := s.Store.Ping(ctx); err != nil {
			storeStatus["reachable"] = false
			storeStatus["error"] = "database ping failed"
			s.Logger.LogError(err, "Health check database ping failed")
			healthy = false
		} else {
			storeStatus["reachable"] = true
		}
	}
	response["store"] = storeStatus

	aiStatus := map[string]any{"enabled": s.AI.Enabled()}
	if s.AI.Enabled() {
		aiStatus["model"] = s.AI.GetModelInfo(ctx)
	}
	response["ai"] = aiStatus
	response["circuit_breakers"] = s.AI.BreakerStats()
	response["sessions_enabled"] = s.Sessions.Enabled()

	status := http.StatusOK
	if !healthy {
		response["status"] = "degraded"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, response)
}

// statsHandler provides server statistics including rate limiting info
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"service": "growthos",
		"version": s.Version,
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
		},
		"circuit_breakers": s.AI.BreakerStats(),
	}

	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{
			"enabled": false,
		}
	}

	response["rate_limit_config"] = map[string]any{
		"enabled":          s.RateLimit.Enabled,
		"requests_per_min": s.RateLimit.RequestsPerMin,
		"burst_capacity":   s.RateLimit.BurstCapacity,
		"by_ip":            s.RateLimit.ByIP,
	}

	if s.Prompts != nil {
		response["prompt_files"] = s.Prompts.Files()
	}

	writeJSON(w, http.StatusOK, response)
}

// tracer returns the API tracer, a no-op one when observability is off
func (s *Server) tracer() trace.Tracer {
	return s.Observability.Tracer("growthos.api")
}

// parseJSONRequest parses JSON request body into the provided struct
func parseJSONRequest(r *http.Request, v any) error {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return fmt.Errorf("content-type must be application/json")
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return fmt.Errorf("request body too large (limit is %d bytes)", maxBytesErr.Limit)
		}
		return fmt.Errorf("failed to read request body: %w", err)
	}
	defer func() {
		if err := r.Body.Close(); err != nil {
			log.Printf("Failed to close request body: %v", err)
		}
	}()

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}

	return nil
}

// writeJSON writes v as the JSON response body
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, error, message string, statusCode int) {
	writeJSON(w, statusCode, ErrorResponse{
		Error:   error,
		Message: message,
	})
}

// writeAppError maps err onto the HTTP error contract. Client errors echo their
// message; dependency failures are logged and answered with a generic message.
func (s *Server) writeAppError(w http.ResponseWriter, span trace.Span, err error, summary string) {
	span.RecordError(err)

	appErr, ok := growthosErrors.As(err)
	if !ok {
		span.SetAttributes(attribute.String("error.type", string(growthosErrors.ErrorTypeInternal)))
		s.Logger.LogError(err, summary)
		writeErrorResponse(w, summary, "An unexpected error occurred. Please try again.", http.StatusInternalServerError)
		return
	}
	span.SetAttributes(attribute.String("error.type", string(appErr.Type)))

	switch appErr.Type {
	case growthosErrors.ErrorTypeValidation:
		writeErrorResponse(w, summary, appErr.Message, http.StatusBadRequest)
	case growthosErrors.ErrorTypeAuth:
		if appErr.Code == growthosErrors.ErrCodeGitHubNotConnected {
			writeErrorResponse(w, appErr.Message, "", http.StatusBadRequest)
			return
		}
		writeErrorResponse(w, "Unauthorized", appErr.Message, http.StatusUnauthorized)
	default:
		s.Logger.LogError(err, summary)
		writeErrorResponse(w, summary, "An unexpected error occurred. Please try again.", http.StatusInternalServerError)
	}
}

// validationFailed records a client input error on the span and answers 400
func validationFailed(w http.ResponseWriter, span trace.Span, summary, message string) {
	span.RecordError(errors.New(message))
	span.SetAttributes(attribute.String("error.type", string(growthosErrors.ErrorTypeValidation)))
	writeErrorResponse(w, summary, message, http.StatusBadRequest)
}

// unauthorized answers 401 for requests without a session
func unauthorized(w http.ResponseWriter, span trace.Span) {
	span.SetAttributes(attribute.String("error.type", string(growthosErrors.ErrorTypeAuth)))
	writeErrorResponse(w, "Unauthorized", "Sign in required", http.StatusUnauthorized)
}
