package backoffice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"pos-system/internal/logger"
	"pos-system/internal/models"
)

// Handler handles HTTP requests for the backoffice service
type Handler struct {
	service *Service
	logger  *logger.Logger
}

// NewHandler creates a new backoffice handler
func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
	}
}

// GetOrder handles GET /orders/{receipt_ref} requests
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request, receiptRef, requestID string) {
	if r.Method != http.MethodGet {
		h.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed", requestID)
		return
	}

	order, err := h.service.GetOrder(r.Context(), receiptRef)
	if err != nil {
		h.writeServiceError(w, err, requestID)
		return
	}

	h.writeJSON(w, http.StatusOK, order, requestID)
}

// GetReceipt handles GET /orders/{receipt_ref}/receipt requests
func (h *Handler) GetReceipt(w http.ResponseWriter, r *http.Request, receiptRef, requestID string) {
	if r.Method != http.MethodGet {
		h.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed", requestID)
		return
	}

	receiptResp, err := h.service.GetReceipt(r.Context(), receiptRef)
	if err != nil {
		h.writeServiceError(w, err, requestID)
		return
	}

	h.writeJSON(w, http.StatusOK, receiptResp, requestID)
}

// UpdateStatus handles PATCH /orders/{receipt_ref}/status requests
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request, receiptRef, requestID string) {
	if r.Method != http.MethodPatch {
		h.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed", requestID)
		return
	}

	var req models.UpdateStatusRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON format", requestID)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	order, err := h.service.UpdateStatus(ctx, receiptRef, &req, requestID)
	if err != nil {
		h.writeServiceError(w, err, requestID)
		return
	}

	h.writeJSON(w, http.StatusOK, order, requestID)
}

// DailyReport handles GET /reports/daily requests. The date query parameter
// defaults to today.
func (h *Handler) DailyReport(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	if r.Method != http.MethodGet {
		h.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed", requestID)
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "date must be YYYY-MM-DD", requestID)
		return
	}

	report, err := h.service.DailyReport(r.Context(), date)
	if err != nil {
		h.writeServiceError(w, err, requestID)
		return
	}

	h.writeJSON(w, http.StatusOK, report, requestID)
}

// PrinterStatus handles GET /printers/status requests
func (h *Handler) PrinterStatus(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	if r.Method != http.MethodGet {
		h.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed", requestID)
		return
	}

	printers, err := h.service.PrinterStatus(r.Context())
	if err != nil {
		h.writeServiceError(w, err, requestID)
		return
	}

	h.writeJSON(w, http.StatusOK, printers, requestID)
}

// HealthCheck handles GET /health requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed", "")
		return
	}

	healthy := h.service.HealthCheck(r.Context())

	response := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "backoffice-service",
		"healthy":   healthy,
	}

	w.Header().Set("Content-Type", "application/json")

	if healthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
		response["status"] = "unhealthy"
	}

	json.NewEncoder(w).Encode(response)
}

// routeOrderRequests routes /orders/{ref}[/receipt|/status] requests
func (h *Handler) routeOrderRequests(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/orders/"), "/")
	parts := strings.Split(path, "/")

	receiptRef := parts[0]
	// Receipt references follow REC_YYYYMMDD_NNN
	if len(receiptRef) < 16 || !strings.HasPrefix(receiptRef, "REC_") {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid receipt reference", requestID)
		return
	}

	switch {
	case len(parts) == 1:
		h.GetOrder(w, r, receiptRef, requestID)
	case len(parts) == 2 && parts[1] == "receipt":
		h.GetReceipt(w, r, receiptRef, requestID)
	case len(parts) == 2 && parts[1] == "status":
		h.UpdateStatus(w, r, receiptRef, requestID)
	default:
		h.writeErrorResponse(w, http.StatusNotFound, "Endpoint not found", requestID)
	}
}

// writeServiceError maps service errors onto HTTP status codes
func (h *Handler) writeServiceError(w http.ResponseWriter, err error, requestID string) {
	var validationErr models.ValidationError

	switch {
	case errors.Is(err, ErrOrderNotFound):
		h.writeErrorResponse(w, http.StatusNotFound, "Order not found", requestID)
	case errors.Is(err, ErrInvalidTransition):
		h.writeErrorResponse(w, http.StatusConflict, err.Error(), requestID)
	case errors.As(err, &validationErr):
		h.writeErrorResponse(w, http.StatusBadRequest, validationErr.Error(), requestID)
	default:
		h.logger.Error("db_query_failed", "Unhandled service error", requestID, err, nil)
		h.writeErrorResponse(w, http.StatusInternalServerError, "Internal server error", requestID)
	}
}

// writeJSON writes a successful JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, statusCode int, v interface{}, requestID string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("response_encoding_failed", "Failed to encode response", requestID, err, nil)
	}
}

// writeErrorResponse writes an error response in JSON format
func (h *Handler) writeErrorResponse(w http.ResponseWriter, statusCode int, message, requestID string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errorResponse := map[string]interface{}{
		"error":      message,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"request_id": requestID,
	}

	json.NewEncoder(w).Encode(errorResponse)
}

// SetupRoutes sets up the HTTP routes
func (h *Handler) SetupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/orders/", h.withLogging(h.routeOrderRequests))
	mux.HandleFunc("/reports/daily", h.withLogging(h.DailyReport))
	mux.HandleFunc("/printers/status", h.withLogging(h.PrinterStatus))
	mux.HandleFunc("/health", h.withLogging(h.HealthCheck))

	return mux
}

// withLogging adds request logging middleware
func (h *Handler) withLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := logger.GenerateRequestID()

		h.logger.Debug("request_started",
			fmt.Sprintf("%s %s", r.Method, r.URL.Path),
			requestID,
			map[string]interface{}{
				"method":      r.Method,
				"path":        r.URL.Path,
				"remote_addr": r.RemoteAddr,
				"user_agent":  r.Header.Get("User-Agent"),
			})

		rw := &responseWriter{ResponseWriter: w, statusCode: 200}

		next(rw, r)

		duration := time.Since(start)
		h.logger.Debug("request_completed",
			fmt.Sprintf("%s %s - %d", r.Method, r.URL.Path, rw.statusCode),
			requestID,
			map[string]interface{}{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status_code": rw.statusCode,
				"duration_ms": duration.Milliseconds(),
			})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
