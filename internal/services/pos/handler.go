package pos

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
	"pos-system/internal/session"
)

// Handler handles HTTP requests for the pos service
type Handler struct {
	service *Service
	logger  *logger.Logger
}

// NewHandler creates a new pos handler
func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
	}
}

// CreateOrder handles POST /orders requests
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	if r.Method != http.MethodPost {
		h.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed", requestID)
		return
	}

	var req models.CreateOrderRequest
	if !h.decodeBody(w, r, &req, requestID) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	response, err := h.service.CreateOrder(ctx, &req, requestID)
	if err != nil {
		h.writeServiceError(w, err, requestID)
		return
	}

	h.writeJSON(w, http.StatusCreated, response, requestID)
}

// Quote handles POST /orders/quote requests: the live recompute. Numeric
// fields are raw text and never rejected, so the till can call this on
// every keystroke.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	if r.Method != http.MethodPost {
		h.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed", requestID)
		return
	}

	var req models.QuoteRequest
	if !h.decodeBody(w, r, &req, requestID) {
		return
	}

	result, err := h.service.Quote(&req)
	if err != nil {
		h.writeServiceError(w, err, requestID)
		return
	}

	h.writeJSON(w, http.StatusOK, result, requestID)
}

// CreateSession handles POST /sessions requests
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	if r.Method != http.MethodPost {
		h.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed", requestID)
		return
	}

	id, sess := h.service.Sessions().Create()

	h.logger.Debug("session_created", "Opened order session", requestID, map[string]interface{}{
		"session_id": id,
	})

	h.writeJSON(w, http.StatusCreated, models.SessionResponse{
		SessionID: id,
		Lines:     sess.Lines(),
		Result:    sess.Result(),
	}, requestID)
}

// SessionRoutes handles /sessions/{id} and /sessions/{id}/save requests
func (h *Handler) SessionRoutes(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	path := strings.TrimPrefix(r.URL.Path, "/sessions/")
	parts := strings.Split(strings.Trim(path, "/"), "/")

	if len(parts) == 0 || parts[0] == "" {
		h.writeErrorResponse(w, http.StatusNotFound, "Session id is required", requestID)
		return
	}

	sess, ok := h.service.Sessions().Get(parts[0])
	if !ok {
		h.writeErrorResponse(w, http.StatusNotFound, "Session not found", requestID)
		return
	}

	switch {
	case len(parts) == 1 && r.Method == http.MethodPut:
		h.updateSession(w, r, parts[0], sess, requestID)
	case len(parts) == 1 && r.Method == http.MethodDelete:
		h.service.Sessions().Delete(parts[0])
		w.WriteHeader(http.StatusNoContent)
	case len(parts) == 2 && parts[1] == "save" && r.Method == http.MethodPost:
		h.saveSession(w, r, sess, requestID)
	default:
		h.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed", requestID)
	}
}

// updateSession replaces the draft of a live session
func (h *Handler) updateSession(w http.ResponseWriter, r *http.Request, id string, sess *session.Session, requestID string) {
	var req models.UpdateSessionRequest
	if !h.decodeBody(w, r, &req, requestID) {
		return
	}

	if err := sess.Clear(); err != nil {
		h.writeServiceError(w, err, requestID)
		return
	}
	for _, item := range req.Items {
		if err := sess.SetItem(item.Name, item.Quantity); err != nil {
			h.writeServiceError(w, fmt.Errorf("%w: %s", err, item.Name), requestID)
			return
		}
	}
	if err := sess.SetDiscountPercent(req.DiscountPercent); err != nil {
		h.writeServiceError(w, err, requestID)
		return
	}
	if err := sess.SetServiceCharge(req.ServiceCharge); err != nil {
		h.writeServiceError(w, err, requestID)
		return
	}

	h.writeJSON(w, http.StatusOK, models.SessionResponse{
		SessionID: id,
		Lines:     sess.Lines(),
		Result:    sess.Result(),
	}, requestID)
}

// saveSession persists a draft session as an order
func (h *Handler) saveSession(w http.ResponseWriter, r *http.Request, sess *session.Session, requestID string) {
	var req models.SaveOrderRequest
	if !h.decodeBody(w, r, &req, requestID) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	response, err := h.service.SaveSession(ctx, sess, &req, requestID)
	if err != nil {
		h.writeServiceError(w, err, requestID)
		return
	}

	h.writeJSON(w, http.StatusCreated, response, requestID)
}

// GetMenu handles GET /menu requests
func (h *Handler) GetMenu(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	if r.Method != http.MethodGet {
		h.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed", requestID)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"items": h.service.Catalog().Items(),
	}, requestID)
}

// HealthCheck handles GET /health requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed", "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	healthy := h.service.HealthCheck(ctx)

	response := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "pos-service",
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

// decodeBody parses a JSON request body, writing a 400 on failure
func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, v interface{}, requestID string) bool {
	if r.Header.Get("Content-Type") != "application/json" {
		h.writeErrorResponse(w, http.StatusBadRequest, "Content-Type must be application/json", requestID)
		return false
	}

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(v); err != nil {
		h.logger.Error("validation_failed", "Failed to parse request body", requestID, err, nil)
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON format", requestID)
		return false
	}
	return true
}

// writeServiceError maps service errors onto HTTP status codes
func (h *Handler) writeServiceError(w http.ResponseWriter, err error, requestID string) {
	var validationErr models.ValidationError

	switch {
	case errors.As(err, &validationErr):
		h.writeErrorResponse(w, http.StatusBadRequest, validationErr.Error(), requestID)
	case errors.Is(err, session.ErrUnknownItem):
		h.writeErrorResponse(w, http.StatusBadRequest, err.Error(), requestID)
	case errors.Is(err, session.ErrSaveInFlight), errors.Is(err, session.ErrAlreadySaved):
		h.writeErrorResponse(w, http.StatusConflict, err.Error(), requestID)
	case errors.Is(err, ErrStorageUnavailable):
		h.writeErrorResponse(w, http.StatusServiceUnavailable, ErrStorageUnavailable.Error(), requestID)
	default:
		h.logger.Error("request_failed", "Unhandled service error", requestID, err, nil)
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

	mux.HandleFunc("/orders", h.withLogging(h.CreateOrder))
	mux.HandleFunc("/orders/quote", h.withLogging(h.Quote))
	mux.HandleFunc("/sessions", h.withLogging(h.CreateSession))
	mux.HandleFunc("/sessions/", h.withLogging(h.SessionRoutes))
	mux.HandleFunc("/menu", h.withLogging(h.GetMenu))
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
