// internal/api/handler/store.go
package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"storefront/internal/api/types"
	"storefront/internal/service"
	"storefront/internal/util"
)

// DefaultTimeout bounds every request, storage calls included.
const DefaultTimeout = 15 * time.Second

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// StoreHandler handles the storefront HTTP API.
type StoreHandler struct {
	service service.StoreService
	logger  *slog.Logger
}

// NewStoreHandler creates a new StoreHandler.
func NewStoreHandler(svc service.StoreService, logger *slog.Logger) *StoreHandler {
	return &StoreHandler{
		service: svc,
		logger:  logger,
	}
}

// Helper function to send JSON responses.
func (h *StoreHandler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// respondWithError maps the error taxonomy onto HTTP status codes.
func (h *StoreHandler) respondWithError(w http.ResponseWriter, err error) {
	statusCode := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case util.IsError(err, util.ErrValidationFailed):
		statusCode = http.StatusBadRequest
		message = err.Error()
	case util.IsError(err, util.ErrInvalidCredentials):
		statusCode = http.StatusUnauthorized
		message = "Invalid credentials"
	case util.IsError(err, util.ErrNotFound):
		statusCode = http.StatusNotFound
		message = "Resource not found"
	case util.IsError(err, util.ErrUsernameTaken):
		statusCode = http.StatusConflict
		message = "Username already taken"
	case util.IsError(err, util.ErrEmailTaken):
		statusCode = http.StatusConflict
		message = "Email already registered"
	case util.IsError(err, util.ErrStaleAccount):
		statusCode = http.StatusConflict
		message = "Account changed since it was read; reload and retry"
	case util.IsError(err, util.ErrConflict):
		statusCode = http.StatusConflict
		message = "Conflict with existing data"
	case util.IsError(err, util.ErrBackendUnavailable):
		statusCode = http.StatusServiceUnavailable
		message = "Storage backend unavailable"
		h.logger.Warn("Storage backend unavailable", "error", err)
	default:
		h.logger.Error("Unhandled service error", "error", err)
	}

	h.respondWithJSON(w, statusCode, types.ErrorResponse{Error: message})
}

// decodeJSON reads the request body into dest and validates it.
func decodeJSON[T interface{ Validate() error }](w http.ResponseWriter, r *http.Request, dest *T) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return util.Validationf("malformed request body: %v", err)
	}
	return (*dest).Validate()
}

// idParam parses a positive int64 URL parameter.
func idParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, util.Validationf("invalid %s %q", name, raw)
	}
	return id, nil
}

// Health reports whether the configured backend answers.
// GET /health
func (h *StoreHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := types.HealthResponse{Status: "ok", Backend: h.service.BackendName()}
	if err := h.service.Health(r.Context()); err != nil {
		h.logger.Warn("Health check failed", "error", err)
		resp.Status = fmt.Sprintf("unavailable: %v", err)
		h.respondWithJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	h.respondWithJSON(w, http.StatusOK, resp)
}
