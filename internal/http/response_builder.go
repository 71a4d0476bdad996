package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"ecobrain/internal/core"
	"ecobrain/internal/log"
	"ecobrain/internal/middleware/trace"
)

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	body       any
	headers    map[string]string
	cookies    []*http.Cookie
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

// Body sets the value encoded as the response body.
func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

// Message sets an error-shaped body: {"message": msg}.
func (b *JSONResponseBuilder) Message(msg string) *JSONResponseBuilder {
	b.body = errorBody{Message: msg}
	return b
}

// Success sets the {"success": true} acknowledgement body.
func (b *JSONResponseBuilder) Success() *JSONResponseBuilder {
	b.body = map[string]bool{"success": true}
	return b
}

func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

func (b *JSONResponseBuilder) Cookie(c *http.Cookie) *JSONResponseBuilder {
	b.cookies = append(b.cookies, c)
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	for _, c := range b.cookies {
		http.SetCookie(w, c)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	if b.body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(b.body); err != nil {
		slog.Error("Failed to encode response body",
			log.FieldComponent, log.ComponentHTTP,
			log.FieldError, err)
	}
}

type errorBody struct {
	Message string            `json:"message"`
	Errors  []core.FieldError `json:"errors,omitempty"`
}

// statusFor maps an error to its status code, public message and log type.
func statusFor(err error) (int, string, string) {
	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, "Validation failed", log.ErrorTypeValidation
	case errors.Is(err, core.ErrInvalidInput):
		return http.StatusBadRequest, "Invalid input", log.ErrorTypeValidation
	case errors.Is(err, core.ErrUnauthorized):
		return http.StatusUnauthorized, "Unauthorized", log.ErrorTypeAuth
	case errors.Is(err, core.ErrForbidden):
		return http.StatusForbidden, "Forbidden", log.ErrorTypeForbidden
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound, "Not found", log.ErrorTypeNotFound
	case errors.Is(err, core.ErrConflict):
		return http.StatusConflict, "Conflicts with existing data", log.ErrorTypeConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusInternalServerError, "Internal server error", log.ErrorTypeTimeout
	}
	return http.StatusInternalServerError, "Internal server error", log.ErrorTypeInternal
}

// ErrorResponse builds the response for err. Validation failures carry
// their field list; 5xx bodies never carry the cause.
func ErrorResponse(err error) *JSONResponseBuilder {
	status, msg, _ := statusFor(err)
	body := errorBody{Message: msg}
	var verr *core.ValidationError
	if errors.As(err, &verr) {
		body.Errors = verr.Fields
	}
	return NewJSONResponse().Status(status).Body(body)
}

// BadRequest is a 400 with a single field error.
func BadRequest(field, message string) *JSONResponseBuilder {
	return ErrorResponse(core.NewValidationError(field, message))
}

// writeError logs err and writes the mapped response. Server faults are
// logged at error level; client faults only at debug.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, _, errType := statusFor(err)
	ctx := r.Context()

	level := slog.LevelDebug
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	log.FromContext(ctx).WithComponent(log.ComponentHTTP).Fields(ctx, level, "Request failed",
		log.NewFields().
			WithRequestID(trace.GetRequestID(ctx)).
			WithUser(userIDFrom(r)).
			WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, "").
			WithError(err).
			WithErrorType(errType))

	ErrorResponse(err).Write(w)
}
