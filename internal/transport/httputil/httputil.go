// Package httputil centralizes JSON encoding and domain-error translation
// for the HTTP facade.
package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	dErrors "qosic/pkg/domain-errors"
)

func WriteJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		// best-effort fallback; don't override status for the caller
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

// WriteError translates transport-agnostic domain errors into HTTP status
// codes and a consistent error envelope.
func WriteError(w http.ResponseWriter, err error) {
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		response := map[string]string{
			"error": string(domainErr.Code),
		}
		if domainErr.Message != "" {
			response["error_description"] = domainErr.Message
		}
		WriteJSON(w, CodeToHTTPStatus(domainErr.Code), response)
		return
	}

	WriteJSON(w, http.StatusInternalServerError, map[string]string{
		"error": string(dErrors.CodeInternal),
	})
}

// CodeToHTTPStatus maps domain error codes to facade status codes. Gateway
// and transport failures surface as 502: the facade could not complete the
// exchange with the upstream bridge.
func CodeToHTTPStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeInvalidPhone, dErrors.CodeInvalidInput, dErrors.CodeCarrierNotFound:
		return http.StatusBadRequest
	case dErrors.CodeOperationNotSupported:
		return http.StatusUnprocessableEntity
	case dErrors.CodeAccountNotFound:
		return http.StatusNotFound
	case dErrors.CodeInvalidCredentials, dErrors.CodeInvalidCarrierID,
		dErrors.CodeGatewayUnavailable, dErrors.CodeRequestFailed:
		return http.StatusBadGateway
	case dErrors.CodeCancelled:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// DecodeJSON decodes a JSON request body into the target type. On failure it
// writes an error response and returns nil, false.
func DecodeJSON[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context) (*T, bool) {
	var req T
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "failed to decode request body", "error", err)
		WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return nil, false
	}
	return &req, true
}
