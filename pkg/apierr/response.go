package apierr

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// errorBody is the serialized error shape every endpoint returns.
type errorBody struct {
	Message    string `json:"message"`
	Status     string `json:"status"`
	StatusCode int    `json:"statusCode"`
}

// WriteJSON serializes err to the uniform JSON error shape. 4xx errors log
// at warn, everything else at error; the wrapped cause stays in the log,
// never in the response body.
func WriteJSON(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	apiErr := From(err)

	level := slog.LevelError
	if apiErr.StatusCode >= http.StatusBadRequest && apiErr.StatusCode < http.StatusInternalServerError {
		level = slog.LevelWarn
	}
	log.LogAttrs(r.Context(), level, "request error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Int("status_code", apiErr.StatusCode),
		slog.Any("error", err),
	)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(apiErr.StatusCode)
	_ = json.NewEncoder(w).Encode(errorBody{
		Message:    apiErr.Message,
		Status:     apiErr.Status(),
		StatusCode: apiErr.StatusCode,
	})
}
