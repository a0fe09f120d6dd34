package http

import (
	"net/http"
	"strings"

	"github.com/mochaaless/p4Backend/pkg/httputil"
)

// userIDParam extracts and validates the userId query parameter. Writes a 400
// response and returns false when the parameter is missing or not a UUID.
func userIDParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw := r.URL.Query().Get("userId")
	if raw == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "userId query parameter is required"},
		})
		return "", false
	}

	id, ok := httputil.ParseUUID(w, raw)
	if !ok {
		return "", false
	}

	return id.String(), true
}

// ContentTypeJSON enforces that requests with a body have Content-Type: application/json.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 || r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnsupportedMediaType)
				_, _ = w.Write([]byte(`{"error":{"code":"UNSUPPORTED_MEDIA_TYPE","message":"Content-Type must be application/json"}}`))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
