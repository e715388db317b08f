package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aureuma/skillregistry/internal/apierr"
)

func chiRoutePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return r.URL.Path
	}
	if p := rctx.RoutePattern(); p != "" {
		return p
	}
	return r.URL.Path
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error string `json:"error"`
}

// writeError maps an apierr.Kind to its HTTP status without ever
// inspecting the error's message text. Any error that isn't an *apierr.Error
// is treated as an unexpected internal failure.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ae *apierr.Error
	if errors.As(err, &ae) {
		writeJSON(w, statusFor(ae.Kind), errorBody{Error: ae.Message})
		return
	}
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
}

func statusFor(kind apierr.Kind) int {
	switch kind {
	case apierr.KindUnauthorized:
		return http.StatusUnauthorized
	case apierr.KindNotFound:
		return http.StatusNotFound
	case apierr.KindValidation:
		return http.StatusBadRequest
	case apierr.KindConflict:
		return http.StatusConflict
	case apierr.KindParse:
		return http.StatusBadRequest
	case apierr.KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
