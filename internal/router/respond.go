package router

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/roombook/backend/internal/apperror"
	"github.com/roombook/backend/internal/cctx"
)

// ErrorBody is the JSON shape of every failed request.
type ErrorBody struct {
	Message string      `json:"message"`
	Errors  interface{} `json:"errors,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.L().Debug("failed to write response", zap.Error(err))
	}
}

// WriteError maps err onto its HTTP status. Internal errors are logged and
// answered with a generic message.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperror.KindOf(err)
	if kind == apperror.KindInternal {
		zap.L().Error("request failed",
			zap.String("request_id", cctx.RequestIDFrom(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	WriteJSON(w, kind.HTTPStatus(), ErrorBody{Message: apperror.Message(err)})
}
