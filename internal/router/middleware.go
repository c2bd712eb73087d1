package router

import (
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/roombook/backend/internal/apperror"
	"github.com/roombook/backend/internal/cctx"
)

const (
	RequestIDHeader = "X-Request-ID"

	msgMissingHeader = "Authorization header is missing. Please log in to continue."
	msgMissingToken  = "Token not found. Use format: Bearer <token>."
)

type TokenVerifier interface {
	VerifyToken(token string) (userID int64, err error)
}

// RequestID tags every request with an id, reusing the caller's when present.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := r.Header.Get(RequestIDHeader)
		if rid == "" || len(rid) > 128 {
			rid = uuid.New().String()
		}
		w.Header().Set(RequestIDHeader, rid)
		next.ServeHTTP(w, r.WithContext(cctx.WithValues(r.Context(), cctx.RequestID, rid)))
	})
}

// RequireBearer rejects requests without a valid bearer token and stores the
// principal under cctx.UserID.
func RequireBearer(verifier TokenVerifier) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				WriteError(w, r, apperror.Unauthorized(msgMissingHeader))
				return
			}

			scheme, token, _ := strings.Cut(header, " ")
			token = strings.TrimSpace(token)
			if !strings.EqualFold(scheme, "Bearer") || token == "" {
				WriteError(w, r, apperror.Unauthorized(msgMissingToken))
				return
			}

			userID, err := verifier.VerifyToken(token)
			if err != nil {
				WriteError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(cctx.WithValues(r.Context(), cctx.UserID, userID)))
		})
	}
}

type ChainOptions struct {
	AccessLog      io.Writer
	ErrorLog       *log.Logger
	AllowedOrigins []string
	Debug          bool
}

// Chain wraps h with request ids, panic recovery, access logging and CORS.
func Chain(h http.Handler, opts ChainOptions) http.Handler {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	h = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type", RequestIDHeader}),
		handlers.ExposedHeaders([]string{RequestIDHeader}),
	)(h)

	recovery := []handlers.RecoveryOption{handlers.PrintRecoveryStack(opts.Debug)}
	if opts.ErrorLog != nil {
		recovery = append(recovery, handlers.RecoveryLogger(opts.ErrorLog))
	}
	h = handlers.RecoveryHandler(recovery...)(h)

	if opts.AccessLog != nil {
		h = handlers.CombinedLoggingHandler(opts.AccessLog, h)
	}

	return RequestID(h)
}
