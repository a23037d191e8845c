package apiapp

import (
	"context"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	authsvc "github.com/ludora/storefront/internal/services/auth"
	feedbacksvc "github.com/ludora/storefront/internal/services/feedback"
	httperrors "github.com/ludora/storefront/internal/transport/http/errors"
)

const requestTimeout = 60 * time.Second

// ApplyMiddlewares installs the stack shared by every route. Request timeouts
// are set per route group in RegisterRoutes.
func ApplyMiddlewares(r chiRouter, log *zap.Logger) {
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(log))
}

// WithDeadline gives a route its own read and write deadline in place of the
// server wide timeouts, and bounds the request context by the same deadline.
func WithDeadline(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			deadline := time.Now().Add(d)
			rc := http.NewResponseController(w)
			_ = rc.SetReadDeadline(deadline)
			_ = rc.SetWriteDeadline(deadline)

			ctx, cancel := context.WithDeadline(r.Context(), deadline)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AuthMiddleware verifies the marketplace bearer token and stores the buyer
// identity in the request context. The token is forwarded upstream as is.
func AuthMiddleware(verifier *authsvc.Verifier, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if verifier == nil {
				httperrors.Write(w, http.StatusInternalServerError, httperrors.APIError{
					Code:    "AUTH_SERVICE_UNAVAILABLE",
					Message: "auth service is unavailable",
				})
				return
			}

			accessToken, ok := authsvc.ExtractBearerToken(r.Header.Get("Authorization"))
			if !ok {
				writeLoginRequired(w)
				return
			}

			identity, err := verifier.ParseToken(accessToken)
			if err != nil {
				if log != nil {
					log.Debug("auth middleware token rejected", zap.Error(err))
				}
				writeLoginRequired(w)
				return
			}

			ctx := authsvc.WithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeLoginRequired(w http.ResponseWriter) {
	httperrors.Write(w, http.StatusUnauthorized, httperrors.RetryableError{
		Code:    "LOGIN_REQUIRED",
		Message: feedbacksvc.MessageLoginRequired,
		Retry:   true,
	})
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			if log != nil {
				log.Info("http_request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.String("request_id", chimiddleware.GetReqID(r.Context())),
					zap.Duration("duration", time.Since(start)),
				)
			}
		})
	}
}

type chiRouter interface {
	Use(middlewares ...func(http.Handler) http.Handler)
}
