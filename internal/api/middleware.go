package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"storefront-service/internal/auth"
	"storefront-service/internal/domain"
)

type adminKey struct{}

// adminFromContext returns the verified admin claims, or nil for anonymous
// callers.
func adminFromContext(ctx context.Context) *auth.Claims {
	c, _ := ctx.Value(adminKey{}).(*auth.Claims)
	return c
}

func (h *HTTPHandler) bearerClaims(r *http.Request) (*auth.Claims, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return nil, fmt.Errorf("missing bearer token: %w", domain.ErrAuth)
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("malformed authorization header: %w", domain.ErrAuth)
	}
	if h.tokens == nil {
		return nil, fmt.Errorf("token verification unavailable: %w", domain.ErrAuth)
	}
	return h.tokens.Verify(strings.TrimSpace(token))
}

// requireAdmin rejects requests without a valid admin token.
func (h *HTTPHandler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := h.bearerClaims(r)
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, ReasonUnauthorized, publicMessage(err))
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), adminKey{}, claims)))
	})
}

// optionalAdmin attaches admin claims when a valid token is sent. Missing
// or bad tokens leave the request anonymous.
func (h *HTTPHandler) optionalAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			if claims, err := h.bearerClaims(r); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), adminKey{}, claims))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequestLogger logs one line per request with zap.
func RequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Info("http request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
					zap.String("request_id", middleware.GetReqID(r.Context())),
					zap.String("remote_addr", r.RemoteAddr),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

// CORS allows the storefront client origins to call the API with the
// session cookie.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
