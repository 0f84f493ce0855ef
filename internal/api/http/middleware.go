package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"bloodbank-backend/internal/domain"
	"bloodbank-backend/internal/logger"
	"bloodbank-backend/internal/metrics"
	"bloodbank-backend/internal/security"
)

const requestIDHeader = "X-Request-ID"

// statusRecorder captures the response code for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}

// RequestLogger attaches a request-scoped logger carrying the request ID and
// logs each completed request. It also records HTTP metrics, labelled by
// route template so path parameters do not explode cardinality.
func RequestLogger(m *metrics.Metrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := r.Header.Get(requestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, requestID)

			route := routeTemplate(r)
			l := logger.Get().With("request_id", requestID, "method", r.Method, "route", route)
			ctx := logger.NewContext(r.Context(), l)

			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r.WithContext(ctx))
			if rec.status == 0 {
				rec.status = http.StatusOK
			}

			elapsed := time.Since(start)
			m.ObserveHTTP(r.Method, route, rec.status, elapsed)
			l.Info("Request completed", "status", rec.status, "duration_ms", elapsed.Milliseconds())
		})
	}
}

// Authenticator validates bearer tokens, consults the revocation list and
// enforces role membership.
type Authenticator struct {
	tokens      security.TokenManager
	revocations security.RevocationList
}

func NewAuthenticator(tokens security.TokenManager, revocations security.RevocationList) *Authenticator {
	return &Authenticator{tokens: tokens, revocations: revocations}
}

func (a *Authenticator) authenticate(r *http.Request) (*security.UserClaims, error) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return nil, domain.Unauthorizedf("no token, authorization denied")
	}
	claims, err := a.tokens.ValidateToken(strings.TrimSpace(token))
	if err != nil {
		logger.WarnContext(r.Context(), "Unauthorized access - invalid token", "error", err)
		return nil, domain.Unauthorizedf("token is not valid")
	}
	if a.revocations != nil {
		revoked, err := a.revocations.IsRevoked(r.Context(), claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			logger.WarnContext(r.Context(), "Unauthorized access - token revoked", "jti", claims.ID)
			return nil, domain.Unauthorizedf("token has been revoked")
		}
	}
	return claims, nil
}

// Require authenticates the caller and, when roles are given, rejects callers
// holding none of them with 403.
func (a *Authenticator) Require(roles ...domain.Role) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := a.authenticate(r)
			if err != nil {
				writeError(w, r, err)
				return
			}
			if len(roles) > 0 && !hasRole(claims.Role, roles) {
				logger.WarnContext(r.Context(), "Forbidden - role not allowed", "user_id", claims.UserID, "role", claims.Role)
				writeError(w, r, domain.Forbiddenf("access denied"))
				return
			}
			ctx := withClaims(r.Context(), claims)
			ctx = logger.NewContext(ctx, logger.FromContext(ctx).With("user_id", claims.UserID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func hasRole(role domain.Role, allowed []domain.Role) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
