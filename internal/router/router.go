package router

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/functionland/blox-wizard/internal/account"
	"github.com/functionland/blox-wizard/internal/docker"
	"github.com/functionland/blox-wizard/internal/node"
	"github.com/functionland/blox-wizard/internal/onboarding"
	"github.com/functionland/blox-wizard/internal/peer"
	"github.com/functionland/blox-wizard/internal/pool"
	"github.com/functionland/blox-wizard/internal/ratelimit"
	"github.com/functionland/blox-wizard/internal/session"
	"github.com/functionland/blox-wizard/internal/webui"
	"github.com/functionland/blox-wizard/pkg/utilities"
)

type ctxKey int

const requestIDKey ctxKey = iota

// RequestIDHeader carries the per-request id.
const RequestIDHeader = "X-Request-Id"

// loggingResponseWriter wraps http.ResponseWriter to capture status and size.
type loggingResponseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.status = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	if lrw.status == 0 {
		lrw.status = http.StatusOK
	}
	n, err := lrw.ResponseWriter.Write(b)
	lrw.size += n
	return n, err
}

// RequestID returns the id assigned by RequestIDMiddleware, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// RequestIDMiddleware tags every request with a KSUID.
func RequestIDMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := utilities.NewKSUID()
			w.Header().Set(RequestIDHeader, id)
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
		})
	}
}

// LoggingMiddleware logs requests at debug level; server errors at warn.
func LoggingMiddleware(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lrw := &loggingResponseWriter{ResponseWriter: w}
			next.ServeHTTP(lrw, r)
			dur := time.Since(start)
			status := lrw.status
			if status == 0 {
				status = http.StatusOK
			}
			log := logger.Debugw
			if status >= http.StatusInternalServerError {
				log = logger.Warnw
			}
			log("http request",
				"request_id", RequestID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"remote", r.RemoteAddr,
				"status", status,
				"duration_ms", float64(dur.Microseconds())/1000.0,
				"size", lrw.size,
			)
		})
	}
}

// SecurityHeadersMiddleware sets common HTTP security headers.
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "no-referrer")
			w.Header().Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
			if w.Header().Get("Content-Security-Policy") == "" {
				w.Header().Set("Content-Security-Policy", "default-src 'self'; object-src 'none'; base-uri 'self';")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Deps are the handlers mounted by RegisterRoutes.
type Deps struct {
	Logger     *zap.SugaredLogger
	Sessions   *session.Manager
	SessionReq bool
	Limiter    *rate.Limiter
	MaxWait    time.Duration

	Account    *account.Handler
	Peer       *peer.Handler
	Node       *node.Handler
	Docker     *docker.Handler
	Pool       *pool.Handler
	Onboarding *onboarding.Handler
	Session    *session.Handler
	WebUI      *webui.Handler
}

// RegisterRoutes mounts every route on a standard library ServeMux.
func RegisterRoutes(d Deps) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// restarts and pool writes touch the whole container stack
	throttled := func(h http.HandlerFunc) http.Handler {
		return ratelimit.Middleware(d.Limiter, d.MaxWait)(h)
	}

	mux.HandleFunc("GET /api/session", d.Session.Issue)

	mux.HandleFunc("GET /api/properties", d.Node.Properties)
	mux.HandleFunc("GET /api/chain/status", d.Node.ChainStatus)

	mux.HandleFunc("GET /api/account/id", d.Account.ID)
	mux.HandleFunc("GET /api/account/seed", d.Account.Seed)

	mux.HandleFunc("GET /api/peer/exchange", d.Peer.Peers)
	mux.HandleFunc("POST /api/peer/exchange", d.Peer.Exchange)
	mux.HandleFunc("POST /api/peer/generate-identity", d.Peer.GenerateIdentity)

	mux.Handle("POST /api/docker/restart", throttled(d.Docker.Restart))
	mux.HandleFunc("GET /api/docker/status", d.Docker.Status)

	mux.Handle("POST /api/pools/join", throttled(d.Pool.Join))
	mux.Handle("POST /api/pools/leave", throttled(d.Pool.Leave))
	mux.Handle("POST /api/pools/cancel", throttled(d.Pool.Cancel))
	mux.HandleFunc("GET /api/pools/status", d.Pool.Status)
	mux.HandleFunc("GET /api/pools", d.Pool.List)
	mux.HandleFunc("POST /api/proxy/pool", d.Pool.List)
	mux.HandleFunc("POST /api/proxy/users", d.Pool.Users)

	mux.HandleFunc("GET /api/onboarding", d.Onboarding.Get)
	mux.HandleFunc("POST /api/onboarding/steps/{flag}", d.Onboarding.MarkStep)
	mux.HandleFunc("POST /api/onboarding/reset", d.Onboarding.Reset)

	mux.Handle("GET /webui/public/", webui.Compress(webui.Static()))
	mux.Handle("GET /webui/{step}", webui.Compress(http.HandlerFunc(d.WebUI.Page)))
	mux.HandleFunc("GET /webui", d.WebUI.Index)
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/webui", http.StatusFound)
	})

	var handler http.Handler = mux
	handler = session.Middleware(d.Sessions, d.SessionReq, d.Logger)(handler)
	handler = SecurityHeadersMiddleware()(handler)
	handler = LoggingMiddleware(d.Logger)(handler)
	handler = RequestIDMiddleware()(handler)
	return handler
}
