package router

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-task-go/internal/comment"
	commentrepo "github.com/ovaphlow/pitchfork/service-task-go/internal/comment/repo"
	"github.com/ovaphlow/pitchfork/service-task-go/internal/config"
	"github.com/ovaphlow/pitchfork/service-task-go/internal/stats"
	statsrepo "github.com/ovaphlow/pitchfork/service-task-go/internal/stats/repo"
	"github.com/ovaphlow/pitchfork/service-task-go/internal/task"
	taskrepo "github.com/ovaphlow/pitchfork/service-task-go/internal/task/repo"
	"github.com/ovaphlow/pitchfork/service-task-go/internal/user"
	userrepo "github.com/ovaphlow/pitchfork/service-task-go/internal/user/repo"
	"github.com/ovaphlow/pitchfork/service-task-go/pkg/utilities"
)

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

// RequestIDMiddleware makes sure every request carries a ksuid request id,
// replacing anything a client sent that we did not issue, and echoes it back.
func RequestIDMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(utilities.RequestIDHeader)
			if !utilities.ValidRequestID(id) {
				id = utilities.NewRequestID()
				r.Header.Set(utilities.RequestIDHeader, id)
			}
			w.Header().Set(utilities.RequestIDHeader, id)
			next.ServeHTTP(w, r)
		})
	}
}

// LoggingMiddleware logs requests at debug level using the provided sugared logger.
func LoggingMiddleware(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lrw := &loggingResponseWriter{ResponseWriter: w}
			next.ServeHTTP(lrw, r)
			status := lrw.status
			if status == 0 {
				status = http.StatusOK
			}
			logger.Debugw("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"remote", r.RemoteAddr,
				"status", status,
				"duration_ms", float64(time.Since(start).Microseconds())/1000.0,
				"size", lrw.size,
				"request_id", r.Header.Get(utilities.RequestIDHeader),
			)
		})
	}
}

// RecoverMiddleware turns a handler panic into a 500 envelope.
func RecoverMiddleware(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if p := recover(); p != nil {
					if p == http.ErrAbortHandler {
						panic(p)
					}
					logger.Errorw("panic in handler",
						"panic", p,
						"path", r.URL.Path,
						"request_id", r.Header.Get(utilities.RequestIDHeader),
						"stack", string(debug.Stack()),
					)
					utilities.WriteError(w, http.StatusInternalServerError, utilities.MsgInternal)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// SecurityHeadersMiddleware sets common HTTP security headers. The API only
// serves JSON, so the content policy denies everything.
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "no-referrer")
			h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
			if r.TLS != nil {
				h.Set("Strict-Transport-Security", "max-age=2592000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Health reports liveness; it does not touch the database.
func Health(clock clockwork.Clock) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		utilities.WriteJSON(w, http.StatusOK, map[string]any{
			"success":   true,
			"message":   "Task Management API is running",
			"timestamp": clock.Now().UTC().Format(time.RFC3339Nano),
		})
	}
}

// RegisterRoutes builds the engines over db and mounts their handlers on an
// http.ServeMux. Anything unmatched gets a JSON 404.
func RegisterRoutes(logger *zap.SugaredLogger, db *sqlx.DB, cfg *config.AppConfig, clock clockwork.Clock) http.Handler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	users := user.NewUserService(userrepo.NewUserRepo(db), user.BcryptHasher{Cost: cfg.BcryptCost}, clock)
	taskRepo := taskrepo.NewTaskRepo(db)
	tasks := task.NewTaskService(taskRepo, users, clock, task.QueryDefaults{
		Limit:    cfg.Pagination.DefaultLimit,
		Offset:   0,
		MaxLimit: cfg.Pagination.MaxLimit,
	})
	comments := comment.NewCommentService(commentrepo.NewCommentRepo(db), taskRepo, users, clock)
	report := stats.NewStatsService(statsrepo.NewStatsRepo(db), clock)

	userHandler := user.NewHandler(users, logger)
	taskHandler := task.NewHandler(tasks, logger, cfg.DefaultCreatorID)
	commentHandler := comment.NewHandler(comments, logger)
	statsHandler := stats.NewHandler(report, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", Health(clock))

	mux.HandleFunc("GET /api/tasks", taskHandler.List)
	mux.HandleFunc("POST /api/tasks", taskHandler.Create)
	mux.HandleFunc("GET /api/tasks/{id}", taskHandler.Get)
	mux.HandleFunc("PUT /api/tasks/{id}", taskHandler.Update)
	mux.HandleFunc("DELETE /api/tasks/{id}", taskHandler.Delete)
	mux.HandleFunc("PUT /api/tasks/{id}/assign", taskHandler.Assign)

	mux.HandleFunc("GET /api/tasks/{id}/comments", commentHandler.List)
	mux.HandleFunc("POST /api/tasks/{id}/comments", commentHandler.Create)

	mux.HandleFunc("GET /api/stats", statsHandler.Get)

	mux.HandleFunc("GET /api/users", userHandler.List)
	mux.HandleFunc("POST /api/users", userHandler.Create)
	mux.HandleFunc("GET /api/users/{id}", userHandler.Get)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		utilities.WriteError(w, http.StatusNotFound, utilities.MsgEndpointNotFound)
	})

	// outermost first: request id, logging, recovery, security headers
	return RequestIDMiddleware()(LoggingMiddleware(logger)(RecoverMiddleware(logger)(SecurityHeadersMiddleware()(mux))))
}
