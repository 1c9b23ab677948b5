package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/zhouzirui/menu-assistant/backend/internal/handler/conversation"
	"github.com/zhouzirui/menu-assistant/backend/internal/handler/menu"
	"github.com/zhouzirui/menu-assistant/backend/internal/handler/recommendation"
	convservice "github.com/zhouzirui/menu-assistant/backend/internal/service/conversation"
	recoservice "github.com/zhouzirui/menu-assistant/backend/internal/service/recommendation"
	"github.com/zhouzirui/menu-assistant/backend/pkg/utils"
)

// Deps are the services the HTTP surface is built on.
type Deps struct {
	Catalog     menu.Catalog
	Engine      *convservice.Engine
	Machine     *recoservice.Machine
	CORSOrigins []string
	Logger      *zap.Logger
}

// NewRouter wires HTTP routes to core services.
func NewRouter(deps Deps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	origins := deps.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(api chi.Router) {
		menu.New(deps.Catalog).RegisterRoutes(api)
		conversation.New(deps.Engine).RegisterRoutes(api)
		recommendation.New(deps.Machine).RegisterRoutes(api)

		ws := conversation.NewWebSocketHandler(deps.Engine, originChecker(origins), logger)
		ws.RegisterWebSocketRoutes(api)
	})

	return r
}

// requestLogger logs one line per request through zap.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	logger = logger.Named("http")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Info("request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
					zap.String("requestId", middleware.GetReqID(r.Context())))
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

// originChecker mirrors the CORS allow-list for websocket upgrades.
func originChecker(origins []string) func(r *http.Request) bool {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		allowed[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || allowed[origin]
	}
}
