package rest

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"invisinsights/internal/service"
	"invisinsights/internal/transport/rest/handler"
	"invisinsights/internal/transport/rest/middleware"
	"invisinsights/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	ConnectService  *service.ConnectService
	AnalysisService *service.AnalysisService
	WSHub           *ws.Hub
	AllowedOrigins  []string
	Logger          *zap.Logger
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	projectHandler := handler.NewProjectHandler(c.ConnectService, c.Logger)
	analysisHandler := handler.NewAnalysisHandler(c.AnalysisService, c.Logger)
	wsHandler := ws.NewHandler(c.WSHub, c.AllowedOrigins, c.Logger)

	// CORS middleware (apply first)
	r.Use(corsMiddleware(c.AllowedOrigins))
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(c.Logger))

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET", "OPTIONS")

	// Project connection
	r.HandleFunc("/project-status", projectHandler.Status).Methods("GET", "OPTIONS")
	r.HandleFunc("/connect-surveymonkey", projectHandler.SetupPage).Methods("GET")
	r.HandleFunc("/connect-surveymonkey", projectHandler.Connect).Methods("POST", "OPTIONS")
	r.HandleFunc("/surveymonkey/surveys", projectHandler.ListSurveys).Methods("POST", "OPTIONS")

	// Sessions
	r.HandleFunc("/collect", analysisHandler.Collect).Methods("POST", "OPTIONS")
	r.HandleFunc("/analyze", analysisHandler.Analyze).Methods("POST", "OPTIONS")
	r.HandleFunc("/sessions/recent", analysisHandler.RecentSessions).Methods("GET", "OPTIONS")

	// Live project events
	r.HandleFunc("/ws/projects/{projectId}", wsHandler.ProjectFeed).Methods("GET")

	return r
}

// corsMiddleware reflects the request origin so credentialed browser calls work.
// A non-empty allow list restricts which origins are reflected.
func corsMiddleware(allowedOrigins []string) mux.MiddlewareFunc {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			switch {
			case origin == "":
				w.Header().Set("Access-Control-Allow-Origin", "*")
			case len(allowed) == 0 || allowed[origin]:
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Vary", "Origin")
			}

			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Allow-Credentials", "true")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
