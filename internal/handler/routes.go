package handler

import (
	"net/http"
	"strings"

	"github.com/Dan9191/challenge-service/internal/middleware"
	"github.com/Dan9191/challenge-service/internal/realtime"
	"github.com/Dan9191/challenge-service/internal/storage"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// RouterConfig collects what NewRouter needs besides the handler
type RouterConfig struct {
	UploadDir      string
	AllowedOrigins []string
	LoginThrottle  *middleware.Throttle
	Realtime       http.Handler
	Log            *logrus.Logger
}

// NewRouter wires every route. CORS and request logging wrap the whole router
// so preflight requests are answered before method matching.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Upgrades are accepted on any path
	if cfg.Realtime != nil {
		r.MatcherFunc(func(req *http.Request, _ *mux.RouteMatch) bool {
			return realtime.IsUpgrade(req)
		}).Handler(cfg.Realtime)
	}

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/register", h.Register).Methods("POST")
	if cfg.LoginThrottle != nil {
		api.Handle("/login", cfg.LoginThrottle.Wrap(http.HandlerFunc(h.Login))).Methods("POST")
	} else {
		api.HandleFunc("/login", h.Login).Methods("POST")
	}
	api.HandleFunc("/feed", h.Feed).Methods("GET")
	api.HandleFunc("/challenges", h.ListChallenges).Methods("GET")
	api.HandleFunc("/challenges", h.CreateChallenge).Methods("POST")
	api.HandleFunc("/challenges/rss", h.ChallengesRSS).Methods("GET")
	api.HandleFunc("/user/submissions/{userId}", h.UserSubmissions).Methods("GET")
	api.HandleFunc("/user/stats/{userId}", h.UserStats).Methods("GET")

	r.PathPrefix(storage.URLPrefix).Handler(
		http.StripPrefix(storage.URLPrefix, noListing(http.FileServer(http.Dir(cfg.UploadDir)))),
	).Methods("GET", "HEAD")

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, messageResponse{Message: "Not found"})
	})

	var root http.Handler = r
	if cfg.Log != nil {
		root = middleware.Logging(cfg.Log)(root)
	}
	if len(cfg.AllowedOrigins) > 0 {
		root = middleware.CORS(cfg.AllowedOrigins)(root)
	}
	return root
}

// noListing hides directory indexes of the upload dir
func noListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
