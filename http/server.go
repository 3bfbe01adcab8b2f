package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"tastebook/crud"
	"tastebook/domain"
)

// Server provides the http surface of the catalog: routing, request
// decoding, and the mapping of crud errors onto status codes.
// Authentication happens inside the crud services; handlers only carry
// the credential record through.
type Server struct {
	router *mux.Router
	logger zerolog.Logger

	us domain.UserService
	rs domain.RecipeService
	vs domain.ReviewService
	fs domain.FollowService
	ls domain.LikeService
	ss domain.StatsService
	is *crud.ImportService
}

// NewServer returns a new instance of the server, registers all necessary
// routes and gives their handlers access to the crud services passed in.
func NewServer(services *crud.Services, logger zerolog.Logger) *Server {
	s := &Server{
		router: mux.NewRouter(),
		logger: logger,
		us:     services.User,
		rs:     services.Recipe,
		vs:     services.Review,
		fs:     services.Follow,
		ls:     services.Like,
		ss:     services.Stats,
		is:     services.Import,
	}

	s.registerUserRoutes(s.router)
	s.registerRecipeRoutes(s.router)
	s.registerReviewRoutes(s.router)
	s.registerStatsRoutes(s.router)
	s.registerImportRoutes(s.router)

	s.router.Use(setContentTypeJSON, s.logRequests)
	return s
}

// The setContentTypeJSON middleware sets the content type to "application/json".
func setContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// The logRequests middleware emits one structured log line per request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

// Run starts to listen and serve on the specified port.
func (s *Server) Run(port int) error {
	s.logger.Info().Int("port", port).Msg("listening")
	return http.ListenAndServe(":"+strconv.Itoa(port), s.router)
}
