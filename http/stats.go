package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"tastebook/errs"
)

func (s *Server) registerStatsRoutes(r *mux.Router) {
	r.HandleFunc("/api/stats/closest-calorie-pair", s.closestCaloriePair).Methods("GET")
	r.HandleFunc("/api/stats/most-complex-recipes", s.mostComplexRecipes).Methods("GET")
	r.HandleFunc("/api/stats/highest-follow-ratio", s.highestFollowRatio).Methods("GET")
}

// closestCaloriePair responds with the two recipes whose calorie values
// are closest, or null when fewer than two recipes carry calorie data.
func (s *Server) closestCaloriePair(w http.ResponseWriter, r *http.Request) {
	pair, err := s.ss.ClosestCaloriePair()
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respond(w, r, pair)
}

// mostComplexRecipes responds with up to three recipes ranked by
// ingredient count.
func (s *Server) mostComplexRecipes(w http.ResponseWriter, r *http.Request) {
	recipes, err := s.ss.MostComplexRecipes()
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respond(w, r, recipes)
}

// highestFollowRatio responds with the live user maximizing the ratio of
// followers to followees, or null when no user qualifies.
func (s *Server) highestFollowRatio(w http.ResponseWriter, r *http.Request) {
	ratio, err := s.ss.HighestFollowRatio()
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respond(w, r, ratio)
}
