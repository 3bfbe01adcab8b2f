package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"tastebook/domain"
	"tastebook/errs"
)

func (s *Server) registerReviewRoutes(r *mux.Router) {
	r.HandleFunc("/api/recipes/{recipe_id:[0-9]+}/reviews", s.createReview).Methods("POST")
	r.HandleFunc("/api/recipes/{recipe_id:[0-9]+}/reviews/search", s.listReviews).Methods("POST")
	r.HandleFunc("/api/recipes/{recipe_id:[0-9]+}/reviews/{review_id:[0-9]+}", s.editReview).Methods("PUT")
	r.HandleFunc("/api/recipes/{recipe_id:[0-9]+}/reviews/{review_id:[0-9]+}", s.deleteReview).Methods("DELETE")
	r.HandleFunc("/api/recipes/{recipe_id:[0-9]+}/refresh-rating", s.refreshRating).Methods("POST")
	r.HandleFunc("/api/reviews/{review_id:[0-9]+}/like", s.likeReview).Methods("POST")
	r.HandleFunc("/api/reviews/{review_id:[0-9]+}/unlike", s.unlikeReview).Methods("POST")
}

// createReview adds the caller's review to the recipe and responds with
// the new review's id.
func (s *Server) createReview(w http.ResponseWriter, r *http.Request) {
	recipeID, err := pathID(r, "recipe_id")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	var body struct {
		Auth   *domain.AuthInfo `json:"auth"`
		Rating int              `json:"rating"`
		Review string           `json:"review"`
	}
	if err := decodeBody(r, &body); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	id, err := s.vs.Create(body.Auth, recipeID, body.Rating, body.Review)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respond(w, r, map[string]int64{"id": id})
}

// editReview replaces the rating and text of the caller's own review.
func (s *Server) editReview(w http.ResponseWriter, r *http.Request) {
	recipeID, err := pathID(r, "recipe_id")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	reviewID, err := pathID(r, "review_id")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	var body struct {
		Auth   *domain.AuthInfo `json:"auth"`
		Rating int              `json:"rating"`
		Review string           `json:"review"`
	}
	if err := decodeBody(r, &body); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if err := s.vs.Edit(body.Auth, recipeID, reviewID, body.Rating, body.Review); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respond(w, r, map[string]bool{"updated": true})
}

// deleteReview removes the caller's own review and its likes.
func (s *Server) deleteReview(w http.ResponseWriter, r *http.Request) {
	recipeID, err := pathID(r, "recipe_id")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	reviewID, err := pathID(r, "review_id")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	var body struct {
		Auth *domain.AuthInfo `json:"auth"`
	}
	if err := decodeBody(r, &body); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if err := s.vs.Delete(body.Auth, recipeID, reviewID); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respond(w, r, map[string]bool{"deleted": true})
}

// listReviews responds with one page of the recipe's reviews.
func (s *Server) listReviews(w http.ResponseWriter, r *http.Request) {
	recipeID, err := pathID(r, "recipe_id")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	var body struct {
		Sort string      `json:"sort"`
		Page domain.Page `json:"page"`
	}
	if err := decodeBody(r, &body); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	result, err := s.vs.ByRecipe(recipeID, body.Sort, body.Page)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respond(w, r, result)
}

// refreshRating recomputes the recipe's review aggregates and responds
// with the full recipe snapshot.
func (s *Server) refreshRating(w http.ResponseWriter, r *http.Request) {
	recipeID, err := pathID(r, "recipe_id")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	recipe, err := s.vs.RefreshAggregate(recipeID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respond(w, r, recipe)
}

// likeReview records the caller's like on the review and responds with
// the resulting like count.
func (s *Server) likeReview(w http.ResponseWriter, r *http.Request) {
	reviewID, err := pathID(r, "review_id")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	var body struct {
		Auth *domain.AuthInfo `json:"auth"`
	}
	if err := decodeBody(r, &body); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	count, err := s.ls.Like(body.Auth, reviewID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respond(w, r, map[string]int64{"likes": count})
}

// unlikeReview removes the caller's like, if any, and responds with the
// resulting like count.
func (s *Server) unlikeReview(w http.ResponseWriter, r *http.Request) {
	reviewID, err := pathID(r, "review_id")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	var body struct {
		Auth *domain.AuthInfo `json:"auth"`
	}
	if err := decodeBody(r, &body); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	count, err := s.ls.Unlike(body.Auth, reviewID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respond(w, r, map[string]int64{"likes": count})
}
