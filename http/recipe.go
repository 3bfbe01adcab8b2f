package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"tastebook/domain"
	"tastebook/errs"
)

func (s *Server) registerRecipeRoutes(r *mux.Router) {
	r.HandleFunc("/api/recipes/search", s.searchRecipes).Methods("POST")
	r.HandleFunc("/api/recipes", s.createRecipe).Methods("POST")
	r.HandleFunc("/api/recipes/{id:[0-9]+}", s.getRecipe).Methods("GET")
	r.HandleFunc("/api/recipes/{id:[0-9]+}", s.deleteRecipe).Methods("DELETE")
	r.HandleFunc("/api/recipes/{id:[0-9]+}/times", s.updateRecipeTimes).Methods("PUT")
}

// getRecipe responds with the full recipe snapshot, ingredients and
// author name included.
func (s *Server) getRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	recipe, err := s.rs.ByID(id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respond(w, r, recipe)
}

// createRecipe publishes a new recipe under the caller's account and
// responds with its id.
func (s *Server) createRecipe(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Auth   *domain.AuthInfo `json:"auth"`
		Recipe domain.Recipe    `json:"recipe"`
	}
	if err := decodeBody(r, &body); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	id, err := s.rs.Create(body.Auth, &body.Recipe)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respond(w, r, map[string]int64{"id": id})
}

// deleteRecipe removes the recipe together with its ingredients, reviews
// and review likes. Only the author may delete it.
func (s *Server) deleteRecipe(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
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
	if err := s.rs.Delete(body.Auth, id); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respond(w, r, map[string]bool{"deleted": true})
}

// updateRecipeTimes sets the recipe's cook and/or prep duration from
// ISO-8601 strings. An omitted side keeps its stored value.
func (s *Server) updateRecipeTimes(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	var body struct {
		Auth     *domain.AuthInfo `json:"auth"`
		CookTime *string          `json:"cook_time"`
		PrepTime *string          `json:"prep_time"`
	}
	if err := decodeBody(r, &body); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if err := s.rs.UpdateTimes(body.Auth, id, body.CookTime, body.PrepTime); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respond(w, r, map[string]bool{"updated": true})
}

// searchRecipes responds with one page of the recipes matching the
// filter, ordered by the requested sort key.
func (s *Server) searchRecipes(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Filter domain.RecipeFilter `json:"filter"`
		Sort   string              `json:"sort"`
		Page   domain.Page         `json:"page"`
	}
	if err := decodeBody(r, &body); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	result, err := s.rs.Search(body.Filter, body.Sort, body.Page)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respond(w, r, result)
}
