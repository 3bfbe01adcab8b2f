package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"tastebook/domain"
	"tastebook/errs"
)

func (s *Server) registerUserRoutes(r *mux.Router) {
	r.HandleFunc("/api/users/register", s.register).Methods("POST")
	r.HandleFunc("/api/users/login", s.login).Methods("POST")
	r.HandleFunc("/api/users/feed", s.feed).Methods("POST")
	r.HandleFunc("/api/users/profile", s.updateProfile).Methods("PUT")
	r.HandleFunc("/api/users/follow/{followee_id:[0-9]+}", s.toggleFollow).Methods("POST")
	r.HandleFunc("/api/users/{id:[0-9]+}", s.getUser).Methods("GET")
	r.HandleFunc("/api/users/{id:[0-9]+}", s.deleteUser).Methods("DELETE")
}

// register creates a new user account and responds with its id.
func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var reg domain.RegisterUser
	if err := decodeBody(r, &reg); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	id, err := s.us.Register(&reg)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respond(w, r, map[string]int64{"id": id})
}

// login verifies the credentials carried in the body and responds with
// the authenticated user's id.
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var auth domain.AuthInfo
	if err := decodeBody(r, &auth); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	id, err := s.us.Login(&auth)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respond(w, r, map[string]int64{"id": id})
}

// getUser responds with the user's public profile, follower and
// followee id lists included.
func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	user, err := s.us.ByID(id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respond(w, r, user)
}

// updateProfile applies the profile fields given in the body to the
// caller's own account.
func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Auth   *domain.AuthInfo `json:"auth"`
		Gender string           `json:"gender"`
		Age    *int             `json:"age"`
	}
	if err := decodeBody(r, &body); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if err := s.us.UpdateProfile(body.Auth, body.Gender, body.Age); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respond(w, r, map[string]bool{"updated": true})
}

// deleteUser soft deletes the account named in the path. Callers may
// only delete their own account.
func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
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
	if err := s.us.DeleteAccount(body.Auth, id); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respond(w, r, map[string]bool{"deleted": true})
}

// toggleFollow follows the target user, or unfollows if a follow edge
// already exists. Responds with the resulting state.
func (s *Server) toggleFollow(w http.ResponseWriter, r *http.Request) {
	followeeID, err := pathID(r, "followee_id")
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
	following, err := s.fs.Toggle(body.Auth, followeeID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respond(w, r, map[string]bool{"following": following})
}

// feed responds with a page of recipes published by the users the
// caller follows, newest first.
func (s *Server) feed(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Auth     *domain.AuthInfo `json:"auth"`
		Category *string          `json:"category"`
		Page     domain.Page      `json:"page"`
	}
	if err := decodeBody(r, &body); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	result, err := s.rs.Feed(body.Auth, body.Category, body.Page)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respond(w, r, result)
}
