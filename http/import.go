package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"tastebook/crud"
	"tastebook/errs"
)

func (s *Server) registerImportRoutes(r *mux.Router) {
	r.HandleFunc("/api/import", s.importDataset).Methods("POST")
}

// importDataset bulk-loads a complete dataset. Meant for seeding a fresh
// database; rows keep the ids they arrive with.
func (s *Server) importDataset(w http.ResponseWriter, r *http.Request) {
	var data crud.ImportData
	if err := decodeBody(r, &data); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if err := s.is.Import(&data); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	respond(w, r, map[string]bool{"imported": true})
}
