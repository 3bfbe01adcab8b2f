package http

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"tastebook/errs"
)

// pathID extracts a numeric path variable from the request route.
func pathID(r *http.Request, name string) (int64, error) {
	raw, ok := mux.Vars(r)[name]
	if !ok {
		return 0, errs.Errorf(errs.EINVALID, "Missing %s in request path.", name)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errs.Errorf(errs.EINVALID, "Invalid %s in request path.", name)
	}
	return id, nil
}

// decodeBody unmarshals the JSON request body into dst. An empty body
// leaves dst at its zero value so the services can report what is
// actually missing.
func decodeBody(r *http.Request, dst interface{}) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return errs.Errorf(errs.EINVALID, "Invalid request body.")
	}
	return nil
}

// respond writes v as the JSON response body.
func respond(w http.ResponseWriter, r *http.Request, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		errs.ReturnError(w, r, err)
	}
}
