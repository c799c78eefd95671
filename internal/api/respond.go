package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"timetracker/internal/service"
)

const maxBodySize = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

type deleteResponse struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
}

// writeJSON encodes v before touching the response, so an unencodable value
// becomes a 500 instead of an empty 200.
func writeJSON(w http.ResponseWriter, code int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Printf("[error] encode response: %v", err)
		code = http.StatusInternalServerError
		body, _ = json.Marshal(errorResponse{Error: "internal error"})
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(append(body, '\n'))
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResponse{Error: msg})
}

// writeError maps domain errors onto status codes. Anything else is logged
// and reported as an internal error.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		writeErr(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrConflict):
		writeErr(w, http.StatusBadRequest, err.Error())
	default:
		log.Printf("[error] request %s %s %s: %v", RequestIDFromContext(r.Context()), r.Method, r.URL.Path, err)
		writeErr(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeBody reads a non-empty JSON object from the request into out.
func decodeBody(r *http.Request, out any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return errNoJSON
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || len(fields) == 0 {
		return errNoJSON
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

var errNoJSON = errors.New("No JSON supplied")

// pathID parses a numeric mux variable. Routes constrain the segment to
// digits, so failure only happens on overflow, which is answered like an
// unknown id.
func pathID(w http.ResponseWriter, r *http.Request, name string) (uint, bool) {
	v, err := strconv.ParseUint(mux.Vars(r)[name], 10, 0)
	if err != nil {
		writeErr(w, http.StatusNotFound, fmt.Sprintf("%s %s not found", name, mux.Vars(r)[name]))
		return 0, false
	}
	return uint(v), true
}
