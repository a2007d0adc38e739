package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/NOLLEN17/bookshelf/internal/models"
)

// maxBodyBytes caps every request body.
const maxBodyBytes = 1 << 20

// errorResponse is the body of every failed request.
type errorResponse struct {
	Detail string `json:"detail"`
}

// RenderJSON writes v with the given status code.
func RenderJSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		loggerFrom(r.Context()).WithError(err).Warn("write response")
	}
}

// RenderError writes {"detail": message} with the given status code.
func RenderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	RenderJSON(w, r, status, errorResponse{Detail: message})
}

// RenderInternalError logs err and answers with a generic 500.
func RenderInternalError(w http.ResponseWriter, r *http.Request, err error) {
	loggerFrom(r.Context()).WithError(err).Error("request failed")
	RenderError(w, r, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}

// decodeJSON reads the request body into dst and validates it. On failure it
// has already written the 422 response and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		RenderError(w, r, http.StatusUnprocessableEntity, "Invalid JSON body")
		return false
	}
	// Exactly one JSON value per body.
	if err := dec.Decode(&json.RawMessage{}); !errors.Is(err, io.EOF) {
		RenderError(w, r, http.StatusUnprocessableEntity, "Invalid JSON body")
		return false
	}
	return validatePayload(w, r, dst)
}

func validatePayload(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	err := models.Validate(v)
	if err == nil {
		return true
	}
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		RenderError(w, r, http.StatusUnprocessableEntity, verr.Error())
		return false
	}
	RenderInternalError(w, r, err)
	return false
}

// pathID parses the {id} wildcard of the matched route.
func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

// queryInt returns the named query parameter, or def when it is absent.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
