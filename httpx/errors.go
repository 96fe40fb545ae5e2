package httpx

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/mbolis/quick-forms/log"
)

// ErrorBody is the shape of every error response.
type ErrorBody struct {
	Error string `json:"error"`
	// Fields carries per-field messages when a submission fails validation.
	Fields map[string]string `json:"fields,omitempty"`
}

// WriteError sends status with msg as the error body.
func WriteError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, ErrorBody{Error: msg})
}

// Will log an error, and send an HTTP response with status 500 and the given
// public message. The cause stays in the log.
func LogInternalError(w http.ResponseWriter, r *http.Request, code string, err error, msg string) {
	log.Errorf("%s: %s", code, err)
	WriteError(w, r, http.StatusInternalServerError, msg)
}

// Will log a debug message, and send an HTTP response with status 404
func LogNotFound(w http.ResponseWriter, r *http.Request, code string, id any, msg string) {
	log.Debugf("%s: not found (%v)", code, id)
	WriteError(w, r, http.StatusNotFound, msg)
}

// Will log an error code and message at the given level,
// and send an HTTP response with the given status and message
func LogStatusMsg(w http.ResponseWriter, r *http.Request, status int, level log.Level, code string, msg string) {
	log.Log(level, code+":", msg)
	WriteError(w, r, status, msg)
}

// Will log the field errors at debug level, and send a 400 response listing them
func LogInvalidFields(w http.ResponseWriter, r *http.Request, code string, fields map[string]string) {
	log.WithFields(log.Fields{"fields": fields}).Debug(code)
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, ErrorBody{Error: "Validation failed", Fields: fields})
}
