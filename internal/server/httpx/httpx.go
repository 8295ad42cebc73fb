// Package httpx holds the JSON response and form parsing helpers shared by HTTP handlers.
package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

const (
	// MsgUnauthorized is the single body returned for every authentication failure.
	MsgUnauthorized = "Error 401: Unauthorized"
	MsgForbidden    = "Error 403: You do not have permission to access this resource"
	MsgInternal     = "Error 500: Internal server error"

	// MsgInvalidContentType answers bodies rejected by ParseForm.
	MsgInvalidContentType = "Error 400: Invalid content type. Expected x-www-form-urlencoded"

	formMediaType = "application/x-www-form-urlencoded"
	maxFormBytes  = 1 << 20
)

// ErrUnsupportedContentType is returned by ParseForm for bodies that are not url-encoded forms.
var ErrUnsupportedContentType = errors.New("httpx: body must be application/x-www-form-urlencoded")

// JSON writes v as a JSON response with the given status. 304 carries no body.
func JSON(w http.ResponseWriter, status int, v any) {
	if status == http.StatusNotModified {
		w.WriteHeader(status)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Message writes {"message": msg}.
func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, map[string]string{"message": msg})
}

// Unauthorized writes the uniform 401 body.
func Unauthorized(w http.ResponseWriter) {
	Message(w, http.StatusUnauthorized, MsgUnauthorized)
}

// Internal logs err with the request route and writes a generic 500. The cause never reaches the client.
func Internal(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	if log == nil {
		log = slog.Default()
	}
	log.ErrorContext(r.Context(), "request failed",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Any("error", err))
	Message(w, http.StatusInternalServerError, MsgInternal)
}

// ParseForm parses a url-encoded body into r.PostForm. Media-type parameters such as charset
// are accepted. A request with no body and no Content-Type yields an empty form.
func ParseForm(w http.ResponseWriter, r *http.Request) error {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		if r.ContentLength > 0 {
			return ErrUnsupportedContentType
		}
		r.PostForm = url.Values{}
		r.Form = url.Values{}
		return nil
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil || mt != formMediaType {
		return ErrUnsupportedContentType
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	return r.ParseForm()
}

// BindForm runs ParseForm and writes the 400 response on failure. Returns false when the
// handler should stop.
func BindForm(w http.ResponseWriter, r *http.Request) bool {
	if err := ParseForm(w, r); err != nil {
		if errors.Is(err, ErrUnsupportedContentType) {
			Message(w, http.StatusBadRequest, MsgInvalidContentType)
		} else {
			Message(w, http.StatusBadRequest, "Error 400: Malformed form body")
		}
		return false
	}
	return true
}

// MissingKeys returns the keys absent from the parsed form, in argument order.
func MissingKeys(r *http.Request, keys ...string) []string {
	var missing []string
	for _, k := range keys {
		if _, ok := r.PostForm[k]; !ok {
			missing = append(missing, k)
		}
	}
	return missing
}

// FormValue returns the trimmed form value and whether the key was present.
func FormValue(r *http.Request, key string) (string, bool) {
	vals, ok := r.PostForm[key]
	if !ok || len(vals) == 0 {
		return "", false
	}
	return strings.TrimSpace(vals[0]), true
}

// PathID parses the chi URL parameter name as a positive int64.
func PathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
