package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dgallion1/wikiqa/internal/chunker"
	"github.com/dgallion1/wikiqa/internal/dataset"
	"github.com/dgallion1/wikiqa/internal/extract"
	"github.com/dgallion1/wikiqa/internal/pipeline"
	"github.com/dgallion1/wikiqa/internal/wiki"
)

const maxJSONBody = 1 << 20

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeJSON reads a JSON body into dst and validates it. The returned
// message is safe to show to the caller.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) (string, bool) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return "request body is empty", false
		}
		return "invalid JSON body: " + err.Error(), false
	}
	if err := s.validate.Struct(dst); err != nil {
		return validationMessage(err), false
	}
	return "", true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Namespace()
		if _, rest, ok := strings.Cut(field, "."); ok {
			field = rest
		}
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "min", "gte":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", field, fe.Param()))
		case "max", "lte":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s", field, fe.Param()))
		case "gt":
			msgs = append(msgs, fmt.Sprintf("%s must be greater than %s", field, fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %q", field, fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

// statusFor maps domain errors to HTTP status codes; anything unrecognized
// gets fallback.
func statusFor(err error, fallback int) int {
	switch {
	case errors.Is(err, pipeline.ErrUnsupportedSource),
		errors.Is(err, pipeline.ErrInvalidLanguage),
		errors.Is(err, pipeline.ErrInvalidRequest),
		errors.Is(err, pipeline.ErrInvalidSelection),
		errors.Is(err, extract.ErrUnsupportedQuestionType),
		errors.Is(err, chunker.ErrInvalidMaxSize):
		return http.StatusBadRequest
	case errors.Is(err, wiki.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, dataset.ErrValidation),
		errors.Is(err, chunker.ErrTreeTooDeep):
		return http.StatusUnprocessableEntity
	}
	return fallback
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}
