package apiutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/a-h/templ"
	"github.com/rs/zerolog/log"

	"github.com/discleague/leaguekeeper/internal/api/authz"
	"github.com/discleague/leaguekeeper/internal/leagues"
)

type HandlerError struct {
	Status  int
	Message string
	Err     error
}

func (e HandlerError) Error() string {
	return e.Message
}

func (e HandlerError) Unwrap() error {
	return e.Err
}

// ErrorResponse is the JSON body of every API error.
type ErrorResponse struct {
	Error  string                    `json:"error"`
	Fields []leagues.ValidationError `json:"fields,omitempty"`
}

func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return fmt.Errorf("missing request body")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	decoder.UseNumber()

	if err := decoder.Decode(dst); err != nil {
		return err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	if err := encoder.Encode(payload); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}

// WriteError writes a JSON error body with the given status.
func WriteError(w http.ResponseWriter, status int, message string) {
	_ = WriteJSON(w, status, ErrorResponse{Error: message})
}

// WriteValidationError writes 400 with every invalid field.
func WriteValidationError(w http.ResponseWriter, errs leagues.ValidationErrors) {
	_ = WriteJSON(w, http.StatusBadRequest, ErrorResponse{
		Error:  "validation failed",
		Fields: errs,
	})
}

// WriteHandlerError maps domain errors onto responses. It reports false when
// err was nil.
func WriteHandlerError(w http.ResponseWriter, r *http.Request, err error) bool {
	if err == nil {
		return false
	}

	var validation leagues.ValidationErrors
	var handlerErr HandlerError
	switch {
	case errors.As(err, &validation):
		WriteValidationError(w, validation)
	case errors.As(err, &handlerErr):
		if handlerErr.Status >= http.StatusInternalServerError {
			log.Ctx(r.Context()).Error().Err(handlerErr.Err).Msg(handlerErr.Message)
		}
		WriteError(w, handlerErr.Status, handlerErr.Message)
	case errors.Is(err, authz.ErrUnauthenticated):
		WriteError(w, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, authz.ErrForbidden):
		WriteError(w, http.StatusForbidden, "forbidden")
	default:
		log.Ctx(r.Context()).Error().Err(err).Msg("Unhandled handler error")
		WriteError(w, http.StatusInternalServerError, "internal server error")
	}
	return true
}

// RenderHTMLComponent renders an htmx fragment.
func RenderHTMLComponent(w http.ResponseWriter, r *http.Request, component templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := component.Render(r.Context(), w); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to render component")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
	}
}
