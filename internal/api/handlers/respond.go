package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/dmarceta/meet-accounts-be/internal/services"
)

// validate is the shared payload validator. Field names in error output come
// from the json tags so they match what the client sent.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeFieldErrors(w http.ResponseWriter, fields map[string][]string) {
	writeJSON(w, http.StatusBadRequest, map[string]interface{}{"errors": fields})
}

// decodeAndValidate decodes the JSON body into payload and runs tag
// validation, writing the error response itself on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, payload interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(payload); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := validate.Struct(payload); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) {
			fields := make(map[string][]string, len(vErrs))
			for _, fe := range vErrs {
				fields[fe.Field()] = append(fields[fe.Field()], validationMessage(fe))
			}
			writeFieldErrors(w, fields)
		} else {
			writeDetail(w, http.StatusBadRequest, "Invalid request body")
		}
		return false
	}
	return true
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "eqfield":
		return "Password fields didn't match."
	default:
		return "This value is invalid."
	}
}

// writeServiceError maps domain errors to the HTTP taxonomy. Anything
// unrecognized is an internal failure and stays opaque to the caller.
func writeServiceError(w http.ResponseWriter, err error) {
	var vErr *services.ValidationError
	switch {
	case errors.As(err, &vErr):
		writeFieldErrors(w, vErr.Fields)
	case errors.Is(err, services.ErrAuthentication):
		writeDetail(w, http.StatusUnauthorized, "No active account found with the given credentials")
	case errors.Is(err, services.ErrInvalidToken):
		writeDetail(w, http.StatusUnauthorized, "Token is invalid or expired")
	case errors.Is(err, services.ErrNotFound):
		writeDetail(w, http.StatusNotFound, "Not found.")
	default:
		log.Error().Err(err).Msg("Unhandled service error")
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
	}
}
