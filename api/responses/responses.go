package responses

import (
	"encoding/json"
	"net/http"

	pkgerrors "github.com/stocklane/stocklane-backend/pkg/errors"
	"github.com/stocklane/stocklane-backend/pkg/types"
)

// JSON writes a success envelope with the given status.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.SuccessEnvelope{Data: data})
}

// NoContent writes an empty 204 response.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error maps an error to its HTTP status and writes the error envelope.
// Unknown errors are collapsed to the internal error shape so internals
// never leak to callers.
func Error(w http.ResponseWriter, err error) {
	code := pkgerrors.CodeInternal
	message := pkgerrors.MetadataFor(code).PublicMessage
	var details any

	if typed := pkgerrors.As(err); typed != nil {
		code = typed.Code()
		meta := pkgerrors.MetadataFor(code)
		message = typed.Message()
		if message == "" {
			message = meta.PublicMessage
		}
		if meta.DetailsAllowed {
			details = typed.Details()
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(pkgerrors.MetadataFor(code).HTTPStatus)
	_ = json.NewEncoder(w).Encode(types.ErrorEnvelope{
		Error: types.APIError{
			Code:    string(code),
			Message: message,
			Details: details,
		},
	})
}

// ValidationError writes a 400 with field-level details.
func ValidationError(w http.ResponseWriter, details any) {
	Error(w, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details))
}
