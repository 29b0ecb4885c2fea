/*
Package resp provides helper functions for constructing and sending the
standardized HTTP JSON responses of the identity API.

The wire shape is the one the chat clients expect: a success flag plus an
optional error string.
*/
package resp

import (
	"encoding/json"
	"net/http"

	"ramblur/internal/pkg/errs"
	"ramblur/internal/pkg/logx"
)

// JSONResponse is the response body of every identity API endpoint.
type JSONResponse struct {
	// Success reports whether the request took effect.
	Success bool `json:"success"`

	// Error carries the user-facing failure description when Success is false.
	Error string `json:"error,omitempty"`
}

// RespondJSON sets the content type and sends the JSON payload.
func RespondJSON(w http.ResponseWriter, r *http.Request, httpStatus int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")

	response, err := json.Marshal(payload)
	if err != nil {
		logx.Error(err, "Error encoding JSON response", "http_status", httpStatus)
		http.Error(w, "Error encoding JSON response", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(httpStatus)
	w.Write(response)
}

// RespondSuccess sends a successful response (HTTP 200 OK).
func RespondSuccess(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, r, http.StatusOK, JSONResponse{Success: true})
}

// RespondError sends a response carrying the custom error's message and
// HTTP status.
func RespondError(w http.ResponseWriter, r *http.Request, customErr *errs.CustomError) {
	if customErr == nil {
		customErr = errs.NewError(errs.ErrUnknown)
	}

	RespondJSON(w, r, customErr.Status, JSONResponse{Success: false, Error: customErr.Message})
}
