/*
Package req provides helper functions for HTTP request parsing and data
binding.

It wraps strict JSON decoding with unified error reporting so handlers only
deal with well-formed input.
*/
package req

import (
	"encoding/json"
	"net/http"
	"strings"

	"ramblur/internal/pkg/errs"
)

// MaxBodyBytes limits the size of any JSON request body accepted by the API.
const MaxBodyBytes int64 = 1 << 20 // 1 MB

// BindJSON binds the JSON body of the request to dst. Unknown fields and
// trailing content are rejected.
func BindJSON(w http.ResponseWriter, r *http.Request, dst any) *errs.CustomError {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return nil
}
