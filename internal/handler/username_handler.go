/*
Package handler provides the HTTP handlers and routing setup for the Ramblur
server.

This file contains the one-time username registration endpoint. A client
posts its device id and chosen display name once; afterwards the name rides
along in the websocket auth frame.
*/
package handler

import (
	"net/http"
	"regexp"

	"ramblur/internal/pkg/errs"
	"ramblur/internal/pkg/logx"
	"ramblur/internal/pkg/req"
	"ramblur/internal/pkg/resp"
)

// usernamePattern is the allowed shape of a display name: 3-20 characters,
// letters, digits, underscore.
var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]{3,20}$`)

// setUsernameRequest is the body of POST /set_username.
type setUsernameRequest struct {
	Device string `json:"device"`
	Name   string `json:"name"`
}

// HandleSetUsername creates the HTTP HandlerFunc registering a username for
// a device id. On failure the error string is surfaced to the caller and
// nothing is persisted.
func HandleSetUsername(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body setUsernameRequest

		if customErr := req.BindJSON(w, r, &body); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if body.Device == "" || body.Name == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrMissingFields))
			return
		}

		if !usernamePattern.MatchString(body.Name) {
			resp.RespondError(w, r, errs.NewError(errs.ErrUsernameInvalid))
			return
		}

		if err := deps.Identity.SetUsername(r.Context(), body.Device, body.Name); err != nil {
			logx.Error(err, "Failed to persist username", "device", body.Device)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		logx.Info("Username registered", "name", body.Name)
		resp.RespondSuccess(w, r)
	}
}
