/*
Package identity manages the two opaque identity strings a chat client owns.

This file implements the one-time username registration call against the
server's /set_username endpoint.
*/
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// registerTimeout bounds the registration round trip.
const registerTimeout = 10 * time.Second

// registerRequest is the wire body of the registration call.
type registerRequest struct {
	Device string `json:"device"`
	Name   string `json:"name"`
}

// registerResponse is the wire shape of the server's answer.
type registerResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Register submits a chosen display name for a device id. On failure the
// server's error string is returned and the caller must not persist the
// name.
func Register(ctx context.Context, baseURL, device, name string) error {
	body, err := json.Marshal(registerRequest{Device: device, Name: name})
	if err != nil {
		return fmt.Errorf("failed to encode registration request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, registerTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/set_username", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build registration request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("registration request failed: %w", err)
	}
	defer res.Body.Close()

	var parsed registerResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return fmt.Errorf("failed to decode registration response: %w", err)
	}

	if !parsed.Success {
		if parsed.Error != "" {
			return errors.New(parsed.Error)
		}
		return errors.New("registration rejected")
	}

	return nil
}
