package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeIdentityStore records SetUsername calls for assertions.
type fakeIdentityStore struct {
	registered map[string]string
	fail       bool
}

func (f *fakeIdentityStore) SetUsername(_ context.Context, device, name string) error {
	if f.fail {
		return errors.New("storage down")
	}

	if f.registered == nil {
		f.registered = make(map[string]string)
	}
	f.registered[device] = name
	return nil
}

func postUsername(t *testing.T, deps *AppDeps, body string) *httptest.ResponseRecorder {
	t.Helper()

	r := httptest.NewRequest(http.MethodPost, "/set_username", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	HandleSetUsername(deps)(w, r)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) (success bool, errMsg string) {
	t.Helper()

	var body struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Success, body.Error
}

func TestHandleSetUsername_Success(t *testing.T) {
	req := require.New(t)

	fs := &fakeIdentityStore{}
	deps := &AppDeps{Identity: fs}

	w := postUsername(t, deps, `{"device":"dev-1","name":"Alice_99"}`)

	req.Equal(http.StatusOK, w.Code)

	success, errMsg := decodeResponse(t, w)
	req.True(success)
	req.Empty(errMsg)
	req.Equal("Alice_99", fs.registered["dev-1"])
}

func TestHandleSetUsername_Validation(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"invalid json", `{"device":`, "Invalid JSON"},
		{"missing device", `{"name":"Alice"}`, "Missing fields"},
		{"missing name", `{"device":"dev-1"}`, "Missing fields"},
		{"too short", `{"device":"dev-1","name":"ab"}`, "Username must be 3 - 20 characters"},
		{"too long", `{"device":"dev-1","name":"abcdefghijklmnopqrstu"}`, "Username must be 3 - 20 characters"},
		{"bad characters", `{"device":"dev-1","name":"bad name!"}`, "Username must be 3 - 20 characters"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := require.New(t)

			fs := &fakeIdentityStore{}
			w := postUsername(t, &AppDeps{Identity: fs}, tc.body)

			req.Equal(http.StatusBadRequest, w.Code)

			success, errMsg := decodeResponse(t, w)
			req.False(success)
			req.Equal(tc.want, errMsg)
			req.Empty(fs.registered, "nothing may be persisted on failure")
		})
	}
}

func TestHandleSetUsername_StorageFailure(t *testing.T) {
	req := require.New(t)

	w := postUsername(t, &AppDeps{Identity: &fakeIdentityStore{fail: true}}, `{"device":"dev-1","name":"Alice"}`)

	req.Equal(http.StatusInternalServerError, w.Code)

	success, errMsg := decodeResponse(t, w)
	req.False(success)
	req.NotEmpty(errMsg)
}
