package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStore_LoadCreatesDurableDeviceID(t *testing.T) {
	req := require.New(t)

	path := filepath.Join(t.TempDir(), "identity.json")
	s := NewStore(path)

	first, err := s.Load()
	req.NoError(err)
	req.NotEmpty(first.DeviceID)
	req.Empty(first.Username)

	// A second load returns the same device id, not a fresh one.
	second, err := s.Load()
	req.NoError(err)
	req.Equal(first.DeviceID, second.DeviceID)

	// And so does a second store over the same file.
	third, err := NewStore(path).Load()
	req.NoError(err)
	req.Equal(first.DeviceID, third.DeviceID)
}

func TestStore_SaveUsername(t *testing.T) {
	req := require.New(t)

	path := filepath.Join(t.TempDir(), "nested", "dir", "identity.json")
	s := NewStore(path)

	before, err := s.Load()
	req.NoError(err)

	req.NoError(s.SaveUsername("Alice"))

	after, err := s.Load()
	req.NoError(err)
	req.Equal("Alice", after.Username)
	req.Equal(before.DeviceID, after.DeviceID)
}

func TestStore_CorruptFile(t *testing.T) {
	req := require.New(t)

	path := filepath.Join(t.TempDir(), "identity.json")
	req.NoError(os.WriteFile(path, []byte("not json"), 0o600))

	_, err := NewStore(path).Load()
	req.Error(err)
}

func TestRegister(t *testing.T) {
	req := require.New(t)

	var got registerRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req.Equal("/set_username", r.URL.Path)
		req.NoError(json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		if got.Name == "taken" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"success":false,"error":"Username is already taken"}`))
			return
		}
		w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	req.NoError(Register(context.Background(), srv.URL, "dev-1", "Alice"))
	req.Equal(registerRequest{Device: "dev-1", Name: "Alice"}, got)

	err := Register(context.Background(), srv.URL, "dev-1", "taken")
	req.EqualError(err, "Username is already taken")
}

func TestRegister_ServerUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	require.Error(t, Register(context.Background(), url, "dev-1", "Alice"))
}
