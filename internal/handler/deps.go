/*
Package handler provides the HTTP handlers and routing setup for the Ramblur
server.

This file defines the dependency container threaded through the handlers.
*/
package handler

import (
	"context"

	"ramblur/internal/app/hub"
	"ramblur/internal/configs"
)

// IdentityStore is the persistence surface of the username registration
// endpoint. *store.Store implements it.
type IdentityStore interface {
	SetUsername(ctx context.Context, device, name string) error
}

// AppDeps bundles the shared dependencies handlers need.
type AppDeps struct {
	// Config holds the read-only application configuration.
	Config *configs.AppConfig

	// Hub is the chat event loop new websocket clients attach to.
	Hub *hub.Hub

	// Identity persists device-to-username registrations.
	Identity IdentityStore
}
