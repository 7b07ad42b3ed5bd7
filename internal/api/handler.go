package api

import (
	"github.com/SherClockHolmes/webpush-go"

	"jabber-dashboard/internal/state"
	"jabber-dashboard/internal/store"
	"jabber-dashboard/internal/upstream"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	client    *upstream.Client
	workspace *state.Workspace
	store     store.Store
	webpush   *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(client *upstream.Client, ws *state.Workspace, st store.Store, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		client:    client,
		workspace: ws,
		store:     st,
		webpush:   webpushOptions,
	}
}
