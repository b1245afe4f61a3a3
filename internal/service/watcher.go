package service

import (
	"context"

	"backend/internal/repository"
	"backend/internal/session"
	"backend/internal/websocket"
)

// profileWatcher feeds a session.Store from the database, re-reading the
// record whenever the hub announces a change for the watched account. The
// initial snapshot is delivered synchronously before Watch returns, so the
// store observes at-subscription state first and remote edits after.
type profileWatcher struct {
	profiles repository.ProfileRepository
	hub      *websocket.Hub
}

// NewProfileWatcher returns a session.ProfileWatcher backed by the profile
// repository and the event hub.
func NewProfileWatcher(profiles repository.ProfileRepository, hub *websocket.Hub) session.ProfileWatcher {
	return &profileWatcher{profiles: profiles, hub: hub}
}

func (w *profileWatcher) Watch(ctx context.Context, accountID string, onUpdate func(session.ProfileRecord), onError func(error)) (func(), error) {
	deliver := func() {
		profile, err := w.profiles.GetByAccountID(ctx, accountID)
		if err != nil {
			onError(err)
			return
		}
		// A missing record is a valid delivery: the store synthesizes the
		// guest default from it.
		onUpdate(session.ProfileRecord{Base: profile})
	}

	// A failed initial read goes through onError like any later one; the
	// subscription stays live so a retriggered event can still recover.
	// Only the identity layer may fail a sign-in terminally, not the
	// profile store.
	deliver()

	cancel := w.hub.Subscribe(accountID, func(websocket.Event) {
		deliver()
	})
	return cancel, nil
}
