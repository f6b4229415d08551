package middleware

import (
	"context"
	"net/http"

	id "permitdesk/pkg/domain"
)

type contextKeyActorID struct{}

var ContextKeyActorID = contextKeyActorID{}

// Actor extracts the acting staff/citizen identity from the X-Actor-ID header.
// Authentication itself is handled by the surrounding gateway; by the time a
// request reaches this service the header is trusted. An absent header means
// the change is attributed to the system actor.
func Actor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := id.ActorID(r.Header.Get("X-Actor-ID"))
		ctx := context.WithValue(r.Context(), ContextKeyActorID, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetActor retrieves the acting identity from the context.
func GetActor(ctx context.Context) id.ActorID {
	actor, ok := ctx.Value(ContextKeyActorID).(id.ActorID)
	if !ok {
		return id.SystemActor
	}
	return actor
}
