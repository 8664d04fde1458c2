package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

const (
	// SessionIDKey is the context key for the request's session id.
	SessionIDKey contextKey = "session_id"
	// SessionProvidedKey marks whether the session id came from the
	// client rather than being generated here.
	SessionProvidedKey contextKey = "session_provided"

	// SessionHeader is the header anonymous clients carry their cart
	// identity in.
	SessionHeader = "session-id"
)

// GetSessionID extracts the session id from the context. Empty string if
// the session middleware did not run.
func GetSessionID(ctx context.Context) string {
	sessionID, _ := ctx.Value(SessionIDKey).(string)
	return sessionID
}

// SessionProvided reports whether the client sent its own session-id
// header, as opposed to this server minting one for the request.
func SessionProvided(ctx context.Context) bool {
	provided, _ := ctx.Value(SessionProvidedKey).(bool)
	return provided
}

// Session reads the session-id header and puts it on the context. When
// the header is absent a fresh random id is generated and suggested back
// to the client via the response header, so the next request can carry
// it.
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.Header.Get(SessionHeader)
		provided := sessionID != ""
		if !provided {
			sessionID = uuid.NewString()
			w.Header().Set(SessionHeader, sessionID)
		}

		ctx := context.WithValue(r.Context(), SessionIDKey, sessionID)
		ctx = context.WithValue(ctx, SessionProvidedKey, provided)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
