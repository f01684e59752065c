package testutil

import (
	"net/http"

	id "casework/pkg/domain"
	"casework/pkg/requestcontext"
)

// WithActor adds an authenticated actor to the request context.
// This simulates what the identity middleware does for a valid bearer token.
func WithActor(req *http.Request, userID int64, role id.Role) *http.Request {
	ctx := requestcontext.WithActor(req.Context(), id.Actor{ID: id.UserID(userID), Role: role})
	return req.WithContext(ctx)
}
