package testutil

import (
	"net/http"

	authmw "felicity/pkg/platform/middleware/auth"
)

// WithSession stamps the request with an authenticated session, simulating
// what RequireAuth would do after resolving credentials.
func WithSession(req *http.Request, userID, role string) *http.Request {
	return req.WithContext(authmw.WithSession(req.Context(), userID, role))
}
