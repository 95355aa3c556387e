// Package authsdk is a Go client for the tabgate HTTP surface, and holds the
// request and response types shared with the server.
//
// A Client keeps cookies in a jar, so the refresh token set at login and the
// CSRF cookie travel the way they would in a browser:
//
//	c := authsdk.NewClient("http://localhost:8080")
//	login, err := c.Login(ctx, "admin@example.com", "password123")
//	if err != nil {
//		var apiErr *httpx.APIError
//		if errors.As(err, &apiErr) && apiErr.Code == httpx.ErrorCodeInvalidCredentials {
//			// wrong email or password
//		}
//	}
//	me, err := c.Me(ctx)
//
// Refresh fetches a CSRF token first when it has none, since the refresh
// request carries the session cookie.
package authsdk
