package middleware

// identity.go holds the context keys shared across middleware and handlers.
// The session cookie middleware stores the verified session id under
// ContextSessionID; everything downstream reads it through SessionID.

import (
    "github.com/labstack/echo/v4"
)

// ContextSessionID is the echo context key of the current session id.
const ContextSessionID = "session_id"

// SessionID returns the session id placed in the context by SessionCookie,
// or "" when the middleware did not run.
func SessionID(c echo.Context) string {
    if v, ok := c.Get(ContextSessionID).(string); ok {
        return v
    }
    return ""
}

// sessionOrAnon is SessionID with a stable placeholder for key building.
func sessionOrAnon(c echo.Context) string {
    if id := SessionID(c); id != "" {
        return id
    }
    return "anon"
}
