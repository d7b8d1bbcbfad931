package middleware // middleware provides shared request processing for handlers

import (
    "net/http" // SameSite modes and cookie type
    "time"     // token lifetime

    "github.com/labstack/echo/v4" // echo provides middleware chaining and context

    "github.com/iliyamo/hotel-booking-web/internal/utils" // session token signing and parsing
)

// SessionCookieConfig configures SessionCookie.
type SessionCookieConfig struct {
    Secret string        // HS256 signing key
    Name   string        // cookie name
    TTL    time.Duration // lifetime of a session token
    Secure bool          // set the Secure attribute (production)
}

// SessionCookie returns an Echo middleware that binds every request to a
// booking session.  The session id travels in a signed JWT cookie.  A
// missing, expired or tampered cookie starts a fresh session; a valid one
// is re-signed on every state-changing request, sliding its expiry.
func SessionCookie(cfg SessionCookieConfig) echo.MiddlewareFunc {
    if cfg.Name == "" {
        cfg.Name = "hb_session"
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            var sessionID string

            // Verify an existing cookie.  Any failure is treated as "no
            // session" rather than an error: the user simply starts over.
            if ck, err := c.Cookie(cfg.Name); err == nil && ck.Value != "" {
                if id, err := utils.ParseSessionToken(cfg.Secret, ck.Value); err == nil {
                    sessionID = id
                }
            }

            switch {
            case sessionID == "":
                tok, err := utils.NewSessionToken(cfg.Secret, cfg.TTL)
                if err != nil {
                    c.Logger().Errorf("session: signing new token: %v", err)
                    return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not start session"})
                }
                sessionID = tok.SessionID
                setSessionCookie(c, cfg, tok)
            case c.Request().Method != http.MethodGet:
                if tok, err := utils.SignSession(cfg.Secret, sessionID, cfg.TTL); err == nil {
                    setSessionCookie(c, cfg, tok)
                }
            }

            c.Set(ContextSessionID, sessionID)
            return next(c)
        }
    }
}

func setSessionCookie(c echo.Context, cfg SessionCookieConfig, tok utils.SessionToken) {
    c.SetCookie(&http.Cookie{
        Name:     cfg.Name,
        Value:    tok.Token,
        Path:     "/",
        Expires:  tok.Exp,
        HttpOnly: true,
        Secure:   cfg.Secure,
        SameSite: http.SameSiteLaxMode,
    })
}
