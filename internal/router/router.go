package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/hotel-booking-web/internal/handler" // handlers for health and the booking steps
)

// Middlewares are the optional per-route middlewares of the booking API.
// Nil entries are skipped.
type Middlewares struct {
	Session   echo.MiddlewareFunc // binds the request to a booking session; required for /v1
	RateLimit echo.MiddlewareFunc // token bucket on state-changing steps
	Cache     echo.MiddlewareFunc // response cache for the room listing
}

func chain(mws ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
	out := make([]echo.MiddlewareFunc, 0, len(mws))
	for _, mw := range mws {
		if mw != nil {
			out = append(out, mw)
		}
	}
	return out
}

// RegisterRoutes registers routes that do not belong to a session.
// Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo, h *handler.HealthHandler) {
	// Load balancers and monitoring probe this to verify the service is up.
	e.GET("/healthz", h.Health)
}

// RegisterBooking registers the booking flow under /v1.  Every route runs
// inside a session.  The room listing is shared by all sessions and may be
// cached; state-changing steps are rate limited per session and route.
func RegisterBooking(e *echo.Echo, b *handler.BookingHandler, mw Middlewares) {
	g := e.Group("/v1", chain(mw.Session)...)

	// Room selection.  The listing is identical for every session, so the
	// cache sits on this route only.
	g.GET("/rooms", b.ListRooms, chain(mw.Cache)...)
	g.POST("/rooms/search", b.SearchRooms, chain(mw.RateLimit)...)

	// Draft steps, in flow order.
	g.POST("/booking/room", b.SelectRoom, chain(mw.RateLimit)...)
	g.POST("/booking/guest", b.IdentifyGuest, chain(mw.RateLimit)...)
	g.GET("/booking/summary", b.Summary)
	g.POST("/booking/confirm", b.ConfirmBooking, chain(mw.RateLimit)...)
	g.POST("/booking/payment", b.Pay, chain(mw.RateLimit)...)
	g.GET("/booking/confirmation", b.Confirmation)
	g.DELETE("/booking", b.Abandon)

	// Durable confirmation records (requires a database).
	g.GET("/confirmations/:booking_id", b.GetConfirmation)
}
