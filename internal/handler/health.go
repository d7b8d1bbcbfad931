package handler // declare the package name; contains HTTP handlers

import (
    "context"  // checks run with a bounded context
    "net/http" // net/http provides status codes and response helpers
    "sort"     // stable ordering of check names
    "time"     // per-check timeout

    "github.com/labstack/echo/v4" // echo is the web framework used for this project
)

// Check probes one dependency (Redis, MySQL).  A nil error means healthy.
type Check func(ctx context.Context) error

// HealthHandler answers the health-check endpoint used by load balancers
// and monitoring systems.  With no checks registered it only reports that
// the process is up.
type HealthHandler struct {
    Checks map[string]Check
}

// Health returns 200 with {"status":"ok"} when every check passes and 503
// with the failing checks otherwise.  The backend HTTP services are not
// probed: the booking flow reports their failures per request.
func (h *HealthHandler) Health(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
    defer cancel()

    names := make([]string, 0, len(h.Checks))
    for name := range h.Checks {
        names = append(names, name)
    }
    sort.Strings(names)

    status := http.StatusOK
    results := make(map[string]string, len(names))
    for _, name := range names {
        if err := h.Checks[name](ctx); err != nil {
            status = http.StatusServiceUnavailable
            results[name] = err.Error()
            continue
        }
        results[name] = "ok"
    }
    body := echo.Map{"status": "ok"}
    if status != http.StatusOK {
        body["status"] = "degraded"
    }
    if len(results) > 0 {
        body["checks"] = results
    }
    return c.JSON(status, body)
}
