package middleware

import (
    "net/http"
    "net/http/httptest"
    "testing"
    "time"

    "github.com/alicebob/miniredis/v2"
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/hotel-booking-web/internal/config"
    "github.com/iliyamo/hotel-booking-web/internal/utils"
)

const secret = "test-secret"

func newRedis(t *testing.T) *redis.Client {
    t.Helper()
    mr := miniredis.RunT(t)
    rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
    t.Cleanup(func() { _ = rdb.Close() })
    return rdb
}

func sessionEcho(h echo.HandlerFunc) *echo.Echo {
    e := echo.New()
    e.Use(SessionCookie(SessionCookieConfig{Secret: secret, Name: "hb_session", TTL: time.Hour}))
    e.GET("/who", h)
    e.POST("/who", h)
    return e
}

func echoSession(c echo.Context) error { return c.String(http.StatusOK, SessionID(c)) }

func TestSessionCookie_IssuesNewSession(t *testing.T) {
    e := sessionEcho(echoSession)
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/who", nil))

    require.Equal(t, http.StatusOK, rec.Code)
    cookies := rec.Result().Cookies()
    require.Len(t, cookies, 1)
    assert.True(t, cookies[0].HttpOnly)

    id, err := utils.ParseSessionToken(secret, cookies[0].Value)
    require.NoError(t, err)
    assert.Equal(t, id, rec.Body.String())
}

func TestSessionCookie_KeepsValidSession(t *testing.T) {
    tok, err := utils.NewSessionToken(secret, time.Hour)
    require.NoError(t, err)
    e := sessionEcho(echoSession)

    req := httptest.NewRequest(http.MethodGet, "/who", nil)
    req.AddCookie(&http.Cookie{Name: "hb_session", Value: tok.Token})
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    assert.Equal(t, tok.SessionID, rec.Body.String())
    assert.Empty(t, rec.Result().Cookies())

    req = httptest.NewRequest(http.MethodPost, "/who", nil)
    req.AddCookie(&http.Cookie{Name: "hb_session", Value: tok.Token})
    rec = httptest.NewRecorder()
    e.ServeHTTP(rec, req)
    assert.Equal(t, tok.SessionID, rec.Body.String())
    require.Len(t, rec.Result().Cookies(), 1)
}

func TestSessionCookie_ReplacesForgedSession(t *testing.T) {
    forged, err := utils.NewSessionToken("other-secret", time.Hour)
    require.NoError(t, err)
    e := sessionEcho(echoSession)

    req := httptest.NewRequest(http.MethodGet, "/who", nil)
    req.AddCookie(&http.Cookie{Name: "hb_session", Value: forged.Token})
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, req)

    assert.NotEqual(t, forged.SessionID, rec.Body.String())
    assert.NotEmpty(t, rec.Body.String())
}

func TestTokenBucket_BlocksWhenEmpty(t *testing.T) {
    rdb := newRedis(t)
    cfg := config.RateLimitConfig{
        Enabled: true, Capacity: 2, RefillTokens: 1, RefillInterval: time.Hour,
        TTL: time.Hour, KeyStrategy: "ip", Prefix: "test:rl",
    }
    e := echo.New()
    e.POST("/v1/booking/confirm", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }, NewTokenBucket(cfg, rdb))

    codes := make([]int, 0, 3)
    for i := 0; i < 3; i++ {
        rec := httptest.NewRecorder()
        e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/booking/confirm", nil))
        codes = append(codes, rec.Code)
        if i == 2 {
            assert.NotEmpty(t, rec.Header().Get("Retry-After"))
        }
    }
    assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)
}

func TestTokenBucket_DisabledPassesThrough(t *testing.T) {
    mw := NewTokenBucket(config.RateLimitConfig{Enabled: false}, nil)
    e := echo.New()
    e.GET("/x", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, mw)
    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
    assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBuildRateKey_SessionRoute(t *testing.T) {
    e := echo.New()
    c := e.NewContext(httptest.NewRequest(http.MethodPost, "/v1/booking/payment", nil), httptest.NewRecorder())
    c.SetPath("/v1/booking/payment")
    c.Set(ContextSessionID, "abc")

    key := buildRateKey(config.RateLimitConfig{Prefix: "hb:rl", KeyStrategy: "session_route"}, c)
    assert.Equal(t, "hb:rl:session:abc:route:POST /v1/booking/payment", key)
}

func TestRedisCache_ServesSecondHitFromRedis(t *testing.T) {
    rdb := newRedis(t)
    calls := 0
    e := echo.New()
    e.GET("/v1/rooms", func(c echo.Context) error {
        calls++
        return c.JSON(http.StatusOK, echo.Map{"rooms": []int{1, 2}})
    }, NewRedisCache(config.CacheConfig{Enabled: true, TTL: time.Minute, Prefix: "test:cache", MaxBodyBytes: 1 << 16}, rdb))

    first := httptest.NewRecorder()
    e.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/v1/rooms", nil))
    second := httptest.NewRecorder()
    e.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/v1/rooms", nil))

    assert.Equal(t, 1, calls)
    assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
    assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
    assert.Equal(t, first.Body.String(), second.Body.String())
    assert.Equal(t, echo.MIMEApplicationJSON, second.Header().Get(echo.HeaderContentType))
}

func TestRedisCache_SkipsErrorsAndOversizedBodies(t *testing.T) {
    rdb := newRedis(t)
    calls := 0
    status := http.StatusBadGateway
    e := echo.New()
    e.GET("/v1/rooms", func(c echo.Context) error {
        calls++
        return c.String(status, "0123456789")
    }, NewRedisCache(config.CacheConfig{Enabled: true, TTL: time.Minute, Prefix: "test:cache", MaxBodyBytes: 4}, rdb))

    for i := 0; i < 2; i++ {
        e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/rooms", nil))
    }
    status = http.StatusOK
    for i := 0; i < 2; i++ {
        rec := httptest.NewRecorder()
        e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/rooms", nil))
        assert.Equal(t, "0123456789", rec.Body.String())
    }
    assert.Equal(t, 4, calls)
}
