package handler_test

import (
    "context"
    "encoding/json"
    "errors"
    "io"
    "net/http"
    "net/http/httptest"
    "strings"
    "sync"
    "testing"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/labstack/gommon/log"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/hotel-booking-web/internal/apperror"
    "github.com/iliyamo/hotel-booking-web/internal/client"
    "github.com/iliyamo/hotel-booking-web/internal/flow"
    "github.com/iliyamo/hotel-booking-web/internal/handler"
    "github.com/iliyamo/hotel-booking-web/internal/middleware"
    "github.com/iliyamo/hotel-booking-web/internal/model"
    "github.com/iliyamo/hotel-booking-web/internal/repository"
    "github.com/iliyamo/hotel-booking-web/internal/router"
    "github.com/iliyamo/hotel-booking-web/internal/session"
)

// backend stands in for the Rooms, Guest and Booking services.
type backend struct {
    mu            sync.Mutex
    bookingStatus int
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
    b.mu.Lock()
    defer b.mu.Unlock()
    switch r.URL.Path {
    case "/rooms":
        _, _ = io.WriteString(w, `{"code":200,"data":{"rooms":[{"id":1,"room_number":"101","room_type":"Deluxe Family Room","price_per_night":150,"status":"VACANT"}]}}`)
    case "/guests":
        w.WriteHeader(http.StatusNotFound)
    case "/createGuest":
        w.WriteHeader(http.StatusCreated)
        _, _ = io.WriteString(w, `{"code":201,"data":{"guest_id":8}}`)
    case "/makebooking":
        if b.bookingStatus != 0 {
            w.WriteHeader(b.bookingStatus)
            _, _ = io.WriteString(w, `{"code":500,"message":"Booking creation failed"}`)
            return
        }
        w.WriteHeader(http.StatusCreated)
        _, _ = io.WriteString(w, `{"code":201,"data":{"booking_id":77,"price":150}}`)
    default:
        http.NotFound(w, r)
    }
}

// gateway is a scripted payment processor.
type gateway struct {
    createErr error
}

func (g *gateway) CreateIntent(ctx context.Context, in model.IntentRequest) (model.IntentResponse, error) {
    if g.createErr != nil {
        return model.IntentResponse{}, g.createErr
    }
    return model.IntentResponse{ClientSecret: "pi_7_secret_k"}, nil
}

func (g *gateway) ConfirmIntent(ctx context.Context, secret, instrument string, billing model.BillingDetails, key string) (model.PaymentIntent, error) {
    return model.PaymentIntent{ID: "pi_7", Status: model.IntentSucceeded}, nil
}

// lookup serves one stored confirmation.
type lookup struct {
    rec *repository.ConfirmationRecord
}

func (l lookup) GetByBookingID(ctx context.Context, id int64) (*repository.ConfirmationRecord, error) {
    if l.rec == nil || l.rec.BookingID != id {
        return nil, repository.ErrConfirmationNotFound
    }
    return l.rec, nil
}

type testServer struct {
    e       *echo.Echo
    backend *backend
    gateway *gateway
    cookie  *http.Cookie
}

func newServer(t *testing.T, confirmations handler.ConfirmationLookup) *testServer {
    t.Helper()
    be := &backend{}
    srv := httptest.NewServer(be)
    t.Cleanup(srv.Close)

    logger := log.New("test")
    logger.SetOutput(io.Discard)
    gw := &gateway{}
    opts := client.Options{Timeout: 2 * time.Second}
    f := flow.New(flow.Deps{
        Store:    session.NewMemoryStore(),
        Rooms:    client.NewRoomsClient(srv.URL, opts),
        Guests:   client.NewGuestClient(srv.URL, opts),
        Bookings: client.NewBookingClient(srv.URL, opts),
        Payments: gw,
        Logger:   logger,
    }, flow.Policy{DateShiftDays: 1})

    e := echo.New()
    e.Logger.SetOutput(io.Discard)
    router.RegisterBooking(e, handler.NewBookingHandler(f, confirmations), router.Middlewares{
        Session: middleware.SessionCookie(middleware.SessionCookieConfig{Secret: "s3cret", Name: "hb_session", TTL: time.Hour}),
    })
    return &testServer{e: e, backend: be, gateway: gw}
}

// do sends a request in the server's session and decodes the JSON reply.
func (s *testServer) do(t *testing.T, method, path, body string) (int, map[string]any) {
    t.Helper()
    var rd io.Reader
    if body != "" {
        rd = strings.NewReader(body)
    }
    req := httptest.NewRequest(method, path, rd)
    if body != "" {
        req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    }
    if s.cookie != nil {
        req.AddCookie(s.cookie)
    }
    rec := httptest.NewRecorder()
    s.e.ServeHTTP(rec, req)
    for _, ck := range rec.Result().Cookies() {
        if ck.Name == "hb_session" {
            s.cookie = ck
        }
    }
    out := map[string]any{}
    if rec.Body.Len() > 0 {
        require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
    }
    return rec.Code, out
}

const (
    searchBody = `{"check_in":"2024-06-01","check_out":"2024-06-03","adults":"2","children":"0"}`
    guestBody  = `{"full_name":"Jane Doe","email":"jane@x.com","country_code":"+65","local_number":"91234567"}`
)

func TestBookingFlow_EndToEnd(t *testing.T) {
    s := newServer(t, nil)

    code, body := s.do(t, http.MethodPost, "/v1/rooms/search", searchBody)
    require.Equal(t, http.StatusOK, code, body)
    assert.Len(t, body["items"], 1)

    code, body = s.do(t, http.MethodPost, "/v1/booking/room", `{"room_id":1}`)
    require.Equal(t, http.StatusOK, code, body)
    assert.Equal(t, "room_selected", body["stage"])

    code, body = s.do(t, http.MethodPost, "/v1/booking/guest", guestBody)
    require.Equal(t, http.StatusOK, code, body)
    assert.Equal(t, float64(8), body["guest_id"])

    code, body = s.do(t, http.MethodGet, "/v1/booking/summary", "")
    require.Equal(t, http.StatusOK, code)
    assert.Equal(t, float64(2), body["nights"])
    assert.Equal(t, "300.00", body["total_cost"])
    assert.Equal(t, "2 Adults, 0 Children", body["guest_count"])

    code, body = s.do(t, http.MethodPost, "/v1/booking/confirm", "")
    require.Equal(t, http.StatusOK, code, body)
    assert.Equal(t, float64(77), body["booking_id"])

    code, body = s.do(t, http.MethodPost, "/v1/booking/payment", `{"payment_method":"pm_card_visa"}`)
    require.Equal(t, http.StatusOK, code, body)
    assert.Equal(t, "pi_7", body["paymentIntentId"])
    assert.Equal(t, float64(30000), body["amountMinor"])

    code, body = s.do(t, http.MethodGet, "/v1/booking/confirmation", "")
    require.Equal(t, http.StatusOK, code)
    assert.Equal(t, float64(77), body["bookingId"])
}

func TestSearch_ValidationIsBadRequest(t *testing.T) {
    s := newServer(t, nil)
    code, body := s.do(t, http.MethodPost, "/v1/rooms/search", `{"check_in":"2024-06-01","check_out":"2024-06-03","children":"0"}`)
    assert.Equal(t, http.StatusBadRequest, code)
    assert.Equal(t, "adults", body["field"])
}

func TestSummary_NoDraftIsNotFound(t *testing.T) {
    s := newServer(t, nil)
    code, _ := s.do(t, http.MethodGet, "/v1/booking/summary", "")
    assert.Equal(t, http.StatusNotFound, code)
}

func TestConfirm_ServiceFailureIsBadGateway(t *testing.T) {
    s := newServer(t, nil)
    s.backend.bookingStatus = http.StatusInternalServerError
    s.do(t, http.MethodPost, "/v1/rooms/search", searchBody)
    s.do(t, http.MethodPost, "/v1/booking/room", `{"room_id":1}`)
    s.do(t, http.MethodPost, "/v1/booking/guest", guestBody)

    code, body := s.do(t, http.MethodPost, "/v1/booking/confirm", "")
    assert.Equal(t, http.StatusBadGateway, code)
    assert.Equal(t, "booking", body["service"])
    assert.Equal(t, "Booking creation failed", body["error"])

    code, body = s.do(t, http.MethodGet, "/v1/booking/summary", "")
    require.Equal(t, http.StatusOK, code)
    assert.Equal(t, "guest_identified", body["stage"])
    assert.Nil(t, body["booking_id"])
}

func TestSelectRoom_AfterBookingIsConflict(t *testing.T) {
    s := newServer(t, nil)
    s.do(t, http.MethodPost, "/v1/rooms/search", searchBody)
    s.do(t, http.MethodPost, "/v1/booking/room", `{"room_id":1}`)
    s.do(t, http.MethodPost, "/v1/booking/guest", guestBody)
    code, _ := s.do(t, http.MethodPost, "/v1/booking/confirm", "")
    require.Equal(t, http.StatusOK, code)

    code, _ = s.do(t, http.MethodPost, "/v1/booking/room", `{"room_id":1}`)
    assert.Equal(t, http.StatusConflict, code)

    code, _ = s.do(t, http.MethodDelete, "/v1/booking", "")
    assert.Equal(t, http.StatusNoContent, code)
    code, _ = s.do(t, http.MethodGet, "/v1/booking/summary", "")
    assert.Equal(t, http.StatusNotFound, code)
}

func TestPay_ProcessorRejectionIsPaymentRequired(t *testing.T) {
    s := newServer(t, nil)
    s.gateway.createErr = &apperror.PaymentError{Stage: apperror.StageCreateIntent, Status: 400, Detail: "Invalid API key"}
    s.do(t, http.MethodPost, "/v1/rooms/search", searchBody)
    s.do(t, http.MethodPost, "/v1/booking/room", `{"room_id":1}`)
    s.do(t, http.MethodPost, "/v1/booking/guest", guestBody)
    s.do(t, http.MethodPost, "/v1/booking/confirm", "")

    code, body := s.do(t, http.MethodPost, "/v1/booking/payment", `{"payment_method":"pm_card_visa"}`)
    assert.Equal(t, http.StatusPaymentRequired, code)
    assert.Equal(t, "Invalid API key", body["detail"])

    _, body = s.do(t, http.MethodGet, "/v1/booking/summary", "")
    assert.Equal(t, "failed", body["payment_status"])
    assert.Equal(t, float64(77), body["booking_id"])
}

func TestGetConfirmation_OnlyForOwningSession(t *testing.T) {
    rec := &repository.ConfirmationRecord{ID: 1, SessionID: "someone-else", Confirmation: model.Confirmation{BookingID: 77, PaymentIntentID: "pi_7"}}
    s := newServer(t, lookup{rec: rec})

    code, _ := s.do(t, http.MethodGet, "/v1/confirmations/77", "")
    assert.Equal(t, http.StatusNotFound, code)
    code, _ = s.do(t, http.MethodGet, "/v1/confirmations/abc", "")
    assert.Equal(t, http.StatusBadRequest, code)

    // Claim the record for the test's own session.
    sid := sessionOf(t, s)
    rec.SessionID = sid
    code, body := s.do(t, http.MethodGet, "/v1/confirmations/77", "")
    assert.Equal(t, http.StatusOK, code)
    assert.Equal(t, "pi_7", body["paymentIntentId"])

    code, _ = s.do(t, http.MethodGet, "/v1/confirmations/78", "")
    assert.Equal(t, http.StatusNotFound, code)
}

// sessionOf returns the session id the server assigned to s.
func sessionOf(t *testing.T, s *testServer) string {
    t.Helper()
    require.NotNil(t, s.cookie)
    e := echo.New()
    var sid string
    e.GET("/", func(c echo.Context) error { sid = middleware.SessionID(c); return nil },
        middleware.SessionCookie(middleware.SessionCookieConfig{Secret: "s3cret", Name: "hb_session", TTL: time.Hour}))
    req := httptest.NewRequest(http.MethodGet, "/", nil)
    req.AddCookie(s.cookie)
    e.ServeHTTP(httptest.NewRecorder(), req)
    return sid
}

func TestHealth(t *testing.T) {
    e := echo.New()
    h := &handler.HealthHandler{Checks: map[string]handler.Check{
        "redis": func(context.Context) error { return nil },
    }}
    router.RegisterRoutes(e, h)

    rec := httptest.NewRecorder()
    e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.JSONEq(t, `{"status":"ok","checks":{"redis":"ok"}}`, rec.Body.String())

    h.Checks["mysql"] = func(context.Context) error { return errors.New("connection refused") }
    rec = httptest.NewRecorder()
    e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
    assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
    assert.Contains(t, rec.Body.String(), "connection refused")
}
