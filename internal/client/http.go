// Package client talks to the backend collaborators of the booking flow:
// the Rooms, Guest and Booking services and the payment processor.  Every
// call is bounded by its own timeout on top of the caller's context.
package client

import (
    "bytes"
    "context"
    "encoding/json"
    "fmt"
    "io"
    "net/http"
    "strings"
    "time"

    "github.com/iliyamo/hotel-booking-web/internal/apperror"
)

// maxBody caps how much of a response body is read.
const maxBody = 1 << 20

// Options shared by every client.
type Options struct {
    HTTPClient *http.Client  // nil uses a client without its own timeout
    Timeout    time.Duration // per call; zero means the caller's context only
}

func (o Options) httpClient() *http.Client {
    if o.HTTPClient != nil {
        return o.HTTPClient
    }
    return &http.Client{}
}

// endpoint is the plumbing shared by the JSON services.
type endpoint struct {
    service string
    baseURL string
    http    *http.Client
    timeout time.Duration
}

func newEndpoint(service, baseURL string, opts Options) endpoint {
    return endpoint{
        service: service,
        baseURL: strings.TrimRight(baseURL, "/"),
        http:    opts.httpClient(),
        timeout: opts.Timeout,
    }
}

// response is a fully read reply.
type response struct {
    status int
    body   []byte
}

func (r response) success() bool { return r.status >= 200 && r.status < 300 }

// send issues one request with a JSON body (when in is non-nil) and reads
// the whole reply.  Transport failures, including timeouts, become a
// ServiceCallError with Status 0.
func (e endpoint) send(ctx context.Context, op, method, path string, in any) (response, error) {
    if e.timeout > 0 {
        var cancel context.CancelFunc
        ctx, cancel = context.WithTimeout(ctx, e.timeout)
        defer cancel()
    }

    var body io.Reader
    if in != nil {
        bs, err := json.Marshal(in)
        if err != nil {
            return response{}, e.fail(op, 0, "", fmt.Errorf("encode request: %w", err))
        }
        body = bytes.NewReader(bs)
    }
    req, err := http.NewRequestWithContext(ctx, method, e.baseURL+path, body)
    if err != nil {
        return response{}, e.fail(op, 0, "", err)
    }
    req.Header.Set("Accept", "application/json")
    if in != nil {
        req.Header.Set("Content-Type", "application/json")
    }

    resp, err := e.http.Do(req)
    if err != nil {
        return response{}, e.fail(op, 0, "", err)
    }
    defer resp.Body.Close()
    bs, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
    if err != nil {
        return response{}, e.fail(op, resp.StatusCode, "", fmt.Errorf("read response: %w", err))
    }
    return response{status: resp.StatusCode, body: bs}, nil
}

func (e endpoint) fail(op string, status int, msg string, err error) *apperror.ServiceCallError {
    return &apperror.ServiceCallError{Service: e.service, Op: op, Status: status, Message: msg, Err: err}
}

// envelope is the {code, message, data} shape used by the backend services.
type envelope struct {
    Code    int             `json:"code"`
    Message string          `json:"message"`
    Data    json.RawMessage `json:"data"`
}

// backendMessage pulls a human readable message out of an error reply.
func backendMessage(body []byte) string {
    var env envelope
    if err := json.Unmarshal(body, &env); err == nil && env.Message != "" {
        return env.Message
    }
    s := strings.TrimSpace(string(body))
    if len(s) > 200 {
        s = s[:200]
    }
    return s
}
