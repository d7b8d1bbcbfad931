package client

import (
    "context"
    "encoding/json"
    "fmt"
    "io"
    "net/http"
    "net/url"
    "strings"
    "time"

    "github.com/google/uuid"

    "github.com/iliyamo/hotel-booking-web/internal/apperror"
    "github.com/iliyamo/hotel-booking-web/internal/model"
)

// PaymentClient drives the embedded-element payment integration: an intent
// is created through a processor-mediated endpoint, then confirmed directly
// against the processor with the client secret and the instrument token the
// page's payment element produced.
type PaymentClient struct {
    intentURL      string
    processorURL   string
    publishableKey string
    http           *http.Client
    timeout        time.Duration
}

// PaymentConfig locates the two payment endpoints.
type PaymentConfig struct {
    IntentURL      string // full URL of the intent creation endpoint
    ProcessorURL   string // processor API base, e.g. https://api.stripe.com
    PublishableKey string
}

// NewPaymentClient builds a PaymentClient.
func NewPaymentClient(cfg PaymentConfig, opts Options) *PaymentClient {
    return &PaymentClient{
        intentURL:      cfg.IntentURL,
        processorURL:   strings.TrimRight(cfg.ProcessorURL, "/"),
        publishableKey: cfg.PublishableKey,
        http:           opts.httpClient(),
        timeout:        opts.Timeout,
    }
}

// CreateIntent asks for a payment intent.  Any non-2xx reply is a
// PaymentError whose Detail is the first entry of the reply's Errors list,
// or the raw reply text when there is none.
func (c *PaymentClient) CreateIntent(ctx context.Context, in model.IntentRequest) (model.IntentResponse, error) {
    bs, err := json.Marshal(in)
    if err != nil {
        return model.IntentResponse{}, &apperror.PaymentError{Stage: apperror.StageCreateIntent, Err: err}
    }
    status, body, err := c.do(ctx, http.MethodPost, c.intentURL, "application/json", strings.NewReader(string(bs)), nil)
    if err != nil {
        return model.IntentResponse{}, &apperror.PaymentError{Stage: apperror.StageCreateIntent, Err: err}
    }
    if status < 200 || status > 299 {
        return model.IntentResponse{}, &apperror.PaymentError{
            Stage:  apperror.StageCreateIntent,
            Status: status,
            Detail: intentErrorDetail(body),
        }
    }
    var out model.IntentResponse
    if err := json.Unmarshal(body, &out); err != nil {
        return model.IntentResponse{}, &apperror.PaymentError{Stage: apperror.StageCreateIntent, Status: status, Detail: "malformed intent response", Err: err}
    }
    if out.ClientSecret == "" {
        return model.IntentResponse{}, &apperror.PaymentError{Stage: apperror.StageCreateIntent, Status: status, Detail: "client secret not returned"}
    }
    return out, nil
}

// ConfirmIntent confirms the intent identified by clientSecret with the
// given instrument token and billing details.  A "pm_" token is an existing
// payment method: its billing details are updated first, since the processor
// only takes inline billing details with a new payment method.  Anything else
// is treated as a card token from the payment element.  idempotencyKey is
// sent with the confirmation; a fresh key is used when it is empty.
func (c *PaymentClient) ConfirmIntent(ctx context.Context, clientSecret, instrument string, billing model.BillingDetails, idempotencyKey string) (model.PaymentIntent, error) {
    intentID, ok := intentIDFromSecret(clientSecret)
    if !ok {
        return model.PaymentIntent{}, &apperror.PaymentError{Stage: apperror.StageConfirm, Detail: "malformed client secret"}
    }
    if idempotencyKey == "" {
        idempotencyKey = uuid.NewString()
    }

    form := url.Values{}
    form.Set("client_secret", clientSecret)
    if strings.HasPrefix(instrument, "pm_") {
        if err := c.updateBilling(ctx, instrument, billing); err != nil {
            return model.PaymentIntent{}, err
        }
        form.Set("payment_method", instrument)
    } else {
        form.Set("payment_method_data[type]", "card")
        form.Set("payment_method_data[card][token]", instrument)
        form.Set("payment_method_data[billing_details][name]", billing.Name)
        form.Set("payment_method_data[billing_details][email]", billing.Email)
    }

    endpoint := fmt.Sprintf("%s/v1/payment_intents/%s/confirm", c.processorURL, url.PathEscape(intentID))
    status, body, err := c.do(ctx, http.MethodPost, endpoint, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()), map[string]string{
        "Authorization":   "Bearer " + c.publishableKey,
        "Idempotency-Key": idempotencyKey,
    })
    if err != nil {
        return model.PaymentIntent{}, &apperror.PaymentError{Stage: apperror.StageConfirm, Err: err}
    }
    if status < 200 || status > 299 {
        return model.PaymentIntent{}, &apperror.PaymentError{Stage: apperror.StageConfirm, Status: status, Detail: processorErrorDetail(body)}
    }
    var pi model.PaymentIntent
    if err := json.Unmarshal(body, &pi); err != nil {
        return model.PaymentIntent{}, &apperror.PaymentError{Stage: apperror.StageConfirm, Status: status, Detail: "malformed intent", Err: err}
    }
    return pi, nil
}

// updateBilling sets the billing name and email of an existing payment
// method.  Empty values are left out.
func (c *PaymentClient) updateBilling(ctx context.Context, paymentMethod string, billing model.BillingDetails) error {
    form := url.Values{}
    if billing.Name != "" {
        form.Set("billing_details[name]", billing.Name)
    }
    if billing.Email != "" {
        form.Set("billing_details[email]", billing.Email)
    }
    if len(form) == 0 {
        return nil
    }
    endpoint := fmt.Sprintf("%s/v1/payment_methods/%s", c.processorURL, url.PathEscape(paymentMethod))
    status, body, err := c.do(ctx, http.MethodPost, endpoint, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()), map[string]string{
        "Authorization": "Bearer " + c.publishableKey,
    })
    if err != nil {
        return &apperror.PaymentError{Stage: apperror.StageConfirm, Err: err}
    }
    if status < 200 || status > 299 {
        return &apperror.PaymentError{Stage: apperror.StageConfirm, Status: status, Detail: processorErrorDetail(body)}
    }
    return nil
}

func (c *PaymentClient) do(ctx context.Context, method, target, contentType string, body io.Reader, headers map[string]string) (int, []byte, error) {
    if c.timeout > 0 {
        var cancel context.CancelFunc
        ctx, cancel = context.WithTimeout(ctx, c.timeout)
        defer cancel()
    }
    req, err := http.NewRequestWithContext(ctx, method, target, body)
    if err != nil {
        return 0, nil, err
    }
    req.Header.Set("Content-Type", contentType)
    req.Header.Set("Accept", "application/json")
    for k, v := range headers {
        req.Header.Set(k, v)
    }
    resp, err := c.http.Do(req)
    if err != nil {
        return 0, nil, err
    }
    defer resp.Body.Close()
    bs, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
    if err != nil {
        return resp.StatusCode, nil, err
    }
    return resp.StatusCode, bs, nil
}

// intentIDFromSecret extracts "pi_123" from "pi_123_secret_abc".
func intentIDFromSecret(secret string) (string, bool) {
    i := strings.Index(secret, "_secret_")
    if i <= 0 {
        return "", false
    }
    return secret[:i], true
}

func intentErrorDetail(body []byte) string {
    var e struct {
        Errors []string `json:"Errors"`
    }
    if err := json.Unmarshal(body, &e); err == nil && len(e.Errors) > 0 {
        return e.Errors[0]
    }
    return strings.TrimSpace(string(body))
}

func processorErrorDetail(body []byte) string {
    var e struct {
        Error struct {
            Message string `json:"message"`
        } `json:"error"`
    }
    if err := json.Unmarshal(body, &e); err == nil && e.Error.Message != "" {
        return e.Error.Message
    }
    return strings.TrimSpace(string(body))
}
