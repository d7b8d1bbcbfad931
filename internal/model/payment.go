package model

// IntentRequest asks the processor-mediated endpoint for a payment intent.
type IntentRequest struct {
    Amount      int64  `json:"amount"` // minor units
    Currency    string `json:"currency"`
    Description string `json:"description"`
}

// IntentResponse carries the client secret used to confirm the intent.
type IntentResponse struct {
    ClientSecret string `json:"client_secret"`
}

// BillingDetails accompany the payment instrument on confirmation.
type BillingDetails struct {
    Name  string `json:"name"`
    Email string `json:"email"`
}

// PaymentIntent is the processor's view of an intent after confirmation.
type PaymentIntent struct {
    ID       string `json:"id"`
    Status   string `json:"status"`
    Amount   int64  `json:"amount"`
    Currency string `json:"currency"`
}

// IntentSucceeded is the only processor status that settles a booking.
const IntentSucceeded = "succeeded"
