package responses

import (
	"hospital-service/internal/app/models"
	"time"
)

type PaymentReceipt struct {
	TransactionID      string    `json:"transactionId"`
	Status             string    `json:"status"`
	Amount             float64   `json:"amount"`
	PaymentMethod      string    `json:"paymentMethod"`
	ProcessedAt        time.Time `json:"processedAt"`
	StripeClientSecret string    `json:"stripeClientSecret,omitempty"`
}

type ProcessPayment struct {
	Bill    *models.Bill    `json:"bill"`
	Payment *PaymentReceipt `json:"payment"`
}

type PaymentIntent struct {
	ClientSecret    string  `json:"clientSecret"`
	PaymentIntentID string  `json:"paymentIntentId"`
	Amount          float64 `json:"amount"`
	Currency        string  `json:"currency"`
	Status          string  `json:"status"`
	IsMock          bool    `json:"isMock"`
}

type ConfirmPayment struct {
	Bill          *models.Bill `json:"bill"`
	PaymentStatus string       `json:"paymentStatus"`
}

type CheckoutSession struct {
	URL       string `json:"url"`
	SessionID string `json:"sessionId"`
	IsMock    bool   `json:"isMock"`
}
