package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Reservation pins a buyer's intended purchase and its quoted price before
// payment. Stored in Redis under the session key with a 15-minute TTL and
// consumed at most once.
type Reservation struct {
	SessionID       string          `json:"sessionId"`
	LineItems       []LineItem      `json:"lineItems"`
	Customer        Customer        `json:"customer"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	// Amount is the price quoted at reservation time, in human-readable
	// settlement-currency units (e.g. "12.50"). Never re-read from the client.
	Amount    string    `json:"amount"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type LineItem struct {
	VariantID string `json:"variantId"`
	Quantity  int    `json:"quantity"`
}

type Customer struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type ShippingAddress struct {
	Address1 string `json:"address1"`
	City     string `json:"city"`
	Province string `json:"province"`
	Country  string `json:"country"`
	Zip      string `json:"zip"`
}

const (
	TxStatusPending   = "PENDING"
	TxStatusCompleted = "COMPLETED"
)

// TxRecord is the idempotency record stored under the transaction hash.
// A PENDING record is the claim written atomically (SETNX) before chain
// verification; a COMPLETED record carries the created order's details.
// Existence of either means the hash must not mint another order.
type TxRecord struct {
	Status        string    `json:"status"` // PENDING, COMPLETED
	SessionID     string    `json:"sessionId,omitempty"`
	OrderID       string    `json:"orderId,omitempty"`
	OrderName     string    `json:"orderName,omitempty"`
	Amount        string    `json:"amount,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
	CustomerEmail string    `json:"customerEmail,omitempty"`
}

// OrderTxMapping is the reverse lookup stored under the order id.
type OrderTxMapping struct {
	TransactionHash string    `json:"transactionHash"`
	Timestamp       time.Time `json:"timestamp"`
}

// VerifiedPayment is the decoded and validated on-chain transfer.
// Amount is in human-readable token units.
type VerifiedPayment struct {
	Sender      string
	Recipient   string
	Amount      decimal.Decimal
	BlockNumber uint64
}

type Money struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

// OrderSummary is the slice of the Shopify order reported back to the buyer.
type OrderSummary struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Status   string   `json:"status"`
	Total    Money    `json:"total"`
	Customer Customer `json:"customer"`
}
