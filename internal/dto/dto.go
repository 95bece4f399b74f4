package dto

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
	"usdc-storefront/internal/model"

	"github.com/shopspring/decimal"
)

type CustomerInput struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type ShippingAddressInput struct {
	Address1 string `json:"address1"`
	City     string `json:"city"`
	Province string `json:"province"`
	Country  string `json:"country"`
	Zip      string `json:"zip"`
}

type CreateSessionRequest struct {
	ProductID       string               `json:"productId"`
	VariantID       string               `json:"variantId"`
	VariantPrice    string               `json:"variantPrice"`
	Quantity        int                  `json:"quantity"`
	Customer        CustomerInput        `json:"customer"`
	ShippingAddress ShippingAddressInput `json:"shippingAddress"`
}

func (r *CreateSessionRequest) Validate() error {
	if r.VariantID == "" {
		return fmt.Errorf("missing required field: variantId")
	}
	if r.Quantity < 1 {
		return fmt.Errorf("quantity must be at least 1")
	}
	if r.VariantPrice == "" {
		return fmt.Errorf("missing required field: variantPrice")
	}
	price, err := decimal.NewFromString(r.VariantPrice)
	if err != nil || !price.IsPositive() {
		return fmt.Errorf("variantPrice must be a positive decimal string")
	}
	if r.Customer.Email == "" {
		return fmt.Errorf("missing required field: customer.email")
	}
	if _, err := mail.ParseAddress(r.Customer.Email); err != nil {
		return fmt.Errorf("invalid customer email")
	}
	if r.ShippingAddress.Address1 == "" {
		return fmt.Errorf("missing required field: shippingAddress.address1")
	}
	return nil
}

type CreateSessionResponse struct {
	SessionID string    `json:"sessionId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type FinalizeRequest struct {
	SessionID       string `json:"sessionId"`
	TransactionHash string `json:"transactionHash"`
}

func (r *FinalizeRequest) Validate() error {
	if r.SessionID == "" {
		return fmt.Errorf("missing required field: sessionId")
	}
	if r.TransactionHash == "" {
		return fmt.Errorf("missing required field: transactionHash")
	}
	// 0x-prefixed 32-byte hash
	if !strings.HasPrefix(r.TransactionHash, "0x") || len(r.TransactionHash) != 66 {
		return fmt.Errorf("invalid transaction hash")
	}
	return nil
}

type FinalizeResponse struct {
	Success bool                `json:"success"`
	Order   *model.OrderSummary `json:"order"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
