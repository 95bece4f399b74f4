package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"usdc-storefront/internal/dto"
	"usdc-storefront/internal/model"
	"usdc-storefront/internal/repository"
	"usdc-storefront/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTxHash = "0x3a1b2c3d4e5f60718293a4b5c6d7e8f90a1b2c3d4e5f60718293a4b5c6d7e8f9"

type fakeCheckoutService struct {
	finalizeErr error
	createErr   error
}

func (f *fakeCheckoutService) CreateReservation(ctx context.Context, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &dto.CreateSessionResponse{
		SessionID: "sess-1",
		ExpiresAt: time.Now().UTC().Add(15 * time.Minute),
	}, nil
}

func (f *fakeCheckoutService) Finalize(ctx context.Context, sessionID, txHash string) (*model.OrderSummary, error) {
	if f.finalizeErr != nil {
		return nil, f.finalizeErr
	}
	return &model.OrderSummary{
		ID:     "gid://shopify/Order/1",
		Name:   "#1001",
		Status: "PAID",
		Total:  model.Money{Amount: "25.00", CurrencyCode: "USD"},
	}, nil
}

func (f *fakeCheckoutService) RecentOrders(ctx context.Context, limit int) ([]*model.FinalizedOrder, error) {
	return nil, nil
}

func doJSON(t *testing.T, h echo.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))
	return rec
}

func validSessionBody() string {
	return `{
		"productId": "gid://shopify/Product/42",
		"variantId": "gid://shopify/ProductVariant/4242",
		"variantPrice": "25.00",
		"quantity": 1,
		"customer": {"email": "buyer@example.com", "firstName": "Ada", "lastName": "Lovelace"},
		"shippingAddress": {"address1": "1 Main St", "city": "Springfield", "province": "IL", "country": "US", "zip": "62701"}
	}`
}

func TestCreateSessionOK(t *testing.T) {
	h := NewCheckoutHandler(&fakeCheckoutService{})

	rec := doJSON(t, h.CreateSession, validSessionBody())
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp dto.CreateSessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "sess-1", resp.SessionID)
	assert.False(t, resp.ExpiresAt.IsZero())
}

func TestCreateSessionValidation(t *testing.T) {
	h := NewCheckoutHandler(&fakeCheckoutService{})

	tests := []struct {
		name string
		body string
	}{
		{"missing variantId", `{"variantPrice": "25.00", "quantity": 1, "customer": {"email": "a@b.co"}, "shippingAddress": {"address1": "x"}}`},
		{"missing price", `{"variantId": "v", "quantity": 1, "customer": {"email": "a@b.co"}, "shippingAddress": {"address1": "x"}}`},
		{"zero quantity", `{"variantId": "v", "variantPrice": "25.00", "quantity": 0, "customer": {"email": "a@b.co"}, "shippingAddress": {"address1": "x"}}`},
		{"missing email", `{"variantId": "v", "variantPrice": "25.00", "quantity": 1, "customer": {}, "shippingAddress": {"address1": "x"}}`},
		{"missing address1", `{"variantId": "v", "variantPrice": "25.00", "quantity": 1, "customer": {"email": "a@b.co"}, "shippingAddress": {}}`},
		{"negative price", `{"variantId": "v", "variantPrice": "-1.00", "quantity": 1, "customer": {"email": "a@b.co"}, "shippingAddress": {"address1": "x"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, h.CreateSession, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestCreateSessionStorageFailure(t *testing.T) {
	h := NewCheckoutHandler(&fakeCheckoutService{
		createErr: fmt.Errorf("create reservation: %w", repository.ErrStorageUnavailable),
	})

	rec := doJSON(t, h.CreateSession, validSessionBody())
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestFinalizeOK(t *testing.T) {
	h := NewCheckoutHandler(&fakeCheckoutService{})

	rec := doJSON(t, h.Finalize, fmt.Sprintf(`{"sessionId": "sess-1", "transactionHash": %q}`, testTxHash))
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp dto.FinalizeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Order)
	assert.Equal(t, "#1001", resp.Order.Name)
	assert.Equal(t, "25.00", resp.Order.Total.Amount)
}

func TestFinalizeMissingFields(t *testing.T) {
	h := NewCheckoutHandler(&fakeCheckoutService{})

	rec := doJSON(t, h.Finalize, `{"sessionId": "sess-1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h.Finalize, `{"transactionHash": "0xdeadbeef"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFinalizeBuyerFacingErrors(t *testing.T) {
	tests := []struct {
		err     error
		message string
	}{
		{service.ErrInvalidSession, "invalid or expired order session"},
		{service.ErrDuplicateTransaction, "transaction already used for another order"},
		{service.ErrWrongContract, "transaction is not a USDC transfer"},
		{service.ErrAmountMismatch, "invalid payment amount"},
		{fmt.Errorf("%w: variant out of stock", service.ErrOrderCreation), "order creation failed"},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			h := NewCheckoutHandler(&fakeCheckoutService{finalizeErr: tt.err})

			rec := doJSON(t, h.Finalize, fmt.Sprintf(`{"sessionId": "sess-1", "transactionHash": %q}`, testTxHash))
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var resp dto.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			// Only the sentinel text reaches the buyer, not internal detail.
			assert.Equal(t, tt.message, resp.Error)
		})
	}
}

func TestFinalizeUnknownErrorHidden(t *testing.T) {
	h := NewCheckoutHandler(&fakeCheckoutService{
		finalizeErr: fmt.Errorf("rpc: connection refused at 10.0.0.5:8545"),
	})

	rec := doJSON(t, h.Finalize, fmt.Sprintf(`{"sessionId": "sess-1", "transactionHash": %q}`, testTxHash))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotContains(t, resp.Error, "10.0.0.5")
}
