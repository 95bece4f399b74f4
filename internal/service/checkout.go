package service

import (
	"context"
	"fmt"
	"log"
	"time"
	"usdc-storefront/internal/client"
	"usdc-storefront/internal/dto"
	"usdc-storefront/internal/model"
	"usdc-storefront/internal/repository"
)

// FinalizeState tags how far a finalize call progressed. Every transition
// boundary is an I/O call; a failure before StateOrderCreated leaves no
// order behind.
type FinalizeState int

const (
	StateStart FinalizeState = iota
	StateReservationLoaded
	StateTransactionClaimed
	StatePaymentVerified
	StateOrderCreated
	StateRecordsPersisted
	StateReservationCleared
)

func (s FinalizeState) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateReservationLoaded:
		return "reservation_loaded"
	case StateTransactionClaimed:
		return "transaction_claimed"
	case StatePaymentVerified:
		return "payment_verified"
	case StateOrderCreated:
		return "order_created"
	case StateRecordsPersisted:
		return "records_persisted"
	case StateReservationCleared:
		return "reservation_cleared"
	}
	return "unknown"
}

type CheckoutService interface {
	// CreateReservation pins the quoted price and purchase details under a
	// fresh single-use session id with a fixed expiry window.
	CreateReservation(ctx context.Context, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error)
	// Finalize verifies the on-chain payment against the reservation and
	// creates the Shopify order exactly once per transaction hash.
	Finalize(ctx context.Context, sessionID, txHash string) (*model.OrderSummary, error)
	// RecentOrders lists the latest finalized orders from the audit log.
	RecentOrders(ctx context.Context, limit int) ([]*model.FinalizedOrder, error)
}

type checkoutServiceImpl struct {
	reservationRepo repository.ReservationRepository
	txRecordRepo    repository.TxRecordRepository
	orderAuditRepo  repository.OrderAuditRepository
	verifier        VerifierService
	shopify         client.ShopifyClient
}

func NewCheckoutService(
	reservationRepo repository.ReservationRepository,
	txRecordRepo repository.TxRecordRepository,
	orderAuditRepo repository.OrderAuditRepository,
	verifier VerifierService,
	shopify client.ShopifyClient,
) CheckoutService {
	return &checkoutServiceImpl{
		reservationRepo: reservationRepo,
		txRecordRepo:    txRecordRepo,
		orderAuditRepo:  orderAuditRepo,
		verifier:        verifier,
		shopify:         shopify,
	}
}

func (s *checkoutServiceImpl) CreateReservation(ctx context.Context, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error) {
	res := &model.Reservation{
		LineItems: []model.LineItem{
			{
				VariantID: req.VariantID,
				Quantity:  req.Quantity,
			},
		},
		Customer: model.Customer{
			Email:     req.Customer.Email,
			FirstName: req.Customer.FirstName,
			LastName:  req.Customer.LastName,
		},
		ShippingAddress: model.ShippingAddress{
			Address1: req.ShippingAddress.Address1,
			City:     req.ShippingAddress.City,
			Province: req.ShippingAddress.Province,
			Country:  req.ShippingAddress.Country,
			Zip:      req.ShippingAddress.Zip,
		},
		// The price is pinned here and never re-read from the client.
		Amount: req.VariantPrice,
	}

	sessionID, err := s.reservationRepo.Create(ctx, res)
	if err != nil {
		return nil, fmt.Errorf("create reservation: %w", err)
	}

	return &dto.CreateSessionResponse{
		SessionID: sessionID,
		ExpiresAt: res.ExpiresAt,
	}, nil
}

func (s *checkoutServiceImpl) Finalize(ctx context.Context, sessionID, txHash string) (order *model.OrderSummary, err error) {
	state := StateStart
	defer func() {
		if err != nil {
			log.Printf("finalize tx %s aborted at %s: %v", txHash, state, err)
		}
	}()

	res, err := s.reservationRepo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if res == nil {
		// A finalized session is gone, so a repeat of a successful call
		// would otherwise look like a stale session. Report the replay as
		// a duplicate when a record already exists for the hash.
		rec, gerr := s.txRecordRepo.Get(ctx, txHash)
		if gerr == nil && rec != nil {
			return nil, ErrDuplicateTransaction
		}
		return nil, ErrInvalidSession
	}
	state = StateReservationLoaded

	// Claim the hash before any chain or Shopify call. Of two racing
	// finalize calls with the same hash, the SETNX loser stops here and no
	// second order can be minted.
	claimed, err := s.txRecordRepo.Claim(ctx, txHash, sessionID)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, ErrDuplicateTransaction
	}
	state = StateTransactionClaimed

	payment, err := s.verifier.VerifyTransaction(ctx, txHash, res.Amount)
	if err != nil {
		s.releaseClaim(ctx, txHash)
		return nil, err
	}
	state = StatePaymentVerified

	order, err = s.shopify.CreateOrder(ctx, &client.CreateOrderInput{
		LineItems:       res.LineItems,
		Customer:        res.Customer,
		ShippingAddress: res.ShippingAddress,
		TransactionHash: txHash,
	})
	if err != nil {
		// No order exists for this hash yet, so the claim can be released
		// and the buyer may retry with the same transaction.
		s.releaseClaim(ctx, txHash)
		return nil, fmt.Errorf("%w: %v", ErrOrderCreation, err)
	}
	state = StateOrderCreated

	s.persistRecords(ctx, txHash, res, order, payment)
	state = StateRecordsPersisted

	if derr := s.reservationRepo.Delete(ctx, sessionID); derr != nil {
		// The order exists; surfacing this would wrongly suggest the
		// finalize failed and provoke a retry.
		log.Printf("delete reservation %s after finalize: %v", sessionID, derr)
	}
	state = StateReservationCleared

	return order, nil
}

// persistRecords writes the idempotency record, the order→tx mapping, and
// the audit row. Failures here are logged, not surfaced: the order already
// exists and the pending claim keeps blocking replays of the hash.
func (s *checkoutServiceImpl) persistRecords(ctx context.Context, txHash string, res *model.Reservation, order *model.OrderSummary, payment *model.VerifiedPayment) {
	now := time.Now().UTC()

	rec := &model.TxRecord{
		OrderID:       order.ID,
		OrderName:     order.Name,
		Amount:        order.Total.Amount,
		Timestamp:     now,
		CustomerEmail: res.Customer.Email,
	}
	if err := s.txRecordRepo.Complete(ctx, txHash, rec); err != nil {
		log.Printf("complete tx record %s: %v", txHash, err)
	}

	if err := s.txRecordRepo.SaveOrderMapping(ctx, order.ID, &model.OrderTxMapping{
		TransactionHash: txHash,
		Timestamp:       now,
	}); err != nil {
		log.Printf("save order mapping %s: %v", order.ID, err)
	}

	if err := s.orderAuditRepo.Record(ctx, &model.FinalizedOrder{
		OrderID:         order.ID,
		OrderName:       order.Name,
		TransactionHash: txHash,
		Amount:          order.Total.Amount,
		Currency:        order.Total.CurrencyCode,
		CustomerEmail:   res.Customer.Email,
	}); err != nil {
		log.Printf("record finalized order %s: %v", order.ID, err)
	}

	log.Printf("finalized order %s (%s) for tx %s, %s USDC from %s",
		order.Name, order.ID, txHash, payment.Amount.String(), payment.Sender)
}

func (s *checkoutServiceImpl) releaseClaim(ctx context.Context, txHash string) {
	if err := s.txRecordRepo.Release(ctx, txHash); err != nil {
		// The claim's TTL will clear it eventually; until then the hash
		// stays blocked.
		log.Printf("release tx claim %s: %v", txHash, err)
	}
}

func (s *checkoutServiceImpl) RecentOrders(ctx context.Context, limit int) ([]*model.FinalizedOrder, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.orderAuditRepo.Recent(ctx, limit)
}
