package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/big"
	"usdc-storefront/internal/client"
	"usdc-storefront/internal/config"
	"usdc-storefront/internal/model"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
)

const (
	// USDC carries six decimal places.
	tokenDecimals = 6
	// Absolute tolerance in smallest units, absorbing float conversion
	// error on the client side. Not user-facing rounding.
	amountTolerance = 1
)

// transfer(address,uint256)
var transferSelector = []byte{0xa9, 0x05, 0x9c, 0xbb}

// VerifierService checks that an on-chain transaction is a successful
// ERC-20 transfer of the expected amount to the configured recipient on
// the configured token contract.
type VerifierService interface {
	VerifyTransaction(ctx context.Context, txHash string, expectedAmount string) (*model.VerifiedPayment, error)
}

type verifierServiceImpl struct {
	chain            client.ChainClient
	tokenContract    common.Address
	paymentRecipient common.Address
	signer           types.Signer
}

func NewVerifierService(chain client.ChainClient, chainCfg *config.Chain) VerifierService {
	return &verifierServiceImpl{
		chain:            chain,
		tokenContract:    common.HexToAddress(chainCfg.TokenContract),
		paymentRecipient: common.HexToAddress(chainCfg.PaymentRecipient),
		signer:           types.LatestSignerForChainID(big.NewInt(chainCfg.ID)),
	}
}

// VerifyTransaction applies the checks in a fixed order so malformed or
// wrong-purpose transactions fail with a specific diagnosis before any
// financial comparison: existence, target contract, receipt status,
// transfer selector, recipient, amount.
func (v *verifierServiceImpl) VerifyTransaction(ctx context.Context, txHash string, expectedAmount string) (*model.VerifiedPayment, error) {
	hash := common.HexToHash(txHash)

	tx, _, err := v.chain.TransactionByHash(ctx, hash)
	if errors.Is(err, ethereum.NotFound) {
		return nil, ErrTxNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch transaction: %w", err)
	}

	if tx.To() == nil || *tx.To() != v.tokenContract {
		return nil, ErrWrongContract
	}

	receipt, err := v.chain.TransactionReceipt(ctx, hash)
	if errors.Is(err, ethereum.NotFound) {
		// No receipt yet means not confirmed.
		return nil, ErrTxFailed
	}
	if err != nil {
		return nil, fmt.Errorf("fetch receipt: %w", err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, ErrTxFailed
	}

	recipient, amount, err := decodeTransfer(tx.Data())
	if err != nil {
		return nil, err
	}

	if recipient != v.paymentRecipient {
		return nil, ErrInvalidRecipient
	}

	expected, err := smallestUnits(expectedAmount)
	if err != nil {
		return nil, fmt.Errorf("parse expected amount %q: %w", expectedAmount, err)
	}

	diff := new(big.Int).Sub(amount, expected)
	if diff.CmpAbs(big.NewInt(amountTolerance)) > 0 {
		return nil, ErrAmountMismatch
	}

	payment := &model.VerifiedPayment{
		Recipient: recipient.Hex(),
		Amount:    decimal.NewFromBigInt(amount, -tokenDecimals),
	}
	if receipt.BlockNumber != nil {
		payment.BlockNumber = receipt.BlockNumber.Uint64()
	}
	// Sender recovery is informational; none of the checks above depend on it.
	if from, err := types.Sender(v.signer, tx); err == nil {
		payment.Sender = from.Hex()
	}
	return payment, nil
}

// decodeTransfer splits transfer(address,uint256) calldata: the 4-byte
// selector, a 32-byte left-padded recipient, a 32-byte big-endian amount.
func decodeTransfer(data []byte) (common.Address, *big.Int, error) {
	if len(data) < 68 || !bytes.Equal(data[:4], transferSelector) {
		return common.Address{}, nil, ErrNotTransfer
	}
	recipient := common.BytesToAddress(data[4:36])
	amount := new(big.Int).SetBytes(data[36:68])
	return recipient, amount, nil
}

// smallestUnits converts a human-units decimal string to integer token
// units: floor(amount * 10^6).
func smallestUnits(amount string) (*big.Int, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, err
	}
	return d.Shift(tokenDecimals).BigInt(), nil
}
