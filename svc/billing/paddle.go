package billing

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	paddle "github.com/PaddleHQ/paddle-go-sdk/v4"
	"github.com/google/uuid"
)

// Verifier checks webhook signatures.
type Verifier interface {
	Verify(req *http.Request) (bool, error)
}

// TransactionCreator creates Paddle transactions.
type TransactionCreator interface {
	CreateTransaction(ctx context.Context, req *paddle.CreateTransactionRequest) (*paddle.Transaction, error)
}

// Paddle talks to the Paddle Billing API.
type Paddle struct {
	transactions TransactionCreator
	verifier     Verifier
}

// PaddleOption configures Paddle.
type PaddleOption func(*Paddle)

// WithVerifier replaces the signature verifier.
func WithVerifier(v Verifier) PaddleOption {
	return func(p *Paddle) {
		p.verifier = v
	}
}

// WithTransactions replaces the transactions client.
func WithTransactions(tc TransactionCreator) PaddleOption {
	return func(p *Paddle) {
		p.transactions = tc
	}
}

// NewPaddle creates a Paddle client for the configured environment.
func NewPaddle(cfg Config, opts ...PaddleOption) (*Paddle, error) {
	if cfg.APIKey == "" {
		return nil, ErrAPIKeyRequired
	}
	if cfg.WebhookSecret == "" {
		return nil, ErrWebhookSecretRequired
	}

	var (
		client *paddle.SDK
		err    error
	)
	switch strings.ToLower(cfg.Environment) {
	case "sandbox":
		client, err = paddle.NewSandbox(cfg.APIKey)
	case "production", "":
		client, err = paddle.New(cfg.APIKey)
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidEnvironment, cfg.Environment)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create paddle client: %w", err)
	}

	p := &Paddle{
		transactions: client.TransactionsClient,
		verifier:     paddle.NewWebhookVerifier(cfg.WebhookSecret),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// CheckoutLink is a hosted checkout for one transaction.
type CheckoutLink struct {
	URL           string `json:"url"`
	TransactionID string `json:"transaction_id,omitempty"`
}

// Checkout creates a transaction for priceID tagged with the user id.
func (p *Paddle) Checkout(ctx context.Context, userID uuid.UUID, email, priceID, successURL string) (CheckoutLink, error) {
	item := paddle.NewCreateTransactionItemsTransactionItemFromCatalog(&paddle.TransactionItemFromCatalog{
		PriceID:  priceID,
		Quantity: 1,
	})

	req := &paddle.CreateTransactionRequest{
		Items: []paddle.CreateTransactionItems{*item},
		CustomData: paddle.CustomData{
			"user_id": userID.String(),
		},
	}
	if email != "" {
		req.CustomData["email"] = email
	}
	if successURL != "" {
		req.Checkout = &paddle.TransactionCheckout{URL: paddle.PtrTo(successURL)}
	}

	tx, err := p.transactions.CreateTransaction(ctx, req)
	if err != nil {
		return CheckoutLink{}, fmt.Errorf("failed to create paddle transaction: %w", err)
	}
	if tx.Checkout == nil || tx.Checkout.URL == nil || *tx.Checkout.URL == "" {
		return CheckoutLink{}, ErrNoCheckoutURL
	}
	return CheckoutLink{URL: *tx.Checkout.URL, TransactionID: tx.ID}, nil
}

// Verify checks the Paddle-Signature header of req.
func (p *Paddle) Verify(req *http.Request) error {
	ok, err := p.verifier.Verify(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
	if !ok {
		return ErrInvalidSignature
	}
	return nil
}
