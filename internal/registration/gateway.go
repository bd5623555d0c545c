package registration

import (
	"context"
	"fmt"
	"sync/atomic"
)

// Order is a payment order opened with the gateway for a registration.
type Order struct {
	ID       string
	Amount   int
	Currency string
}

// Gateway abstracts the payment provider. The production binding is
// configured at wiring time; tests and local runs use the stub.
type Gateway interface {
	// CreateOrder opens a gateway order for the given amount in the
	// smallest currency unit.
	CreateOrder(ctx context.Context, registrationID string, amount int) (*Order, error)
}

// StubGateway issues deterministic order ids without talking to any
// provider. Callbacks against stub orders go through the normal confirm
// path.
type StubGateway struct {
	seq atomic.Int64
}

func NewStubGateway() *StubGateway { return &StubGateway{} }

func (g *StubGateway) CreateOrder(_ context.Context, registrationID string, amount int) (*Order, error) {
	n := g.seq.Add(1)
	return &Order{
		ID:       fmt.Sprintf("order_stub_%s_%d", registrationID, n),
		Amount:   amount,
		Currency: "INR",
	}, nil
}
