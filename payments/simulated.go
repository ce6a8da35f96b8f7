package payments

import (
	"context"
	"fmt"

	"github.com/segmentio/ksuid"

	services "github.com/phillip/frolic-api/services"
)

// Methods the simulated gateway accepts. An empty method means card.
var simulatedMethods = map[string]bool{
	"card":       true,
	"upi":        true,
	"netbanking": true,
	"wallet":     true,
}

// SimulatedGateway settles every valid charge immediately. It stands in for a
// real processor in development and demos.
type SimulatedGateway struct {
	newID func() string
}

func NewSimulatedGateway() *SimulatedGateway {
	return &SimulatedGateway{newID: func() string { return ksuid.New().String() }}
}

func (g *SimulatedGateway) Charge(ctx context.Context, req services.ChargeRequest) (*services.ChargeResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, services.PaymentError("payment cancelled", err)
	}
	if req.Amount <= 0 {
		return nil, services.PaymentError(fmt.Sprintf("invalid amount %.2f", req.Amount), nil)
	}
	method := req.Method
	if method == "" {
		method = "card"
	}
	if !simulatedMethods[method] {
		return nil, services.PaymentError("unsupported payment method "+method, nil)
	}
	return &services.ChargeResult{
		TransactionID: "TXN" + g.newID(),
		Settled:       true,
	}, nil
}
