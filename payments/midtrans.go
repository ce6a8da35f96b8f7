package payments

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"

	services "github.com/phillip/frolic-api/services"
)

// MidtransGateway opens a Snap transaction per checkout. Snap payments are
// completed on Midtrans' hosted page, so charges come back unsettled and the
// registration is confirmed afterwards, once Verify reports the order settled.
type MidtransGateway struct {
	client snap.Client
	core   coreapi.Client
	now    func() time.Time
	status func(orderID string) (*coreapi.TransactionStatusResponse, *midtrans.Error)
}

func NewMidtransGateway(serverKey string, production bool) *MidtransGateway {
	env := midtrans.Sandbox
	if production {
		env = midtrans.Production
	}
	g := &MidtransGateway{now: time.Now}
	g.client.New(serverKey, env)
	g.core.New(serverKey, env)
	g.status = g.core.CheckTransaction
	return g
}

func (g *MidtransGateway) Charge(ctx context.Context, req services.ChargeRequest) (*services.ChargeResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, services.PaymentError("payment cancelled", err)
	}
	if req.Amount <= 0 {
		return nil, services.PaymentError(fmt.Sprintf("invalid amount %.2f", req.Amount), nil)
	}

	// Midtrans rejects reused order ids, so each checkout attempt gets its own.
	orderID := fmt.Sprintf("%s-%d", req.OrderID, g.now().Unix())
	gross := int64(math.Round(req.Amount))

	first, last := splitName(req.Customer.Name)
	sreq := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  orderID,
			GrossAmt: gross,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: first,
			LName: last,
			Email: req.Customer.Email,
			Phone: req.Customer.Phone,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:       req.OrderID,
				Price:    gross,
				Qty:      1,
				Name:     truncate(firstNonEmpty(req.Description, "Event registration"), 50),
				Category: "EVENT",
			},
		},
	}

	resp, merr := g.client.CreateTransaction(sreq)
	if merr != nil {
		return nil, services.PaymentError("midtrans: "+merr.Message, nil)
	}
	return &services.ChargeResult{
		TransactionID: orderID,
		RedirectURL:   resp.RedirectURL,
		Settled:       false,
	}, nil
}

// Verify looks the order up through the Core API. Only settlement, or a card
// capture that passed fraud screening, counts as paid.
func (g *MidtransGateway) Verify(ctx context.Context, orderID string) (*services.ChargeResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, services.PaymentError("payment check cancelled", err)
	}
	resp, merr := g.status(orderID)
	if merr != nil {
		if merr.StatusCode == 404 {
			return nil, services.PaymentError("no payment found for this order", nil)
		}
		return nil, services.PaymentError("midtrans: "+merr.Message, nil)
	}
	if resp.OrderID != "" && resp.OrderID != orderID {
		return nil, services.PaymentError("midtrans returned a different order", nil)
	}
	return &services.ChargeResult{
		TransactionID: firstNonEmpty(resp.TransactionID, orderID),
		Settled:       settled(resp.TransactionStatus, resp.FraudStatus),
	}, nil
}

func settled(status, fraud string) bool {
	switch strings.ToLower(status) {
	case "settlement":
		return true
	case "capture":
		return fraud == "" || strings.EqualFold(fraud, "accept")
	default:
		return false
	}
}

func splitName(full string) (string, string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}

// truncate keeps at most n runes of s.
func truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func firstNonEmpty(s, def string) string {
	if s != "" {
		return s
	}
	return def
}
