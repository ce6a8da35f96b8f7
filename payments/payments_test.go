package payments

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"

	services "github.com/phillip/frolic-api/services"
)

func TestSimulatedGatewaySettles(t *testing.T) {
	g := NewSimulatedGateway()

	res, err := g.Charge(context.Background(), services.ChargeRequest{OrderID: "r1", Amount: 500, Method: "upi"})
	if err != nil {
		t.Fatalf("Charge: %v", err)
	}
	if !res.Settled || !strings.HasPrefix(res.TransactionID, "TXN") {
		t.Fatalf("result = %+v", res)
	}

	other, _ := g.Charge(context.Background(), services.ChargeRequest{OrderID: "r2", Amount: 500})
	if other.TransactionID == res.TransactionID {
		t.Fatal("transaction ids must be unique")
	}
}

func TestSimulatedGatewayRejects(t *testing.T) {
	g := NewSimulatedGateway()
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	cases := []struct {
		name string
		ctx  context.Context
		req  services.ChargeRequest
	}{
		{"zero amount", context.Background(), services.ChargeRequest{Amount: 0}},
		{"unknown method", context.Background(), services.ChargeRequest{Amount: 10, Method: "cheque"}},
		{"cancelled", cancelled, services.ChargeRequest{Amount: 10}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := g.Charge(tc.ctx, tc.req)
			if services.KindOf(err) != services.KindPayment {
				t.Fatalf("err = %v, want payment error", err)
			}
		})
	}
}

func TestMidtransRejectsBeforeCallingOut(t *testing.T) {
	g := NewMidtransGateway("SB-Mid-server-test", false)
	_, err := g.Charge(context.Background(), services.ChargeRequest{OrderID: "r1", Amount: 0})
	if services.KindOf(err) != services.KindPayment {
		t.Fatalf("err = %v, want payment error", err)
	}
}

func TestNameHelpers(t *testing.T) {
	if f, l := splitName("Asha Devi Rao"); f != "Asha" || l != "Devi Rao" {
		t.Errorf("splitName = %q %q", f, l)
	}
	if f, l := splitName("Mono"); f != "Mono" || l != "" {
		t.Errorf("splitName = %q %q", f, l)
	}
	if got := truncate("abcdef", 3); got != "abc" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("Nāṭya Utsav", 3); got != "Nāṭ" || !utf8.ValidString(got) {
		t.Errorf("truncate multi-byte = %q", got)
	}
	if got := truncate("Ünï", 5); got != "Ünï" {
		t.Errorf("short multi-byte string changed: %q", got)
	}
	if got := firstNonEmpty("", "fallback"); got != "fallback" {
		t.Errorf("firstNonEmpty = %q", got)
	}
}

func TestMidtransVerify(t *testing.T) {
	g := NewMidtransGateway("SB-Mid-server-test", false)
	var _ services.PaymentVerifier = g

	cases := []struct {
		name    string
		resp    *coreapi.TransactionStatusResponse
		merr    *midtrans.Error
		settled bool
		fails   bool
	}{
		{"settlement", &coreapi.TransactionStatusResponse{OrderID: "o1", TransactionID: "mt-1", TransactionStatus: "settlement"}, nil, true, false},
		{"accepted capture", &coreapi.TransactionStatusResponse{OrderID: "o1", TransactionID: "mt-1", TransactionStatus: "capture", FraudStatus: "accept"}, nil, true, false},
		{"challenged capture", &coreapi.TransactionStatusResponse{OrderID: "o1", TransactionStatus: "capture", FraudStatus: "challenge"}, nil, false, false},
		{"pending", &coreapi.TransactionStatusResponse{OrderID: "o1", TransactionStatus: "pending"}, nil, false, false},
		{"expired", &coreapi.TransactionStatusResponse{OrderID: "o1", TransactionStatus: "expire"}, nil, false, false},
		{"other order", &coreapi.TransactionStatusResponse{OrderID: "o2", TransactionStatus: "settlement"}, nil, false, true},
		{"unknown order", nil, &midtrans.Error{StatusCode: 404, Message: "not found"}, false, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g.status = func(orderID string) (*coreapi.TransactionStatusResponse, *midtrans.Error) {
				if orderID != "o1" {
					t.Fatalf("looked up %q", orderID)
				}
				return tc.resp, tc.merr
			}
			res, err := g.Verify(context.Background(), "o1")
			if tc.fails {
				if services.KindOf(err) != services.KindPayment {
					t.Fatalf("err = %v, want payment error", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Verify: %v", err)
			}
			if res.Settled != tc.settled {
				t.Fatalf("settled = %v, want %v", res.Settled, tc.settled)
			}
			if tc.settled && res.TransactionID != "mt-1" {
				t.Fatalf("transaction id = %q", res.TransactionID)
			}
		})
	}
}
