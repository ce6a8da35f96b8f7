package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	models "github.com/phillip/frolic-api/models"
	store "github.com/phillip/frolic-api/store"
)

type Customer struct {
	Name  string
	Email string
	Phone string
}

type ChargeRequest struct {
	OrderID     string
	Amount      float64
	Method      string
	Description string
	Customer    Customer
}

// ChargeResult is what a gateway hands back. Settled means the money has
// moved and the registration can be confirmed right away; otherwise the
// client completes payment at RedirectURL and confirms afterwards.
type ChargeResult struct {
	TransactionID string
	RedirectURL   string
	Settled       bool
}

// PaymentGateway charges for a registration. Failures are PaymentErrors.
type PaymentGateway interface {
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
}

// PaymentVerifier is implemented by gateways whose charges settle outside the
// request, such as a hosted payment page. Confirm asks it for the order's real
// state instead of trusting the client.
type PaymentVerifier interface {
	Verify(ctx context.Context, orderID string) (*ChargeResult, error)
}

// Notifier tells the student their seat is confirmed.
type Notifier interface {
	PaymentConfirmed(ctx context.Context, user *models.User, event *models.Event, reg *models.Registration) error
}

type CheckoutResult struct {
	Registration  *models.Registration `json:"registration"`
	TransactionID string               `json:"transactionId"`
	RedirectURL   string               `json:"redirectUrl,omitempty"`
	Settled       bool                 `json:"settled"`
}

const notifyTimeout = 10 * time.Second

type PaymentService struct {
	regs     RegistrationRepository
	events   EventRepository
	users    UserRepository
	gateway  PaymentGateway
	notifier Notifier
	log      *zap.SugaredLogger
	now      func() time.Time
}

func NewPaymentService(regs RegistrationRepository, events EventRepository, users UserRepository, gateway PaymentGateway, notifier Notifier, log *zap.SugaredLogger) *PaymentService {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &PaymentService{
		regs: regs, events: events, users: users,
		gateway: gateway, notifier: notifier,
		log: log, now: time.Now,
	}
}

// Checkout charges the event fee for a pending registration through the
// gateway. Free events and settled charges are confirmed immediately.
func (s *PaymentService) Checkout(ctx context.Context, userID primitive.ObjectID, regID primitive.ObjectID, method string) (*CheckoutResult, error) {
	reg, err := s.ownedRegistration(ctx, userID, models.RoleStudent, regID)
	if err != nil {
		return nil, err
	}
	if reg.Paid() {
		return &CheckoutResult{Registration: reg, TransactionID: reg.TransactionID, Settled: true}, nil
	}
	if reg.Status == models.RegistrationCancelled {
		return nil, ConflictError("registration was cancelled")
	}

	event, err := s.events.FindByID(ctx, reg.EventID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, NotFoundError("event not found")
		}
		return nil, err
	}
	if event.IsDeleted {
		return nil, NotFoundError("event not found")
	}

	if event.Fees <= 0 {
		confirmed, err := s.confirm(ctx, reg.ID, "FREE-"+reg.ID.Hex(), "free")
		if err != nil {
			return nil, err
		}
		return &CheckoutResult{Registration: confirmed, TransactionID: confirmed.TransactionID, Settled: true}, nil
	}

	customer := Customer{}
	if u, err := s.users.FindByID(ctx, userID); err == nil {
		customer = Customer{Name: u.FullName, Email: u.Email, Phone: u.Phone}
	}

	method = strings.ToLower(strings.TrimSpace(method))
	charge, err := s.gateway.Charge(ctx, ChargeRequest{
		OrderID:     reg.ID.Hex(),
		Amount:      event.Fees,
		Method:      method,
		Description: event.Name,
		Customer:    customer,
	})
	if err != nil {
		s.log.Warnw("charge failed", "registration_id", reg.ID.Hex(), "err", err)
		if KindOf(err) == KindPayment {
			return nil, err
		}
		return nil, PaymentError("payment could not be processed", err)
	}

	out := &CheckoutResult{Registration: reg, TransactionID: charge.TransactionID, RedirectURL: charge.RedirectURL, Settled: charge.Settled}
	if charge.Settled {
		confirmed, err := s.confirm(ctx, reg.ID, charge.TransactionID, method)
		if err != nil {
			return nil, err
		}
		out.Registration = confirmed
	} else {
		if err := s.regs.SetGatewayOrder(ctx, reg.ID, charge.TransactionID, s.now()); err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		reg.GatewayOrderID = charge.TransactionID
	}
	return out, nil
}

// Confirm marks a registration as paid with the given transaction id. Only
// the owner or an admin may confirm; confirming twice returns the stored state.
// When the gateway can be asked, the id must name the registration's open
// order and that order must have settled.
func (s *PaymentService) Confirm(ctx context.Context, userID primitive.ObjectID, role models.Role, regID primitive.ObjectID, txID string) (*models.Registration, error) {
	txID = strings.TrimSpace(txID)
	if txID == "" {
		return nil, ValidationError("transactionId is required")
	}
	reg, err := s.ownedRegistration(ctx, userID, role, regID)
	if err != nil {
		return nil, err
	}
	verifier, ok := s.gateway.(PaymentVerifier)
	if !ok || reg.Paid() {
		return s.confirm(ctx, regID, txID, "")
	}

	if reg.GatewayOrderID == "" || txID != reg.GatewayOrderID {
		return nil, PaymentError("transaction does not match this registration", nil)
	}
	res, err := verifier.Verify(ctx, reg.GatewayOrderID)
	if err != nil {
		s.log.Warnw("payment verification failed", "registration_id", reg.ID.Hex(), "order_id", reg.GatewayOrderID, "err", err)
		if KindOf(err) == KindPayment {
			return nil, err
		}
		return nil, PaymentError("payment could not be verified", err)
	}
	if !res.Settled {
		return nil, PaymentError("payment has not settled yet", nil)
	}
	if res.TransactionID != "" {
		txID = res.TransactionID
	}
	return s.confirm(ctx, regID, txID, "")
}

func (s *PaymentService) confirm(ctx context.Context, regID primitive.ObjectID, txID, method string) (*models.Registration, error) {
	reg, changed, err := s.regs.MarkPaid(ctx, regID, txID, method, s.now())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, NotFoundError("registration not found")
		}
		return nil, err
	}
	if changed {
		s.log.Infow("payment confirmed", "registration_id", reg.ID.Hex(), "transaction_id", txID)
		s.notify(ctx, reg)
	}
	return reg, nil
}

// notify never fails the payment; the seat is already confirmed.
func (s *PaymentService) notify(ctx context.Context, reg *models.Registration) {
	if s.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	user, err := s.users.FindByID(ctx, reg.UserID)
	if err != nil {
		s.log.Warnw("confirmation email skipped", "registration_id", reg.ID.Hex(), "err", err)
		return
	}
	event, err := s.events.FindByID(ctx, reg.EventID)
	if err != nil {
		s.log.Warnw("confirmation email skipped", "registration_id", reg.ID.Hex(), "err", err)
		return
	}
	if err := s.notifier.PaymentConfirmed(ctx, user, event, reg); err != nil {
		s.log.Warnw("confirmation email failed", "registration_id", reg.ID.Hex(), "err", err)
	}
}

func (s *PaymentService) ownedRegistration(ctx context.Context, userID primitive.ObjectID, role models.Role, regID primitive.ObjectID) (*models.Registration, error) {
	reg, err := s.regs.FindByID(ctx, regID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, NotFoundError("registration not found")
		}
		return nil, err
	}
	if reg.UserID != userID && role != models.RoleAdmin {
		return nil, NotFoundError("registration not found")
	}
	return reg, nil
}
