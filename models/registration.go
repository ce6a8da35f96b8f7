package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RegistrationStatus string

const (
	RegistrationPending   RegistrationStatus = "PENDING"
	RegistrationConfirmed RegistrationStatus = "CONFIRMED"
	RegistrationCancelled RegistrationStatus = "CANCELLED"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
)

// Registration is one student's seat at one event. GatewayOrderID is the order
// opened at the payment gateway by the latest unsettled checkout.
type Registration struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID         primitive.ObjectID `bson:"user_id" json:"userId"`
	EventID        primitive.ObjectID `bson:"event_id" json:"eventId"`
	Status         RegistrationStatus `bson:"status" json:"status"`
	PaymentStatus  PaymentStatus      `bson:"payment_status" json:"paymentStatus"`
	TransactionID  string             `bson:"transaction_id,omitempty" json:"transactionId,omitempty"`
	PaymentMethod  string             `bson:"payment_method,omitempty" json:"paymentMethod,omitempty"`
	GatewayOrderID string             `bson:"gateway_order_id,omitempty" json:"gatewayOrderId,omitempty"`
	Amount         float64            `bson:"amount" json:"amount"`
	PaidAt         *time.Time         `bson:"paid_at,omitempty" json:"paidAt,omitempty"`
	CreatedAt      time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updatedAt"`
}

func (r *Registration) Paid() bool {
	return r.PaymentStatus == PaymentPaid
}

// EventSnapshot is the slice of an event shown next to a registration.
type EventSnapshot struct {
	ID                  primitive.ObjectID `json:"id"`
	Name                string             `json:"name"`
	Description         string             `json:"description,omitempty"`
	Location            string             `json:"location,omitempty"`
	Fees                float64            `json:"fees"`
	EventDate           time.Time          `json:"eventDate"`
	RegistrationEndDate time.Time          `json:"registrationEndDate"`
	Images              []string           `json:"images"`
	IsDeleted           bool               `json:"isDeleted"`
}

func SnapshotOf(e *Event) EventSnapshot {
	images := e.Images
	if images == nil {
		images = []string{}
	}
	return EventSnapshot{
		ID:                  e.ID,
		Name:                e.Name,
		Description:         e.Description,
		Location:            e.Location,
		Fees:                e.Fees,
		EventDate:           e.EventDate,
		RegistrationEndDate: e.RegistrationEndDate,
		Images:              images,
		IsDeleted:           e.IsDeleted,
	}
}

// DeletedSnapshot stands in for an event document that no longer exists.
func DeletedSnapshot(id primitive.ObjectID) EventSnapshot {
	return EventSnapshot{ID: id, Name: "Deleted event", Images: []string{}, IsDeleted: true}
}

type RegistrationView struct {
	Registration
	Event EventSnapshot `json:"event"`
}

type EventRegistrationView struct {
	Registration
	User *User `json:"user,omitempty"`
}

// RegistrationState answers "am I registered for this event".
type RegistrationState struct {
	Registered     bool                `json:"registered"`
	RegistrationID *primitive.ObjectID `json:"registrationId,omitempty"`
	Status         RegistrationStatus  `json:"status,omitempty"`
	PaymentStatus  PaymentStatus       `json:"paymentStatus,omitempty"`
	TransactionID  string              `json:"transactionId,omitempty"`
}
