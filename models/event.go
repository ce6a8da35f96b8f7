package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Prizes struct {
	First  string `bson:"first,omitempty" json:"first"`
	Second string `bson:"second,omitempty" json:"second"`
	Third  string `bson:"third,omitempty" json:"third"`
}

type Event struct {
	ID                  primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name                string              `bson:"name" json:"name"`
	Description         string              `bson:"description,omitempty" json:"description,omitempty"`
	Location            string              `bson:"location,omitempty" json:"location,omitempty"`
	Fees                float64             `bson:"fees" json:"fees"`
	MinParticipants     int                 `bson:"min_participants" json:"minParticipants"`
	MaxParticipants     int                 `bson:"max_participants" json:"maxParticipants"`
	MaxGroups           int                 `bson:"max_groups" json:"maxGroups"`
	Prizes              Prizes              `bson:"prizes" json:"prizes"`
	EventDate           time.Time           `bson:"event_date" json:"eventDate"`
	RegistrationEndDate time.Time           `bson:"registration_end_date" json:"registrationEndDate"`
	IsPublished         bool                `bson:"is_published" json:"isPublished"`
	Images              []string            `bson:"images" json:"images"`
	DepartmentID        *primitive.ObjectID `bson:"department_id,omitempty" json:"departmentId,omitempty"`
	CreatedBy           primitive.ObjectID  `bson:"created_by,omitempty" json:"createdBy,omitempty"`
	IsDeleted           bool                `bson:"is_deleted" json:"isDeleted"`
	DeletedAt           *time.Time          `bson:"deleted_at,omitempty" json:"deletedAt,omitempty"`
	CreatedAt           time.Time           `bson:"created_at" json:"createdAt"`
	UpdatedAt           time.Time           `bson:"updated_at" json:"updatedAt"`

	// Enriched on detail reads; nil means the count was not looked up.
	RegisteredCount *int64 `bson:"-" json:"registeredCount,omitempty"`
}

// RegistrationOpen reports whether the registration window is still open at now.
func (e *Event) RegistrationOpen(now time.Time) bool {
	return !now.After(e.RegistrationEndDate)
}

// Visible reports whether students may see and register for the event.
func (e *Event) Visible() bool {
	return e.IsPublished && !e.IsDeleted
}

// EventUpdate carries the optional fields of an admin edit. Nil fields are left untouched.
type EventUpdate struct {
	Name                *string
	Description         *string
	Location            *string
	Fees                *float64
	MinParticipants     *int
	MaxParticipants     *int
	MaxGroups           *int
	Prizes              *Prizes
	EventDate           *time.Time
	RegistrationEndDate *time.Time
	IsPublished         *bool
	Images              []string
	DepartmentID        *primitive.ObjectID
}

func (u EventUpdate) Empty() bool {
	return u.Name == nil && u.Description == nil && u.Location == nil && u.Fees == nil &&
		u.MinParticipants == nil && u.MaxParticipants == nil && u.MaxGroups == nil &&
		u.Prizes == nil && u.EventDate == nil && u.RegistrationEndDate == nil &&
		u.IsPublished == nil && u.Images == nil && u.DepartmentID == nil
}

// Apply copies the set fields onto e.
func (u EventUpdate) Apply(e *Event) {
	if u.Name != nil {
		e.Name = *u.Name
	}
	if u.Description != nil {
		e.Description = *u.Description
	}
	if u.Location != nil {
		e.Location = *u.Location
	}
	if u.Fees != nil {
		e.Fees = *u.Fees
	}
	if u.MinParticipants != nil {
		e.MinParticipants = *u.MinParticipants
	}
	if u.MaxParticipants != nil {
		e.MaxParticipants = *u.MaxParticipants
	}
	if u.MaxGroups != nil {
		e.MaxGroups = *u.MaxGroups
	}
	if u.Prizes != nil {
		e.Prizes = *u.Prizes
	}
	if u.EventDate != nil {
		e.EventDate = *u.EventDate
	}
	if u.RegistrationEndDate != nil {
		e.RegistrationEndDate = *u.RegistrationEndDate
	}
	if u.IsPublished != nil {
		e.IsPublished = *u.IsPublished
	}
	if u.Images != nil {
		e.Images = u.Images
	}
	if u.DepartmentID != nil {
		e.DepartmentID = u.DepartmentID
	}
}

// EventFilter narrows event listings.
type EventFilter struct {
	Query          string
	PublishedOnly  bool
	IncludeDeleted bool
}
