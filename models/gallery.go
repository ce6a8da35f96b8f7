package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Gallery struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Title       string              `bson:"title" json:"title"`
	Description string              `bson:"description,omitempty" json:"description,omitempty"`
	EventID     *primitive.ObjectID `bson:"event_id,omitempty" json:"eventId,omitempty"`
	Images      []string            `bson:"images" json:"images"`
	CreatedBy   primitive.ObjectID  `bson:"created_by,omitempty" json:"createdBy,omitempty"`
	CreatedAt   time.Time           `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time           `bson:"updated_at" json:"updatedAt"`
}

type Institute struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Code        string             `bson:"code,omitempty" json:"code,omitempty"`
	Address     string             `bson:"address,omitempty" json:"address,omitempty"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Logo        string             `bson:"logo,omitempty" json:"logo,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updatedAt"`
}

type Department struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	InstituteID primitive.ObjectID `bson:"institute_id" json:"instituteId"`
	Name        string             `bson:"name" json:"name"`
	Code        string             `bson:"code,omitempty" json:"code,omitempty"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updatedAt"`
}

// DashboardStats are the admin console headline numbers.
type DashboardStats struct {
	TotalEvents       int64 `json:"totalEvents"`
	TotalUsers        int64 `json:"totalUsers"`
	TotalParticipants int64 `json:"totalParticipants"`
	TotalInstitutes   int64 `json:"totalInstitutes"`
	TotalDepartments  int64 `json:"totalDepartments"`
}
