package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Role string

const (
	RoleStudent               Role = "Student"
	RoleEventCoordinator      Role = "Event Coordinator"
	RoleDepartmentCoordinator Role = "Department Coordinator"
	RoleInstituteCoordinator  Role = "Institute Coordinator"
	RoleAdmin                 Role = "Admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleEventCoordinator, RoleDepartmentCoordinator, RoleInstituteCoordinator, RoleAdmin:
		return true
	}
	return false
}

func (r Role) IsCoordinator() bool {
	return r == RoleEventCoordinator || r == RoleDepartmentCoordinator || r == RoleInstituteCoordinator
}

type User struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	FullName     string              `bson:"full_name" json:"fullName"`
	Email        string              `bson:"email" json:"email"`
	Phone        string              `bson:"phone" json:"phone"`
	Password     string              `bson:"password" json:"-"` // bcrypt hash
	Role         Role                `bson:"role" json:"role"`
	IsVerified   bool                `bson:"is_verified" json:"isVerified"`
	IsActive     bool                `bson:"is_active" json:"isActive"`
	ProfilePhoto string              `bson:"profile_photo,omitempty" json:"profilePhoto,omitempty"`
	InstituteID  *primitive.ObjectID `bson:"institute_id,omitempty" json:"instituteId,omitempty"`
	DepartmentID *primitive.ObjectID `bson:"department_id,omitempty" json:"departmentId,omitempty"`
	EventID      *primitive.ObjectID `bson:"event_id,omitempty" json:"eventId,omitempty"`
	CreatedAt    time.Time           `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time           `bson:"updated_at" json:"updatedAt"`
}

// UserUpdate holds profile edits; empty strings are ignored.
type UserUpdate struct {
	FullName     string
	Phone        string
	ProfilePhoto string
}

func (u UserUpdate) Empty() bool {
	return u.FullName == "" && u.Phone == "" && u.ProfilePhoto == ""
}

// UserFilter narrows admin user listings.
type UserFilter struct {
	Roles []Role
	Query string
}
