package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

const (
	RoleTrainer      Role = "trainer"
	RoleClient       Role = "client"
	RoleNutritionist Role = "nutritionist"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleTrainer, RoleClient, RoleNutritionist:
		return true
	}
	return false
}

// User represents anyone who can log in: a professional (trainer or
// nutritionist) or a client.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username" json:"username"`
	Email        string             `bson:"email" json:"email"`
	RUT          string             `bson:"rut,omitempty" json:"rut,omitempty"` // National ID, unique when set
	FirstName    string             `bson:"firstName,omitempty" json:"firstName,omitempty"`
	LastName     string             `bson:"lastName,omitempty" json:"lastName,omitempty"`
	PasswordHash string             `bson:"passwordHash" json:"-"`
	Role         Role               `bson:"role" json:"role"`
	Bio          string             `bson:"bio,omitempty" json:"bio,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`

	// AssignedProfessionalID links a client to the trainer or nutritionist
	// managing them.
	AssignedProfessionalID *primitive.ObjectID `bson:"assignedProfessionalId,omitempty" json:"assignedProfessionalId,omitempty"`
}

func (u *User) IsTrainer() bool {
	return u.Role == RoleTrainer
}

func (u *User) IsClient() bool {
	return u.Role == RoleClient
}

// IsProfessional is true for roles allowed to manage clients.
func (u *User) IsProfessional() bool {
	return u.Role == RoleTrainer || u.Role == RoleNutritionist
}

// ManagedBy reports whether the user is a client assigned to professionalID.
func (u *User) ManagedBy(professionalID primitive.ObjectID) bool {
	return u.IsClient() && u.AssignedProfessionalID != nil && *u.AssignedProfessionalID == professionalID
}
