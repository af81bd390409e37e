package entity

import (
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleNGO   Role = "ngo"
	RoleAdmin Role = "admin"
)

const (
	ProviderLocal    = "local"
	ProviderGoogle   = "google"
	ProviderFirebase = "firebase"
)

type User struct {
	ID                 string  `json:"id" firestore:"id" bson:"_id"`
	Name               string  `json:"name" firestore:"name" bson:"name"`
	Email              string  `json:"email" firestore:"email" bson:"email"`
	PasswordHash       string  `json:"-" firestore:"passwordHash" bson:"passwordHash,omitempty"`
	Provider           string  `json:"provider,omitempty" firestore:"provider" bson:"provider,omitempty"`
	Role               Role    `json:"role" firestore:"role" bson:"role"`
	IsProfileCompleted bool    `json:"isProfileCompleted" firestore:"isProfileCompleted" bson:"isProfileCompleted"`
	City               string  `json:"city,omitempty" firestore:"city" bson:"city,omitempty"`
	Photo              string  `json:"photo,omitempty" firestore:"photo" bson:"photo,omitempty"`
	RegistrationNumber *string `json:"registrationNumber" firestore:"registrationNumber" bson:"registrationNumber"`
	MobileNumber       *string `json:"mobileNumber" firestore:"mobileNumber" bson:"mobileNumber"`

	CreatedAt time.Time `json:"createdAt" firestore:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt" bson:"updatedAt"`
}

func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

func (u *User) IsNGO() bool {
	return u.Role == RoleNGO
}

// ClearNGOFields nulls the NGO-only fields; called whenever the role is not ngo.
func (u *User) ClearNGOFields() {
	u.RegistrationNumber = nil
	u.MobileNumber = nil
}

// ProfileComplete recomputes the completion flag: name and city for everyone,
// plus registration number, mobile number and photo for NGOs.
func (u *User) ProfileComplete() bool {
	if u.Name == "" || u.City == "" {
		return false
	}
	if u.Role != RoleNGO {
		return true
	}
	return u.RegistrationNumber != nil && *u.RegistrationNumber != "" &&
		u.MobileNumber != nil && *u.MobileNumber != "" &&
		u.Photo != ""
}

type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Role  Role   `json:"role"`
	Photo string `json:"photo,omitempty"`
	City  string `json:"city,omitempty"`
}

func (u *User) Summary() *UserSummary {
	return &UserSummary{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
		Photo: u.Photo,
		City:  u.City,
	}
}

func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.RegistrationNumber != nil {
		v := *u.RegistrationNumber
		c.RegistrationNumber = &v
	}
	if u.MobileNumber != nil {
		v := *u.MobileNumber
		c.MobileNumber = &v
	}
	return &c
}
