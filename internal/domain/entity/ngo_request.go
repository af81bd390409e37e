package entity

import (
	"time"
)

type NgoRequestStatus string

const (
	NgoRequestPending  NgoRequestStatus = "pending"
	NgoRequestApproved NgoRequestStatus = "approved"
	NgoRequestRejected NgoRequestStatus = "rejected"
)

type NgoRequest struct {
	ID                 string           `json:"id" firestore:"id" bson:"_id"`
	Name               string           `json:"name" firestore:"name" bson:"name"`
	Email              string           `json:"email" firestore:"email" bson:"email"`
	Logo               string           `json:"logo,omitempty" firestore:"logo" bson:"logo,omitempty"`
	RegistrationNumber string           `json:"registrationNumber" firestore:"registrationNumber" bson:"registrationNumber"`
	City               string           `json:"city" firestore:"city" bson:"city"`
	MobileNumber       string           `json:"mobileNumber" firestore:"mobileNumber" bson:"mobileNumber"`
	Message            string           `json:"message,omitempty" firestore:"message" bson:"message,omitempty"`
	Status             NgoRequestStatus `json:"status" firestore:"status" bson:"status"`
	ReviewedBy         string           `json:"reviewedBy,omitempty" firestore:"reviewedBy" bson:"reviewedBy,omitempty"`
	ReviewedAt         *time.Time       `json:"reviewedAt,omitempty" firestore:"reviewedAt" bson:"reviewedAt,omitempty"`
	CreatedAt          time.Time        `json:"createdAt" firestore:"createdAt" bson:"createdAt"`
}

func (r *NgoRequest) Clone() *NgoRequest {
	if r == nil {
		return nil
	}
	c := *r
	if r.ReviewedAt != nil {
		v := *r.ReviewedAt
		c.ReviewedAt = &v
	}
	return &c
}
