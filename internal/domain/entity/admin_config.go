package entity

import "time"

// AdminEmail is an allow-list entry: federated logins with this e-mail are
// created with the admin role.
type AdminEmail struct {
	Email     string    `json:"email" firestore:"email" bson:"_id"`
	AddedBy   string    `json:"addedBy,omitempty" firestore:"addedBy" bson:"addedBy,omitempty"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt" bson:"createdAt"`
}
