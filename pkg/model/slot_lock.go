package model

import "time"

// SlotLock is an advisory lock serializing acceptance attempts on one
// provider slot. The unique _id makes a duplicate insert fail, which is
// the contention signal.
type SlotLock struct {
	ID        string    `bson:"_id" json:"id"`
	OwnerID   string    `bson:"owner_id" json:"owner_id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
