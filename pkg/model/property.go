package model

import "time"

type Address struct {
	Street string  `json:"street" bson:"street" validate:"required"`
	City   string  `json:"city" bson:"city" validate:"required"`
	State  string  `json:"state" bson:"state" validate:"required,len=2"`
	Zip    string  `json:"zip" bson:"zip" validate:"required"`
	Lat    float64 `json:"lat" bson:"lat" validate:"min=-90,max=90"`
	Lng    float64 `json:"lng" bson:"lng" validate:"min=-180,max=180"`
}

type Property struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty"`
	OwnerID   string    `json:"owner_id" bson:"owner_id" validate:"required"`
	Sqft      int       `json:"sqft" bson:"sqft" validate:"required,min=1"`
	Bedrooms  int       `json:"bedrooms" bson:"bedrooms" validate:"min=0"`
	Bathrooms int       `json:"bathrooms" bson:"bathrooms" validate:"min=0"`
	HasPets   bool      `json:"has_pets" bson:"has_pets"`
	Address   Address   `json:"address" bson:"address"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
