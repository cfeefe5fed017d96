package model

import "time"

// Provider account states. Only active providers participate in
// matching.
const (
	ProviderActive    = "active"
	ProviderPending   = "pending"
	ProviderSuspended = "suspended"
)

type Provider struct {
	ID             string    `json:"id,omitempty" bson:"_id,omitempty"`
	UserID         string    `json:"user_id" bson:"user_id" validate:"required"`
	Status         string    `json:"status" bson:"status" validate:"required,oneof=active pending suspended"`
	BaseLat        float64   `json:"base_lat" bson:"base_lat" validate:"min=-90,max=90"`
	BaseLng        float64   `json:"base_lng" bson:"base_lng" validate:"min=-180,max=180"`
	ServiceRadius  float64   `json:"service_radius_miles" bson:"service_radius_miles" validate:"required,gt=0"`
	ServiceTypeIDs []string  `json:"service_type_ids" bson:"service_type_ids" validate:"required,min=1"`
	Rating         float64   `json:"rating" bson:"rating" validate:"min=0,max=5"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
}

// SupportsServiceType reports whether the provider is capable of
// performing the given service type.
func (p *Provider) SupportsServiceType(serviceTypeID string) bool {
	for _, id := range p.ServiceTypeIDs {
		if id == serviceTypeID {
			return true
		}
	}
	return false
}
