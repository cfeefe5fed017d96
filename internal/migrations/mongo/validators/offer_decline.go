package validators

import "go.mongodb.org/mongo-driver/bson"

var OfferDeclineValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"booking_id",
			"provider_id",
		},
		"additionalProperties": true,

		"properties": bson.M{
			// Composite "booking|provider" key, which makes declines idempotent.
			"_id": bson.M{
				"bsonType": "string",
			},

			"booking_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"provider_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
