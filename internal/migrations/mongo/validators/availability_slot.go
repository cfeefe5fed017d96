package validators

import "go.mongodb.org/mongo-driver/bson"

var AvailabilitySlotValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"provider_id",
			"date",
			"shift",
			"status",
		},
		"additionalProperties": true,

		"properties": bson.M{
			// Composite "provider|date|shift" key.
			"_id": bson.M{
				"bsonType": "string",
			},

			"provider_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"date": bson.M{
				"bsonType": "string",
				"pattern":  `^\d{4}-\d{2}-\d{2}$`,
			},

			"shift": bson.M{
				"bsonType": "string",
				"enum":     []string{"morning", "afternoon", "evening"},
			},

			"status": bson.M{
				"bsonType": "string",
				"enum":     []string{"available", "blocked", "booked"},
			},

			"booking_id": bson.M{
				"bsonType": "string",
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
