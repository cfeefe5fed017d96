package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"customer_id",
			"property_id",
			"service_type_id",
			"candidates",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},

			"customer_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"property_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"service_type_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"add_on_ids": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "string",
				},
				"maxItems": 10,
			},

			"candidates": bson.M{
				"bsonType": "array",
				"minItems": 1,
				"maxItems": 5,
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"date", "shift"},
					"properties": bson.M{
						"date": bson.M{
							"bsonType": "string",
							"pattern":  `^\d{4}-\d{2}-\d{2}$`,
						},
						"shift": bson.M{
							"bsonType": "string",
							"enum":     []string{"morning", "afternoon", "evening"},
						},
					},
				},
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"placed",
					"awaiting_match",
					"matched",
					"on_the_way",
					"arrived",
					"in_progress",
					"completed_pending_approval",
					"approved",
					"cancelled",
					"disputed",
				},
			},

			"provider_id": bson.M{
				"bsonType": "string",
			},

			"pricing": bson.M{
				"bsonType": "object",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
