package validators

import "go.mongodb.org/mongo-driver/bson"

var ProviderValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"user_id",
			"status",
			"base_lat",
			"base_lng",
			"service_radius_miles",
			"service_type_ids",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},

			"user_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"status": bson.M{
				"bsonType": "string",
				"enum":     []string{"active", "pending", "suspended"},
			},

			"base_lat": bson.M{
				"bsonType": "double",
				"minimum":  -90,
				"maximum":  90,
			},

			"base_lng": bson.M{
				"bsonType": "double",
				"minimum":  -180,
				"maximum":  180,
			},

			"service_radius_miles": bson.M{
				"bsonType":         "double",
				"exclusiveMinimum": true,
				"minimum":          0,
			},

			"service_type_ids": bson.M{
				"bsonType": "array",
				"minItems": 1,
				"items": bson.M{
					"bsonType": "string",
				},
			},

			"rating": bson.M{
				"bsonType": "double",
				"minimum":  0,
				"maximum":  5,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
