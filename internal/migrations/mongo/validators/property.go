package validators

import "go.mongodb.org/mongo-driver/bson"

var PropertyValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"owner_id",
			"sqft",
			"address",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},

			"owner_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"sqft": bson.M{
				"bsonType": "int",
				"minimum":  1,
			},

			"bedrooms": bson.M{
				"bsonType": "int",
				"minimum":  0,
			},

			"bathrooms": bson.M{
				"bsonType": "int",
				"minimum":  0,
			},

			"has_pets": bson.M{
				"bsonType": "bool",
			},

			"address": bson.M{
				"bsonType": "object",
				"required": []string{"street", "city", "state", "zip"},
				"properties": bson.M{
					"street": bson.M{
						"bsonType":  "string",
						"minLength": 1,
					},
					"city": bson.M{
						"bsonType":  "string",
						"minLength": 1,
					},
					"state": bson.M{
						"bsonType":  "string",
						"minLength": 2,
						"maxLength": 2,
					},
					"zip": bson.M{
						"bsonType":  "string",
						"minLength": 1,
					},
					"lat": bson.M{
						"bsonType": "double",
						"minimum":  -90,
						"maximum":  90,
					},
					"lng": bson.M{
						"bsonType": "double",
						"minimum":  -180,
						"maximum":  180,
					},
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
