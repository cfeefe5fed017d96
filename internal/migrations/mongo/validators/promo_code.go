package validators

import "go.mongodb.org/mongo-driver/bson"

var PromoCodeValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"discount_type",
			"value",
			"expires_at",
			"max_uses",
			"current_uses",
		},
		"additionalProperties": true,

		"properties": bson.M{
			// The promo code string itself.
			"_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"discount_type": bson.M{
				"bsonType": "string",
				"enum":     []string{"percentage", "flat"},
			},

			"value": bson.M{
				"bsonType": "long",
				"minimum":  0,
			},

			"min_subtotal_cents": bson.M{
				"bsonType": "long",
				"minimum":  0,
			},

			"expires_at": bson.M{
				"bsonType": "date",
			},

			"max_uses": bson.M{
				"bsonType": "long",
				"minimum":  1,
			},

			"current_uses": bson.M{
				"bsonType": "long",
				"minimum":  0,
			},
		},
	},
}
