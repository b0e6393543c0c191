package mongodb

import (
	"go.mongodb.org/mongo-driver/bson"

	"handicapper/internal/models"
)

func reviewFixture() *models.Review {
	return &models.Review{
		UserID:        "u1",
		HandicapperID: "h1",
		UserName:      "Pat",
		Rating:        4,
		Comment:       "Solid reads on totals",
	}
}

func countResponse(ns string, n int32) bson.D {
	return bson.D{
		{Key: "ok", Value: 1},
		{Key: "cursor", Value: bson.D{
			{Key: "id", Value: int64(0)},
			{Key: "ns", Value: ns},
			{Key: "firstBatch", Value: bson.A{bson.D{{Key: "n", Value: n}}}},
		}},
	}
}

func emptyCountResponse(ns string) bson.D {
	return bson.D{
		{Key: "ok", Value: 1},
		{Key: "cursor", Value: bson.D{
			{Key: "id", Value: int64(0)},
			{Key: "ns", Value: ns},
			{Key: "firstBatch", Value: bson.A{}},
		}},
	}
}

func updateResponse(matched int32, upsertedID interface{}) bson.D {
	resp := bson.D{
		{Key: "ok", Value: 1},
		{Key: "n", Value: matched},
		{Key: "nModified", Value: matched},
	}
	if upsertedID != nil {
		resp = bson.D{
			{Key: "ok", Value: 1},
			{Key: "n", Value: int32(1)},
			{Key: "nModified", Value: int32(0)},
			{Key: "upserted", Value: bson.A{bson.D{{Key: "index", Value: int32(0)}, {Key: "_id", Value: upsertedID}}}},
		}
	}
	return resp
}
