package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Field names the queries rely on. Everything else in a listing is free-form.
const (
	FieldID           = "_id"
	FieldDonator      = "donator"
	FieldDonatorEmail = "donator.email"
	FieldQuantity     = "foodQuantity"
	FieldExpiry       = "expiredDate"
	FieldImage        = "foodImage"
	FieldName         = "foodName"
	FieldStatus       = "status"
	FieldRequestedBy  = "requestedBy"
	FieldRequestedAt  = "requestedAt"
)

// StatusRequested is stamped on a listing when it moves to the claims collection.
const StatusRequested = "requested"

// Food is a listing document. It is stored exactly as the client sent it,
// plus the generated _id.
type Food map[string]interface{}

// ID returns the document's ObjectID, if it has one.
func (f Food) ID() (primitive.ObjectID, bool) {
	oid, ok := f[FieldID].(primitive.ObjectID)
	return oid, ok
}

func (f Food) DonatorEmail() string {
	var email interface{}
	switch d := f[FieldDonator].(type) {
	case Food:
		email = d["email"]
	case map[string]interface{}:
		email = d["email"]
	case primitive.M:
		email = d["email"]
	case primitive.D:
		email = d.Map()["email"]
	}
	s, _ := email.(string)
	return s
}

func (f Food) Name() string {
	s, _ := f[FieldName].(string)
	return s
}

func (f Food) Image() string {
	s, _ := f[FieldImage].(string)
	return s
}

// EnsureID keeps a client supplied ObjectID, given either as an ObjectID or
// its hex form, and assigns a new one otherwise. Listings are addressed by
// ObjectID only.
func (f Food) EnsureID() primitive.ObjectID {
	switch v := f[FieldID].(type) {
	case primitive.ObjectID:
		if !v.IsZero() {
			return v
		}
	case string:
		if id, err := primitive.ObjectIDFromHex(v); err == nil {
			f[FieldID] = id
			return id
		}
	}
	id := primitive.NewObjectID()
	f[FieldID] = id
	return id
}

// FoodRequest is the body of a claim.
type FoodRequest struct {
	FoodID    string `json:"foodId" binding:"required"`
	UserEmail string `json:"userEmail" binding:"required"`
}

// InsertResult mirrors the acknowledgment returned for inserts.
type InsertResult struct {
	Acknowledged bool               `json:"acknowledged"`
	InsertedID   primitive.ObjectID `json:"insertedId"`
}

// DeleteResult mirrors the acknowledgment returned for deletes.
type DeleteResult struct {
	Acknowledged bool  `json:"acknowledged"`
	DeletedCount int64 `json:"deletedCount"`
}
