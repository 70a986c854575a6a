package formio

import "go.mongodb.org/mongo-driver/bson/primitive"

// IsObjectID reports whether s is a 24 character hex ObjectID, as opposed
// to a path alias.
func IsObjectID(s string) bool {
	return primitive.IsValidObjectID(s)
}
