package models

// User is the profile record for a signed-in identity. The document id is
// the identity provider's opaque user id, not a store-generated one.
type User struct {
	DisplayName    string `bson:"display_name" json:"display_name"`
	Email          string `bson:"email" json:"email"`
	ProfilePicture string `bson:"profile_picture" json:"profile_picture"`
}

// UserRef pairs a User with its identity id.
type UserRef struct {
	ID   string `json:"id"`
	User User   `json:"user"`
}
