package models

import "time"

// ProfileView is the flattened user+profile document served by the profile
// endpoint. A profile row is created together with its user and shares the
// user's lifetime.
type ProfileView struct {
	ID              string     `json:"id"`
	Username        string     `json:"username"`
	Email           string     `json:"email"`
	FirstName       string     `json:"first_name"`
	LastName        string     `json:"last_name"`
	DateJoined      time.Time  `json:"date_joined"`
	LastLogin       *time.Time `json:"last_login"`
	IsEmailVerified bool       `json:"is_email_verified"`
	PhoneNumber     string     `json:"phone_number"`
	Bio             string     `json:"bio"`
	Location        string     `json:"location"`
	BirthDate       *string    `json:"birth_date"`
}
