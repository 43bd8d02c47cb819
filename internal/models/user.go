package models

import "time"

// User represents a user account as stored in the users collection.
// PasswordHash and Salt never leave the server; use Public for responses.
type User struct {
	ID           string    `json:"_id,omitempty" bson:"_id,omitempty"`
	Username     string    `json:"username" bson:"username"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"password_hash" bson:"password_hash"`
	Salt         string    `json:"salt" bson:"salt"`
	AuthToken    string    `json:"auth_token,omitempty" bson:"auth_token,omitempty"`
	LastLogin    time.Time `json:"last_login" bson:"last_login"`
	Created      time.Time `json:"created" bson:"created"`
	Updated      time.Time `json:"updated" bson:"updated"`
}

// PublicUser is the client-facing view of a User.
type PublicUser struct {
	ID        string    `json:"_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	AuthToken string    `json:"auth_token,omitempty"`
	LastLogin time.Time `json:"last_login"`
	Created   time.Time `json:"created"`
	Updated   time.Time `json:"updated"`
}

// Public strips the password hash and salt.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		AuthToken: u.AuthToken,
		LastLogin: u.LastLogin,
		Created:   u.Created,
		Updated:   u.Updated,
	}
}

// SignupRequest is the body of POST /signup.
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateUserRequest is the body of PATCH /self. Absent fields are left unchanged.
type UpdateUserRequest struct {
	Email *string `json:"email,omitempty"`
}

// UpdatePasswordRequest is the body of PATCH /self/password.
type UpdatePasswordRequest struct {
	Password string `json:"password"`
}
