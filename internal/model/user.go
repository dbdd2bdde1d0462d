package model

import "time"

// User represents an account as stored in the credential store (the
// `users` collection or table). PasswordHash and the token fields never
// leave the server; handlers build their own response shapes.
//
// Fields:
//
//	ID           – opaque identifier (ObjectID hex or UUID depending on store).
//	Username     – display name, snapshotted onto reviews.
//	Email        – unique, stored lower case.
//	PasswordHash – bcrypt hash.
//	Tier         – silver, gold or platinum (default silver).
//	IsAdmin      – grants catalog management routes.
//	Verified     – email verification flag.
type User struct {
	ID                         string     // users._id
	Username                   string     // users.username
	Email                      string     // users.email
	PasswordHash               string     // users.password
	Tier                       string     // users.tier
	IsAdmin                    bool       // users.is_admin
	Verified                   bool       // users.verified
	VerificationToken          string     // users.verification_token
	VerificationTokenExpiresAt *time.Time // users.verification_token_expires_at
	ResetPasswordToken         string     // users.reset_password_token
	ResetPasswordExpiresAt     *time.Time // users.reset_password_expires_at
	CreatedAt                  time.Time  // users.created_at
	UpdatedAt                  time.Time  // users.updated_at
}
