package domain

import "time"

// Identity is an authenticated principal as reported by the identity provider.
type Identity struct {
	ID             string
	Email          string
	EmailConfirmed bool
	FullName       string
	Username       string
	CreatedAt      time.Time
}

// Session is the result of a successful password sign-in.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int // seconds
	Identity     Identity
}
