package models

import (
	"fmt"
	"time"
)

// User represents a registered account. The token is the opaque bearer
// credential issued at registration and presented in the Authorization header.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Token        string
	CreatedAt    time.Time
}

// URL represents a shortened URL owned by a single user.
type URL struct {
	UUID        string
	OriginalURL string
	Slug        string
	Domain      string
	Clicks      int64
	UserID      int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ShortURL composes the externally visible short link from the domain and slug.
func (u *URL) ShortURL() string {
	return fmt.Sprintf("https://%s/%s", u.Domain, u.Slug)
}
