// Package models defines server-side data models persisted in the metadata
// database.
package models

import "time"

// App is a registered tenant. The secret token itself is never stored; only
// its digest is, so the plaintext is handed out once at creation or
// regeneration.
type App struct {
	ID        string
	Name      string
	TokenHash []byte
	IsActive  bool
	CreatedAt time.Time
}
