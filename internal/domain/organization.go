package domain

import "time"

type Organization struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

type User struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
}

// Membership grants a user access to every project of an organization.
type Membership struct {
	OrganizationID string
	UserID         string
	Role           string
}
