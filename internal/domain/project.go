package domain

import "time"

type Project struct {
	ID             string
	OrganizationID string
	Name           string
	// IsHobby selects the hobby calendar for every task of the project.
	IsHobby   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Kind returns the allocation kind of the project's tasks.
func (p *Project) Kind() Kind {
	return KindForProject(p.IsHobby)
}
