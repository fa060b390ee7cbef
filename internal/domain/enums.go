package domain

import "fmt"

// Kind selects which calendar profile governs an allocation.
type Kind string

const (
	KindWork  Kind = "work"
	KindHobby Kind = "hobby"
)

// ParseKind accepts "work" or "hobby".
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindWork, KindHobby:
		return Kind(s), nil
	}
	return "", fmt.Errorf("invalid kind %q (expected work or hobby)", s)
}

// KindForProject maps a project's hobby flag to its allocation kind.
func KindForProject(isHobby bool) Kind {
	if isHobby {
		return KindHobby
	}
	return KindWork
}
