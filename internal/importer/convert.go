package importer

import (
	"fmt"
	"sort"
	"time"

	"github.com/alexanderramin/planboard/internal/domain"
	"github.com/google/uuid"
)

// Converted is a workspace ready for persistence. Tasks are ordered so a
// parent always precedes its children; Dependencies are applied after every
// task exists.
type Converted struct {
	Organizations []*domain.Organization
	Users         []*domain.User
	Calendars     []*domain.UserCalendar
	Memberships   []*domain.Membership
	Projects      []*domain.Project
	Tasks         []*domain.Task
	// Dependencies maps task id to prerequisite task id.
	Dependencies map[string]string
	TimeEntries  []*domain.TimeEntry
	// IDs maps every ref to its generated id.
	IDs map[string]string
}

// Convert transforms a validated Workspace into domain objects.
// Call ValidateWorkspace first; Convert assumes the workspace is valid.
func Convert(ws *Workspace) (*Converted, error) {
	now := time.Now().UTC()
	out := &Converted{
		Dependencies: make(map[string]string),
		IDs:          make(map[string]string),
	}
	id := func(ref string) string {
		if v, ok := out.IDs[ref]; ok {
			return v
		}
		v := uuid.New().String()
		out.IDs[ref] = v
		return v
	}

	for _, o := range ws.Organizations {
		out.Organizations = append(out.Organizations, &domain.Organization{
			ID: id(o.Ref), Name: o.Name, CreatedAt: now,
		})
	}
	for _, u := range ws.Users {
		user := &domain.User{ID: id(u.Ref), Name: u.Name, Email: u.Email, CreatedAt: now}
		out.Users = append(out.Users, user)
		if u.Calendar == nil {
			continue
		}
		cal, err := buildCalendar(user.ID, u.Calendar)
		if err != nil {
			return nil, fmt.Errorf("user %q calendar: %w", u.Ref, err)
		}
		out.Calendars = append(out.Calendars, cal)
	}
	for _, m := range ws.Memberships {
		role := m.Role
		if role == "" {
			role = "member"
		}
		out.Memberships = append(out.Memberships, &domain.Membership{
			OrganizationID: id(m.OrganizationRef), UserID: id(m.UserRef), Role: role,
		})
	}
	for _, p := range ws.Projects {
		out.Projects = append(out.Projects, &domain.Project{
			ID:             id(p.Ref),
			OrganizationID: id(p.OrganizationRef),
			Name:           p.Name,
			IsHobby:        p.Hobby,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	}

	for _, t := range ws.Tasks {
		id(t.Ref)
	}
	depth := taskDepths(ws.Tasks)
	ordered := make([]TaskImport, len(ws.Tasks))
	copy(ordered, ws.Tasks)
	sort.SliceStable(ordered, func(i, j int) bool {
		return depth[ordered[i].Ref] < depth[ordered[j].Ref]
	})
	for _, t := range ordered {
		task := &domain.Task{
			ID:             id(t.Ref),
			ProjectID:      id(t.ProjectRef),
			Name:           t.Name,
			EstimatedHours: t.EstimatedHours,
			OrderIndex:     t.Order,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if t.ParentRef != nil {
			pid := id(*t.ParentRef)
			task.ParentID = &pid
		}
		if t.AssigneeRef != nil {
			aid := id(*t.AssigneeRef)
			task.AssigneeID = &aid
		}
		if t.DependsOnRef != nil {
			out.Dependencies[task.ID] = id(*t.DependsOnRef)
		}
		out.Tasks = append(out.Tasks, task)
	}

	for _, e := range ws.TimeEntries {
		date, err := domain.ParseDate(e.Date)
		if err != nil {
			return nil, fmt.Errorf("time entry for %q: %w", e.TaskRef, err)
		}
		out.TimeEntries = append(out.TimeEntries, &domain.TimeEntry{
			ID:        uuid.New().String(),
			TaskID:    id(e.TaskRef),
			UserID:    id(e.UserRef),
			Date:      date,
			Hours:     e.Hours,
			Note:      e.Note,
			CreatedAt: now,
		})
	}
	return out, nil
}

// taskDepths returns each task's distance from its root. Chains are assumed
// acyclic.
func taskDepths(tasks []TaskImport) map[string]int {
	parent := make(map[string]string, len(tasks))
	for _, t := range tasks {
		if t.ParentRef != nil {
			parent[t.Ref] = *t.ParentRef
		}
	}
	depth := make(map[string]int, len(tasks))
	for _, t := range tasks {
		d := 0
		for cur, ok := parent[t.Ref]; ok && d <= len(tasks); cur, ok = parent[cur] {
			d++
		}
		depth[t.Ref] = d
	}
	return depth
}
