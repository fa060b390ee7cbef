package importer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Workspace is the top-level structure of a seed file. Every entity carries
// a ref that other entities point at; refs share one namespace.
type Workspace struct {
	Organizations []OrganizationImport `yaml:"organizations" json:"organizations"`
	Users         []UserImport         `yaml:"users" json:"users"`
	Memberships   []MembershipImport   `yaml:"memberships,omitempty" json:"memberships,omitempty"`
	Projects      []ProjectImport      `yaml:"projects" json:"projects"`
	Tasks         []TaskImport         `yaml:"tasks" json:"tasks"`
	TimeEntries   []TimeEntryImport    `yaml:"time_entries,omitempty" json:"time_entries,omitempty"`
}

type OrganizationImport struct {
	Ref  string `yaml:"ref" json:"ref"`
	Name string `yaml:"name" json:"name"`
}

type UserImport struct {
	Ref      string          `yaml:"ref" json:"ref"`
	Name     string          `yaml:"name" json:"name"`
	Email    string          `yaml:"email,omitempty" json:"email,omitempty"`
	Calendar *CalendarImport `yaml:"calendar,omitempty" json:"calendar,omitempty"`
}

// CalendarImport keys days by weekday name ("monday" or "mon").
type CalendarImport struct {
	Lunch *LunchImport         `yaml:"lunch,omitempty" json:"lunch,omitempty"`
	Days  map[string]DayImport `yaml:"days" json:"days"`
}

type LunchImport struct {
	Start   string `yaml:"start" json:"start"`
	Minutes int    `yaml:"minutes" json:"minutes"`
}

type DayImport struct {
	WorkHours  float64 `yaml:"work_hours,omitempty" json:"work_hours,omitempty"`
	WorkStart  string  `yaml:"work_start,omitempty" json:"work_start,omitempty"`
	HobbyHours float64 `yaml:"hobby_hours,omitempty" json:"hobby_hours,omitempty"`
	HobbyStart string  `yaml:"hobby_start,omitempty" json:"hobby_start,omitempty"`
}

type MembershipImport struct {
	OrganizationRef string `yaml:"organization_ref" json:"organization_ref"`
	UserRef         string `yaml:"user_ref" json:"user_ref"`
	Role            string `yaml:"role,omitempty" json:"role,omitempty"`
}

type ProjectImport struct {
	Ref             string `yaml:"ref" json:"ref"`
	OrganizationRef string `yaml:"organization_ref" json:"organization_ref"`
	Name            string `yaml:"name" json:"name"`
	Hobby           bool   `yaml:"hobby,omitempty" json:"hobby,omitempty"`
}

type TaskImport struct {
	Ref            string   `yaml:"ref" json:"ref"`
	ProjectRef     string   `yaml:"project_ref" json:"project_ref"`
	Name           string   `yaml:"name" json:"name"`
	EstimatedHours *float64 `yaml:"estimated_hours,omitempty" json:"estimated_hours,omitempty"`
	ParentRef      *string  `yaml:"parent_ref,omitempty" json:"parent_ref,omitempty"`
	DependsOnRef   *string  `yaml:"depends_on_ref,omitempty" json:"depends_on_ref,omitempty"`
	AssigneeRef    *string  `yaml:"assignee_ref,omitempty" json:"assignee_ref,omitempty"`
	Order          int      `yaml:"order,omitempty" json:"order,omitempty"`
}

type TimeEntryImport struct {
	TaskRef string  `yaml:"task_ref" json:"task_ref"`
	UserRef string  `yaml:"user_ref" json:"user_ref"`
	Date    string  `yaml:"date" json:"date"`
	Hours   float64 `yaml:"hours" json:"hours"`
	Note    string  `yaml:"note,omitempty" json:"note,omitempty"`
}

// LoadWorkspace reads a seed file. Files ending in .json are parsed as
// JSON; anything else as YAML.
func LoadWorkspace(path string) (*Workspace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var ws Workspace
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &ws)
	} else {
		err = yaml.Unmarshal(data, &ws)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing workspace file: %w", err)
	}
	return &ws, nil
}
