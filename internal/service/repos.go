package service

import (
	"github.com/alexanderramin/planboard/internal/db"
	"github.com/alexanderramin/planboard/internal/repository"
)

// Repos bundles the repositories the services read from. Write phases build
// a tx-scoped set with NewSQLiteRepos(tx) inside UnitOfWork.WithinTx.
type Repos struct {
	Organizations    repository.OrganizationRepo
	Users            repository.UserRepo
	Memberships      repository.MembershipRepo
	Projects         repository.ProjectRepo
	Tasks            repository.TaskRepo
	Calendars        repository.CalendarRepo
	TimeEntries      repository.TimeEntryRepo
	Allocations      repository.AllocationRepo
	ChildAllocations repository.ChildAllocationRepo
}

func NewSQLiteRepos(conn db.DBTX) Repos {
	return Repos{
		Organizations:    repository.NewSQLiteOrganizationRepo(conn),
		Users:            repository.NewSQLiteUserRepo(conn),
		Memberships:      repository.NewSQLiteMembershipRepo(conn),
		Projects:         repository.NewSQLiteProjectRepo(conn),
		Tasks:            repository.NewSQLiteTaskRepo(conn),
		Calendars:        repository.NewSQLiteCalendarRepo(conn),
		TimeEntries:      repository.NewSQLiteTimeEntryRepo(conn),
		Allocations:      repository.NewSQLiteAllocationRepo(conn),
		ChildAllocations: repository.NewSQLiteChildAllocationRepo(conn),
	}
}
