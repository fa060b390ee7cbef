package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/alexanderramin/planboard/internal/domain"
	"github.com/alexanderramin/planboard/internal/testutil"
	"github.com/stretchr/testify/require"
)

// workspace is the minimal org/user/project graph most repository tests need.
type workspace struct {
	org     *domain.Organization
	user    *domain.User
	project *domain.Project
}

func seedWorkspace(t *testing.T, database *sql.DB, projectOpts ...testutil.ProjectOption) workspace {
	t.Helper()
	ctx := context.Background()

	org := testutil.NewTestOrganization("Acme")
	require.NoError(t, NewSQLiteOrganizationRepo(database).Create(ctx, org))
	user := testutil.NewTestUser("dana")
	require.NoError(t, NewSQLiteUserRepo(database).Create(ctx, user))
	require.NoError(t, NewSQLiteMembershipRepo(database).Add(ctx, &domain.Membership{
		OrganizationID: org.ID, UserID: user.ID,
	}))
	proj := testutil.NewTestProject(org.ID, "Launch", projectOpts...)
	require.NoError(t, NewSQLiteProjectRepo(database).Create(ctx, proj))

	return workspace{org: org, user: user, project: proj}
}

func createTask(t *testing.T, database *sql.DB, projectID, name string, opts ...testutil.TaskOption) *domain.Task {
	t.Helper()
	task := testutil.NewTestTask(projectID, name, opts...)
	require.NoError(t, NewSQLiteTaskRepo(database).Create(context.Background(), task))
	return task
}
