package repository

import (
	"context"
	"testing"

	"github.com/alexanderramin/planboard/internal/domain"
	"github.com/alexanderramin/planboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeEntryRepo_SumHoursByTasks(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	ws := seedWorkspace(t, db)
	repo := NewSQLiteTimeEntryRepo(db)

	a := createTask(t, db, ws.project.ID, "A")
	b := createTask(t, db, ws.project.ID, "B")
	c := createTask(t, db, ws.project.ID, "C")
	day := domain.MustParseDate("2024-03-11")

	require.NoError(t, repo.Create(ctx, testutil.NewTestTimeEntry(a.ID, ws.user.ID, day, 1.5)))
	require.NoError(t, repo.Create(ctx, testutil.NewTestTimeEntry(a.ID, ws.user.ID, day.AddDate(0, 0, 1), 2)))
	require.NoError(t, repo.Create(ctx, testutil.NewTestTimeEntry(b.ID, ws.user.ID, day, 0.25)))

	sums, err := repo.SumHoursByTasks(ctx, []string{a.ID, b.ID, c.ID})
	require.NoError(t, err)
	assert.InDelta(t, 3.5, sums[a.ID], 1e-9)
	assert.InDelta(t, 0.25, sums[b.ID], 1e-9)
	_, ok := sums[c.ID]
	assert.False(t, ok)

	empty, err := repo.SumHoursByTasks(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)

	entries, err := repo.ListByTask(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, day, entries[0].Date)
}

func TestTimeEntryRepo_RejectsNonPositiveHours(t *testing.T) {
	db := testutil.NewTestDB(t)
	ws := seedWorkspace(t, db)
	task := createTask(t, db, ws.project.ID, "A")

	err := NewSQLiteTimeEntryRepo(db).Create(context.Background(),
		testutil.NewTestTimeEntry(task.ID, ws.user.ID, domain.MustParseDate("2024-03-11"), 0))
	assert.Error(t, err)
}
