package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/alexanderramin/planboard/internal/domain"
	"github.com/alexanderramin/planboard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConcurrentAccess_AvailabilityReadsDuringWrites verifies that concurrent
// availability reads see consistent rows while a single writer persists
// schedules, the normal mode of one server process.
func TestConcurrentAccess_AvailabilityReadsDuringWrites(t *testing.T) {
	database := testutil.NewFileTestDB(t)
	ctx := context.Background()
	ws := seedWorkspace(t, database)
	allocs := NewSQLiteAllocationRepo(database)

	tasks := make([]*domain.Task, 20)
	for i := range tasks {
		tasks[i] = createTask(t, database, ws.project.ID, fmt.Sprintf("Task-%d", i))
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i, task := range tasks {
			a := alloc(task.ID, ws.user.ID, i, domain.Clock(9, 0), domain.Clock(10, 0))
			if err := allocs.CreateBatch(ctx, []domain.Allocation{a}); err != nil {
				t.Errorf("writer: allocation %d: %v", i, err)
				return
			}
		}
	}()

	for r := 0; r < 5; r++ {
		wg.Add(1)
		go func(reader int) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				rows, err := allocs.ListExisting(ctx, AllocationQuery{
					UserID: ws.user.ID, Kind: domain.KindWork,
					From: repoMonday, To: repoMonday.AddDate(0, 0, 30),
				})
				if err != nil {
					t.Errorf("reader %d: list existing: %v", reader, err)
					return
				}
				for _, e := range rows {
					if e.TaskID == "" || e.TaskName == "" {
						t.Errorf("reader %d: got a half-populated row", reader)
					}
				}
			}
		}(r)
	}

	wg.Wait()

	rows, err := allocs.ListExisting(ctx, AllocationQuery{
		UserID: ws.user.ID, Kind: domain.KindWork,
		From: repoMonday, To: repoMonday.AddDate(0, 0, 30),
	})
	require.NoError(t, err)
	assert.Len(t, rows, 20)
}
