package catalog_test

import (
	"context"
	"sync"
	"testing"

	"stocktake/feature/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSnapshot(t *testing.T) {
	repo, _ := newTestRepo(t)
	svc := catalog.NewService(repo, zap.NewNop())
	ctx := context.Background()

	seed(t, repo, "Beans", "A", 10, 2, true)
	seed(t, repo, "Hidden", "B", 4, 1, false)

	products, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Beans", products[0].Name)

	t.Run("Concurrent Snapshots Agree", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				got, err := svc.Snapshot(ctx)
				assert.NoError(t, err)
				assert.Len(t, got, 1)
			}()
		}
		wg.Wait()
	})
}
