package stocktake_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"stocktake/core/storage/mocks"
	"stocktake/feature/stocktake"
	"stocktake/feature/stocktake/models"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func completionFixture() *stocktake.CompletionResult {
	return &stocktake.CompletionResult{
		Inventory: &stocktake.InventorySnapshot{
			ID:     "inv-1",
			Number: "ST-20240115-4f2a91c3",
			Name:   "Monthly count",
			Status: models.StatusCompleted,
		},
		Adjustments: []stocktake.Adjustment{
			{ProductID: "p-1", ProductName: "Espresso Beans", Delta: -2},
		},
	}
}

func TestArchiveStore(t *testing.T) {
	ctx := context.Background()

	t.Run("Uploads Under Session Number", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "stocktakes").Return(true, nil)
		client.On("PutObject", mock.Anything, "stocktakes", "stocktakes/ST-20240115-4f2a91c3.json",
			mock.Anything, mock.Anything, mock.Anything).
			Return(minio.UploadInfo{}, nil).
			Run(func(args mock.Arguments) {
				body, err := io.ReadAll(args.Get(3).(io.Reader))
				assert.NoError(t, err)
				assert.Contains(t, string(body), "Espresso Beans")
				assert.Contains(t, string(body), "\"delta\": -2")
			})

		archive := stocktake.NewArchive(client, "stocktakes", zap.NewNop())
		key, err := archive.Store(ctx, completionFixture())
		assert.NoError(t, err)
		assert.Equal(t, "stocktakes/ST-20240115-4f2a91c3.json", key)
		client.AssertExpectations(t)
	})

	t.Run("Creates Missing Bucket", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "stocktakes").Return(false, nil)
		client.On("MakeBucket", mock.Anything, "stocktakes", mock.Anything).Return(nil)
		client.On("PutObject", mock.Anything, "stocktakes", mock.Anything,
			mock.Anything, mock.Anything, mock.Anything).
			Return(minio.UploadInfo{}, nil)

		archive := stocktake.NewArchive(client, "stocktakes", zap.NewNop())
		_, err := archive.Store(ctx, completionFixture())
		assert.NoError(t, err)
		client.AssertExpectations(t)
	})

	t.Run("Propagates Upload Failure", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "stocktakes").Return(true, nil)
		client.On("PutObject", mock.Anything, "stocktakes", mock.Anything,
			mock.Anything, mock.Anything, mock.Anything).
			Return(minio.UploadInfo{}, errors.New("connection reset"))

		archive := stocktake.NewArchive(client, "stocktakes", zap.NewNop())
		_, err := archive.Store(ctx, completionFixture())
		assert.Error(t, err)
	})
}
