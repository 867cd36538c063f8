package stocktake

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"stocktake/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// CompletionReport is the archived form of a committed count session.
type CompletionReport struct {
	GeneratedAt      time.Time         `json:"generated_at"`
	Inventory        InventorySnapshot `json:"inventory"`
	Adjustments      []Adjustment      `json:"adjustments"`
	SkippedUncounted int               `json:"skipped_uncounted"`
}

// Archive writes completion reports to object storage so finished sessions
// survive independently of the record store.
type Archive struct {
	client storage.Client
	bucket string
	logger *zap.Logger
}

// NewArchive creates a report archive over the given storage client.
func NewArchive(client storage.Client, bucket string, logger *zap.Logger) *Archive {
	return &Archive{client: client, bucket: bucket, logger: logger}
}

// Store serializes the completion result and uploads it under
// stocktakes/<number>.json. Returns the object key.
func (a *Archive) Store(ctx context.Context, result *CompletionResult) (string, error) {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return "", fmt.Errorf("failed to check archive bucket: %w", err)
	}
	if !exists {
		if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
			return "", fmt.Errorf("failed to create archive bucket: %w", err)
		}
	}

	report := CompletionReport{
		GeneratedAt:      time.Now().UTC(),
		Inventory:        *result.Inventory,
		Adjustments:      result.Adjustments,
		SkippedUncounted: result.SkippedUncounted,
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	key := fmt.Sprintf("stocktakes/%s.json", result.Inventory.Number)
	_, err = a.client.PutObject(
		ctx,
		a.bucket,
		key,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"},
	)
	if err != nil {
		return "", fmt.Errorf("failed to upload report %s: %w", key, err)
	}

	a.logger.Debug("Report archived",
		zap.String("object", key),
		zap.Int("bytes", len(data)),
	)
	return key, nil
}
