package stocktake_test

import (
	"context"
	"testing"

	"stocktake/feature/stocktake"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestUpdateItemCount_PartialWrite verifies that recording a count issues a
// partial UPDATE touching only the count columns. The expected quantity is
// immutable after insert and must never appear in the statement.
func TestUpdateItemCount_PartialWrite(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `inventory_items` SET `counted`=\\?,`counted_qty`=\\?,`updated_at`=\\?").
		WithArgs(true, 8.0, sqlmock.AnyArg(), "item-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := stocktake.NewRepository(db)
	err = repo.UpdateItemCount(context.Background(), "item-1", 8)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
