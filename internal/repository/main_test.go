package repository

import (
	"testing"

	"tradepost/internal/database"
	"tradepost/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

type fixture struct {
	alice, bob, carla *models.User
	cruiser           *models.Item
}

func seedFixture(t *testing.T, db *gorm.DB) fixture {
	t.Helper()
	f := fixture{
		alice: &models.User{Username: "alice", Language: "en"},
		bob:   &models.User{Username: "bob", Language: "ko"},
		carla: &models.User{Username: "carla", Language: "es"},
	}
	for _, u := range []*models.User{f.alice, f.bob, f.carla} {
		require.NoError(t, db.Create(u).Error)
	}
	f.cruiser = &models.Item{
		Title:       "Space Cruiser 924",
		Description: "Complete set with box",
		Price:       decimal.RequireFromString("250.00"),
		SellerID:    f.alice.ID,
		Status:      models.ItemStatusAvailable,
	}
	require.NoError(t, db.Create(f.cruiser).Error)
	return f
}
