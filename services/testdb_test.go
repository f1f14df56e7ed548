package services

import (
	"testing"

	"splitmate-backend/database"
	"splitmate-backend/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB swaps the package-level database handle for an in-memory
// sqlite one with the same migrated schema.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// One connection only: each sqlite :memory: connection is its own database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))

	prev := database.DB
	database.DB = db
	t.Cleanup(func() {
		database.DB = prev
		sqlDB.Close()
	})
	return db
}

func seedUser(t *testing.T, db *gorm.DB, id uuid.UUID, name string) models.User {
	t.Helper()
	user := models.User{
		ID:           id,
		Email:        name + "@example.com",
		Name:         name,
		PasswordHash: "x",
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func seedGroup(t *testing.T, db *gorm.DB, code string, memberIDs ...uuid.UUID) models.Group {
	t.Helper()
	group := models.Group{
		Name:              "Trip",
		Code:              code,
		Currency:          "USD",
		SmartSplitEnabled: true,
		CreatedBy:         memberIDs[0],
	}
	require.NoError(t, db.Create(&group).Error)
	for _, id := range memberIDs {
		require.NoError(t, db.Create(&models.GroupMember{GroupID: group.ID, UserID: id, Role: "member"}).Error)
	}
	return group
}

// seedExpense creates an expense paid by payer, with one split per entry in
// shares mapping ower to owed amount. The payer's own share is included so
// the fixture matches what the expense handler writes.
func seedExpense(t *testing.T, db *gorm.DB, groupID, payerID uuid.UUID, amount float64, shares map[uuid.UUID]float64) models.Expense {
	t.Helper()
	expense := models.Expense{
		GroupID:     groupID,
		PaidBy:      payerID,
		Description: "Dinner",
		Amount:      amount,
		Currency:    "USD",
		SplitType:   "exact",
	}
	require.NoError(t, db.Create(&expense).Error)
	for userID, owed := range shares {
		require.NoError(t, db.Create(&models.ExpenseSplit{
			ExpenseID:  expense.ID,
			UserID:     userID,
			OwedAmount: owed,
		}).Error)
	}
	return expense
}
