package services

import (
	"errors"
	"time"

	"splitmate-backend/database"
	"splitmate-backend/models"

	"github.com/google/uuid"
)

var ErrNoDebtsToSettle = errors.New("no debts to settle")

// SettleDebts marks every open split where fromID owes toID in the group as
// settled, stamping the settlement time. It runs as a single UPDATE, so the
// directed pair settles all-or-nothing and concurrent calls for the same
// pair serialize on the row locks. Applying a settlement plan means calling
// this once per planned transaction.
func SettleDebts(groupID, fromID, toID uuid.UUID) (int64, error) {
	now := time.Now()

	paidByTo := database.DB.Model(&models.Expense{}).
		Select("id").
		Where("group_id = ? AND paid_by = ?", groupID, toID)

	res := database.DB.Model(&models.ExpenseSplit{}).
		Where("expense_id IN (?)", paidByTo).
		Where("user_id = ? AND is_settled = ?", fromID, false).
		Updates(map[string]interface{}{"is_settled": true, "settled_at": now})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, ErrNoDebtsToSettle
	}
	return res.RowsAffected, nil
}
