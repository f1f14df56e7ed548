package services

import (
	"errors"
	"sort"

	"splitmate-backend/database"
	"splitmate-backend/models"
	"splitmate-backend/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Epsilon absorbs rounding noise left over from equal-split division.
// Every comparison of a balance against zero goes through it.
const Epsilon = 0.01

var ErrGroupNotFound = errors.New("group not found")

// SplitRow is one unsettled split joined with the payer of its expense —
// the raw material for every balance computation.
type SplitRow struct {
	ExpenseID  uuid.UUID
	PayerID    uuid.UUID
	UserID     uuid.UUID
	AmountOwed float64
}

// UnsettledSplits loads every open split in the group in a single query.
// All member balances derive from this one snapshot, so no member's view
// can be staler than another's.
func UnsettledSplits(groupID uuid.UUID) ([]SplitRow, error) {
	var rows []SplitRow
	err := database.DB.
		Table("expense_splits").
		Select("expense_splits.expense_id, expenses.paid_by AS payer_id, expense_splits.user_id, expense_splits.owed_amount AS amount_owed").
		Joins("JOIN expenses ON expenses.id = expense_splits.expense_id").
		Where("expenses.group_id = ? AND expense_splits.is_settled = ?", groupID, false).
		Scan(&rows).Error
	return rows, err
}

// NetBalanceFromRows computes one user's position from a snapshot of open
// splits. The payer's own share is skipped: nobody owes themselves.
func NetBalanceFromRows(userID uuid.UUID, rows []SplitRow) models.NetBalance {
	owesMe := make(map[uuid.UUID]float64)
	iOwe := make(map[uuid.UUID]float64)

	for _, r := range rows {
		if r.PayerID == r.UserID {
			continue
		}
		if r.PayerID == userID {
			owesMe[r.UserID] += r.AmountOwed
		} else if r.UserID == userID {
			iOwe[r.PayerID] += r.AmountOwed
		}
	}

	balance := models.NetBalance{
		UserID: userID,
		OwesMe: []models.CounterpartyBalance{},
		IOwe:   []models.CounterpartyBalance{},
	}

	for id, amount := range owesMe {
		balance.TotalLent += amount
		balance.OwesMe = append(balance.OwesMe, models.CounterpartyBalance{UserID: id, Amount: utils.RoundToTwo(amount)})
	}
	for id, amount := range iOwe {
		balance.TotalBorrowed += amount
		balance.IOwe = append(balance.IOwe, models.CounterpartyBalance{UserID: id, Amount: utils.RoundToTwo(amount)})
	}

	sortCounterparties(balance.OwesMe)
	sortCounterparties(balance.IOwe)

	balance.TotalLent = utils.RoundToTwo(balance.TotalLent)
	balance.TotalBorrowed = utils.RoundToTwo(balance.TotalBorrowed)
	balance.NetBalance = utils.RoundToTwo(balance.TotalLent - balance.TotalBorrowed)
	return balance
}

// GroupNetBalances computes the position of every given member from one
// snapshot. Members with no open splits get a zero balance, not an error.
func GroupNetBalances(memberIDs []uuid.UUID, rows []SplitRow) []models.NetBalance {
	balances := make([]models.NetBalance, 0, len(memberIDs))
	for _, id := range memberIDs {
		balances = append(balances, NetBalanceFromRows(id, rows))
	}
	return balances
}

// GroupBalance returns one user's balance in a group. A former member (or
// anyone without open splits) gets a zero balance; only a missing group is
// an error.
func GroupBalance(groupID, userID uuid.UUID) (models.NetBalance, error) {
	var group models.Group
	if err := database.DB.First(&group, groupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NetBalance{}, ErrGroupNotFound
		}
		return models.NetBalance{}, err
	}

	rows, err := UnsettledSplits(groupID)
	if err != nil {
		return models.NetBalance{}, err
	}
	return NetBalanceFromRows(userID, rows), nil
}

func sortCounterparties(parties []models.CounterpartyBalance) {
	sort.Slice(parties, func(i, j int) bool {
		return parties[i].UserID.String() < parties[j].UserID.String()
	})
}
