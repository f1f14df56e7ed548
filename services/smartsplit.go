package services

import (
	"log"
	"sort"

	"splitmate-backend/models"
	"splitmate-backend/utils"

	"github.com/google/uuid"
)

type partyBalance struct {
	UserID uuid.UUID
	Amount float64
}

// SimplifyDebts turns a group's net balances into a settlement plan using
// greedy largest-creditor / largest-debtor matching. The greedy pairing is a
// standard heuristic for the minimum cash flow problem: not guaranteed
// minimal in the worst case (the exact problem is NP-hard), but close to it
// and O(n log n).
//
// It never fails. If either side of the ledger is empty the plan is empty,
// even when the other side holds nonzero entries: that is the reproducible
// outcome of an unbalanced ledger, and the mismatch is logged for operator
// attention rather than masked.
func SimplifyDebts(balances []models.NetBalance) models.SettlementPlan {
	var creditors, debtors []partyBalance
	var creditSum, debitSum float64

	for _, b := range balances {
		switch {
		case b.NetBalance > Epsilon:
			creditors = append(creditors, partyBalance{b.UserID, b.NetBalance})
			creditSum += b.NetBalance
		case b.NetBalance < -Epsilon:
			debtors = append(debtors, partyBalance{b.UserID, -b.NetBalance})
			debitSum += -b.NetBalance
		}
	}

	plan := models.SettlementPlan{Transactions: []models.PlannedTransaction{}}

	if len(creditors) == 0 || len(debtors) == 0 {
		return plan
	}

	// A closed ledger guarantees credits == debits: every split's debt has
	// exactly one counterpart payer. A material gap means the splits
	// themselves are inconsistent; still produce a best-effort plan.
	if diff := creditSum - debitSum; diff > Epsilon || diff < -Epsilon {
		log.Printf("⚠️  Ledger mismatch while simplifying debts: credits %.2f vs debits %.2f", creditSum, debitSum)
	}

	sortByAmountDesc(creditors)
	sortByAmountDesc(debtors)

	// Baseline: everyone pays everyone they owe directly.
	naive := len(creditors)
	if len(debtors) > naive {
		naive = len(debtors)
	}

	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor := &debtors[i]
		creditor := &creditors[j]

		amount := debtor.Amount
		if creditor.Amount < amount {
			amount = creditor.Amount
		}

		plan.Transactions = append(plan.Transactions, models.PlannedTransaction{
			FromID: debtor.UserID,
			ToID:   creditor.UserID,
			Amount: utils.RoundToTwo(amount),
		})

		debtor.Amount -= amount
		creditor.Amount -= amount

		if debtor.Amount < Epsilon {
			i++
		}
		if creditor.Amount < Epsilon {
			j++
		}
	}

	plan.TotalTransactions = len(plan.Transactions)
	if savings := naive - plan.TotalTransactions; savings > 0 {
		plan.Savings = savings
	}
	return plan
}

// Largest amount first; ties broken by user ID so plans are reproducible.
func sortByAmountDesc(parties []partyBalance) {
	sort.Slice(parties, func(i, j int) bool {
		if parties[i].Amount != parties[j].Amount {
			return parties[i].Amount > parties[j].Amount
		}
		return parties[i].UserID.String() < parties[j].UserID.String()
	})
}
