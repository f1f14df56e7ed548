package services

import (
	"math"
	"testing"

	"splitmate-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	bob   = uuid.MustParse("00000000-0000-0000-0000-000000000002")
	carol = uuid.MustParse("00000000-0000-0000-0000-000000000003")
	dave  = uuid.MustParse("00000000-0000-0000-0000-000000000004")
)

func netBalance(userID uuid.UUID, net float64) models.NetBalance {
	return models.NetBalance{UserID: userID, NetBalance: net}
}

func TestSimplifyDebts(t *testing.T) {
	tests := []struct {
		name      string
		balances  []models.NetBalance
		wantTxns  []models.PlannedTransaction
		wantSaved int
	}{
		{
			name: "one creditor two debtors",
			balances: []models.NetBalance{
				netBalance(alice, 30),
				netBalance(bob, -10),
				netBalance(carol, -20),
			},
			wantTxns: []models.PlannedTransaction{
				{FromID: carol, ToID: alice, Amount: 20},
				{FromID: bob, ToID: alice, Amount: 10},
			},
			wantSaved: 0,
		},
		{
			name: "tied creditors resolve by user id",
			balances: []models.NetBalance{
				netBalance(carol, -30),
				netBalance(bob, 15),
				netBalance(alice, 15),
			},
			wantTxns: []models.PlannedTransaction{
				{FromID: carol, ToID: alice, Amount: 15},
				{FromID: carol, ToID: bob, Amount: 15},
			},
			wantSaved: 0,
		},
		{
			name: "pairwise exact matches",
			balances: []models.NetBalance{
				netBalance(alice, 10),
				netBalance(bob, 5),
				netBalance(carol, -5),
				netBalance(dave, -10),
			},
			wantTxns: []models.PlannedTransaction{
				{FromID: dave, ToID: alice, Amount: 10},
				{FromID: carol, ToID: bob, Amount: 5},
			},
			wantSaved: 0,
		},
		{
			name: "everyone within epsilon of zero",
			balances: []models.NetBalance{
				netBalance(alice, 0.009),
				netBalance(bob, -0.005),
				netBalance(carol, 0),
			},
			wantTxns:  []models.PlannedTransaction{},
			wantSaved: 0,
		},
		{
			name: "only creditors yields empty plan",
			balances: []models.NetBalance{
				netBalance(alice, 25),
				netBalance(bob, 10),
			},
			wantTxns:  []models.PlannedTransaction{},
			wantSaved: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := SimplifyDebts(tt.balances)

			require.Equal(t, len(tt.wantTxns), plan.TotalTransactions)
			require.Len(t, plan.Transactions, plan.TotalTransactions)
			for i, want := range tt.wantTxns {
				got := plan.Transactions[i]
				assert.Equal(t, want.FromID, got.FromID, "transaction %d from", i)
				assert.Equal(t, want.ToID, got.ToID, "transaction %d to", i)
				assert.InDelta(t, want.Amount, got.Amount, Epsilon, "transaction %d amount", i)
			}
			assert.Equal(t, tt.wantSaved, plan.Savings)
			assert.GreaterOrEqual(t, plan.Savings, 0)
		})
	}
}

func TestSimplifyDebtsIsDeterministic(t *testing.T) {
	balances := []models.NetBalance{
		netBalance(dave, -20),
		netBalance(alice, 20),
		netBalance(carol, -20),
		netBalance(bob, 20),
	}

	first := SimplifyDebts(balances)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, SimplifyDebts(balances))
	}
}

func TestSimplifyDebtsClearsAllBalances(t *testing.T) {
	tests := []struct {
		name     string
		balances []models.NetBalance
	}{
		{
			name: "uneven amounts",
			balances: []models.NetBalance{
				netBalance(alice, 12.37),
				netBalance(bob, 44.18),
				netBalance(carol, -31.55),
				netBalance(dave, -25.00),
			},
		},
		{
			name: "chain of debts",
			balances: []models.NetBalance{
				netBalance(alice, 100),
				netBalance(bob, -60),
				netBalance(carol, -30),
				netBalance(dave, -10),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := SimplifyDebts(tt.balances)

			// Replay the plan: every participant must land within epsilon of zero
			remaining := make(map[uuid.UUID]float64)
			var creditors, debtors int
			for _, b := range tt.balances {
				remaining[b.UserID] = b.NetBalance
				if b.NetBalance > Epsilon {
					creditors++
				} else if b.NetBalance < -Epsilon {
					debtors++
				}
			}

			for _, txn := range plan.Transactions {
				remaining[txn.FromID] += txn.Amount
				remaining[txn.ToID] -= txn.Amount
			}

			for userID, balance := range remaining {
				assert.LessOrEqual(t, math.Abs(balance), Epsilon, "user %s not settled", userID)
			}

			// Every transaction retires at least one participant
			assert.LessOrEqual(t, plan.TotalTransactions, creditors+debtors-1)
			assert.GreaterOrEqual(t, plan.Savings, 0)
		})
	}
}

func TestSimplifyDebtsUnbalancedLedger(t *testing.T) {
	// Credits and debits that don't match: a ledger-integrity anomaly.
	// The simplifier must still produce a best-effort plan, not fail.
	balances := []models.NetBalance{
		netBalance(alice, 50),
		netBalance(bob, -20),
	}

	plan := SimplifyDebts(balances)

	require.Equal(t, 1, plan.TotalTransactions)
	assert.Equal(t, bob, plan.Transactions[0].FromID)
	assert.Equal(t, alice, plan.Transactions[0].ToID)
	assert.InDelta(t, 20, plan.Transactions[0].Amount, Epsilon)
}
