package models

import "github.com/google/uuid"

// PlannedTransaction is one payment in a settlement plan.
type PlannedTransaction struct {
	FromID   uuid.UUID `json:"from_id"`
	FromName string    `json:"from_name,omitempty"`
	ToID     uuid.UUID `json:"to_id"`
	ToName   string    `json:"to_name,omitempty"`
	Amount   float64   `json:"amount"`
}

// SettlementPlan is the output of the smart split: the payments that clear a
// group's open debts. It lives only for the duration of one response; applying
// a transaction settles the underlying splits instead of persisting the plan.
type SettlementPlan struct {
	Transactions      []PlannedTransaction `json:"transactions"`
	TotalTransactions int                  `json:"total_transactions"`
	Savings           int                  `json:"savings"` // transactions saved vs paying every debt directly
	Currency          string               `json:"currency,omitempty"`
}

// Request / response structs
type SettleRequest struct {
	ToUserID string `json:"to_user_id" binding:"required"`
}

type SettleResponse struct {
	SettledCount int64 `json:"settled_count"`
}
