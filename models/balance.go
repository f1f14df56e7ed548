package models

import "github.com/google/uuid"

// CounterpartyBalance is the aggregated open debt between one user and a
// single counterparty, summed over unsettled splits.
type CounterpartyBalance struct {
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name,omitempty"`
	Amount float64   `json:"amount"`
}

// NetBalance is a user's position within a group. Derived on every query,
// never persisted: splits mutate too often (settle, edit, delete) for a
// cached copy to stay honest.
type NetBalance struct {
	UserID        uuid.UUID             `json:"user_id"`
	TotalLent     float64               `json:"total_lent"`
	TotalBorrowed float64               `json:"total_borrowed"`
	NetBalance    float64               `json:"net_balance"` // total_lent - total_borrowed
	OwesMe        []CounterpartyBalance `json:"owes_me"`
	IOwe          []CounterpartyBalance `json:"i_owe"`
}

// GroupBalanceSummary is returned for GET /api/groups/:id/balances
type GroupBalanceSummary struct {
	GroupID    uuid.UUID    `json:"group_id"`
	GroupName  string       `json:"group_name"`
	Currency   string       `json:"currency"`
	Balances   []NetBalance `json:"balances"`
	TotalSpent float64      `json:"total_spent"`
}

// FriendBalance represents the overall balance with a single friend
type FriendBalance struct {
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	Amount    float64   `json:"amount"` // positive = they owe you, negative = you owe them
}

// OverallBalanceSummary is returned for GET /api/balances
type OverallBalanceSummary struct {
	TotalOwed  float64         `json:"total_owed"`  // total others owe you
	TotalOwing float64         `json:"total_owing"` // total you owe others
	Friends    []FriendBalance `json:"friends"`
}
