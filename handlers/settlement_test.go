package handlers

import (
	"net/http"
	"testing"

	"splitmate-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettleUp(t *testing.T) {
	db := setupTest(t)
	r := testRouter()

	seedTestUser(t, db, userAlice, "alice")
	seedTestUser(t, db, userBob, "bob")
	group := seedTestGroup(t, db, "MNBV34", userAlice, userBob)

	// Alice pays 50, split equally: Bob owes Alice 25
	w := doJSON(t, r, http.MethodPost, "/api/groups/"+group.ID.String()+"/expenses", userAlice, models.CreateExpenseRequest{
		Description: "Dinner",
		Amount:      50,
		SplitType:   "equal",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	settlePath := "/api/groups/" + group.ID.String() + "/settle"

	w = doJSON(t, r, http.MethodPost, settlePath, userBob, models.SettleRequest{ToUserID: userAlice.String()})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var response models.SettleResponse
	decodeResponse(t, w, &response)
	assert.Equal(t, int64(1), response.SettledCount)

	// The group is clean now: settling again finds nothing
	w = doJSON(t, r, http.MethodPost, settlePath, userBob, models.SettleRequest{ToUserID: userAlice.String()})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// A settle event lands in the activity feed
	var activityCount int64
	db.Model(&models.Activity{}).Where("group_id = ? AND type = ?", group.ID, "debts_settled").Count(&activityCount)
	assert.Equal(t, int64(1), activityCount)
}

func TestSettleUpValidation(t *testing.T) {
	db := setupTest(t)
	r := testRouter()

	seedTestUser(t, db, userAlice, "alice")
	seedTestUser(t, db, userBob, "bob")
	group := seedTestGroup(t, db, "POIU56", userAlice)

	settlePath := "/api/groups/" + group.ID.String() + "/settle"

	// Not a member
	w := doJSON(t, r, http.MethodPost, settlePath, userBob, models.SettleRequest{ToUserID: userAlice.String()})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Garbage payee ID
	w = doJSON(t, r, http.MethodPost, settlePath, userAlice, models.SettleRequest{ToUserID: "not-a-uuid"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetSmartSplit(t *testing.T) {
	db := setupTest(t)
	r := testRouter()

	seedTestUser(t, db, userAlice, "alice")
	seedTestUser(t, db, userBob, "bob")
	seedTestUser(t, db, userCarol, "carol")
	group := seedTestGroup(t, db, "LKJH78", userAlice, userBob, userCarol)

	// Alice pays 90 split equally: Bob and Carol each owe her 30
	w := doJSON(t, r, http.MethodPost, "/api/groups/"+group.ID.String()+"/expenses", userAlice, models.CreateExpenseRequest{
		Description: "Cabin",
		Amount:      90,
		SplitType:   "equal",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/groups/"+group.ID.String()+"/smart-split", userBob, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var plan models.SettlementPlan
	decodeResponse(t, w, &plan)
	require.Equal(t, 2, plan.TotalTransactions)
	assert.Equal(t, "USD", plan.Currency)
	for _, txn := range plan.Transactions {
		assert.Equal(t, userAlice, txn.ToID)
		assert.Equal(t, "alice", txn.ToName)
		assert.NotEmpty(t, txn.FromName)
		assert.InDelta(t, 30, txn.Amount, 0.01)
	}
}

func TestGetSmartSplitDisabled(t *testing.T) {
	db := setupTest(t)
	r := testRouter()

	seedTestUser(t, db, userAlice, "alice")
	group := seedTestGroup(t, db, "ASDF90", userAlice)

	require.NoError(t, db.Model(&models.Group{}).Where("id = ?", group.ID).
		Update("smart_split_enabled", false).Error)

	w := doJSON(t, r, http.MethodGet, "/api/groups/"+group.ID.String()+"/smart-split", userAlice, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	envelope := decodeResponse(t, w, nil)
	assert.False(t, envelope.Success)
	assert.Equal(t, "Smart split is disabled for this group", envelope.Message)
}

func TestGetSmartSplitEmptyGroup(t *testing.T) {
	db := setupTest(t)
	r := testRouter()

	seedTestUser(t, db, userAlice, "alice")
	group := seedTestGroup(t, db, "VBNM21", userAlice)

	w := doJSON(t, r, http.MethodGet, "/api/groups/"+group.ID.String()+"/smart-split", userAlice, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var plan models.SettlementPlan
	decodeResponse(t, w, &plan)
	assert.Zero(t, plan.TotalTransactions)
	assert.Empty(t, plan.Transactions)
}
