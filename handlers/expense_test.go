package handlers

import (
	"fmt"
	"net/http"
	"sort"
	"testing"

	"splitmate-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateExpenseEqualSplit(t *testing.T) {
	db := setupTest(t)
	r := testRouter()

	seedTestUser(t, db, userAlice, "alice")
	seedTestUser(t, db, userBob, "bob")
	seedTestUser(t, db, userCarol, "carol")
	group := seedTestGroup(t, db, "HJKL23", userAlice, userBob, userCarol)

	w := doJSON(t, r, http.MethodPost, "/api/groups/"+group.ID.String()+"/expenses", userAlice, models.CreateExpenseRequest{
		Description: "Groceries",
		Amount:      100,
		SplitType:   "equal",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var response models.ExpenseResponse
	decodeResponse(t, w, &response)
	assert.Equal(t, userAlice, response.PaidBy)
	require.Len(t, response.Splits, 3)

	// 100 / 3 doesn't divide evenly: one member absorbs the spare cent
	var amounts []float64
	var sum float64
	for _, s := range response.Splits {
		amounts = append(amounts, s.OwedAmount)
		sum += s.OwedAmount
		assert.False(t, s.IsSettled)
	}
	sort.Float64s(amounts)
	assert.Equal(t, []float64{33.33, 33.33, 33.34}, amounts)
	assert.InDelta(t, 100, sum, 0.001)
}

func TestCreateExpenseExactSplit(t *testing.T) {
	db := setupTest(t)
	r := testRouter()

	seedTestUser(t, db, userAlice, "alice")
	seedTestUser(t, db, userBob, "bob")
	group := seedTestGroup(t, db, "QWER45", userAlice, userBob)

	path := "/api/groups/" + group.ID.String() + "/expenses"

	// Shares that don't sum to the amount are rejected before anything lands
	w := doJSON(t, r, http.MethodPost, path, userAlice, models.CreateExpenseRequest{
		Description: "Taxi",
		Amount:      50,
		SplitType:   "exact",
		Splits: []models.SplitInput{
			{UserID: userAlice.String(), Value: 20},
			{UserID: userBob.String(), Value: 20},
		},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var count int64
	db.Model(&models.Expense{}).Count(&count)
	assert.Zero(t, count)

	w = doJSON(t, r, http.MethodPost, path, userAlice, models.CreateExpenseRequest{
		Description: "Taxi",
		Amount:      50,
		SplitType:   "exact",
		Splits: []models.SplitInput{
			{UserID: userAlice.String(), Value: 20},
			{UserID: userBob.String(), Value: 30},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var response models.ExpenseResponse
	decodeResponse(t, w, &response)
	require.Len(t, response.Splits, 2)
}

func TestCreateExpensePercentageSplit(t *testing.T) {
	db := setupTest(t)
	r := testRouter()

	seedTestUser(t, db, userAlice, "alice")
	seedTestUser(t, db, userBob, "bob")
	group := seedTestGroup(t, db, "ZXCV67", userAlice, userBob)

	path := "/api/groups/" + group.ID.String() + "/expenses"

	w := doJSON(t, r, http.MethodPost, path, userAlice, models.CreateExpenseRequest{
		Description: "Rent",
		Amount:      80,
		SplitType:   "percentage",
		Splits: []models.SplitInput{
			{UserID: userAlice.String(), Value: 60},
			{UserID: userBob.String(), Value: 40},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var splits []models.ExpenseSplit
	db.Order("owed_amount").Find(&splits)
	require.Len(t, splits, 2)
	assert.InDelta(t, 32, splits[0].OwedAmount, 0.001)
	assert.InDelta(t, 48, splits[1].OwedAmount, 0.001)

	// Percentages must add up to 100
	w = doJSON(t, r, http.MethodPost, path, userAlice, models.CreateExpenseRequest{
		Description: "Rent",
		Amount:      80,
		SplitType:   "percentage",
		Splits: []models.SplitInput{
			{UserID: userAlice.String(), Value: 60},
			{UserID: userBob.String(), Value: 50},
		},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateExpenseNonMember(t *testing.T) {
	db := setupTest(t)
	r := testRouter()

	seedTestUser(t, db, userAlice, "alice")
	seedTestUser(t, db, userBob, "bob")
	group := seedTestGroup(t, db, "TYUI89", userAlice)

	w := doJSON(t, r, http.MethodPost, "/api/groups/"+group.ID.String()+"/expenses", userBob, models.CreateExpenseRequest{
		Description: "Sneaky",
		Amount:      10,
		SplitType:   "equal",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetExpenseSplits(t *testing.T) {
	db := setupTest(t)
	r := testRouter()

	seedTestUser(t, db, userAlice, "alice")
	seedTestUser(t, db, userBob, "bob")
	group := seedTestGroup(t, db, "GHJK12", userAlice, userBob)

	w := doJSON(t, r, http.MethodPost, "/api/groups/"+group.ID.String()+"/expenses", userAlice, models.CreateExpenseRequest{
		Description: "Coffee",
		Amount:      10,
		SplitType:   "equal",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.ExpenseResponse
	decodeResponse(t, w, &created)

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/expenses/%s/splits", created.ID), userAlice, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var splits []models.ExpenseSplit
	decodeResponse(t, w, &splits)
	assert.Len(t, splits, 2)
}
