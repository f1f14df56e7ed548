package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"splitmate-backend/config"
	"splitmate-backend/database"
	"splitmate-backend/models"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	userAlice = uuid.MustParse("00000000-0000-0000-0000-0000000000a1")
	userBob   = uuid.MustParse("00000000-0000-0000-0000-0000000000b2")
	userCarol = uuid.MustParse("00000000-0000-0000-0000-0000000000c3")
)

// setupTest wires config and an in-memory database, then returns the handle
// so tests can seed and inspect rows directly.
func setupTest(t *testing.T) *gorm.DB {
	t.Helper()
	gin.SetMode(gin.TestMode)
	config.Load()

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
	t.Cleanup(func() { database.DB = prev })
	return db
}

// testRouter mirrors the real route table with the auth middleware replaced
// by a header-driven stub.
func testRouter() *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if id, err := uuid.Parse(c.GetHeader("X-User-ID")); err == nil {
			c.Set("user_id", id)
		}
		c.Next()
	})

	api := r.Group("/api")
	{
		api.POST("/groups", CreateGroup)
		api.POST("/groups/join", JoinGroup)
		api.POST("/groups/:id/leave", LeaveGroup)
		api.PUT("/groups/:id/smart-split", ToggleSmartSplit)

		api.POST("/groups/:id/expenses", CreateExpense)
		api.GET("/expenses/:id/splits", GetExpenseSplits)

		api.GET("/groups/:id/balances", GetGroupBalances)
		api.GET("/groups/:id/balances/:uid", GetMemberBalance)
		api.GET("/balances", GetOverallBalances)

		api.POST("/groups/:id/settle", SettleUp)
		api.GET("/groups/:id/smart-split", GetSmartSplit)
	}
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, userID uuid.UUID, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if userID != uuid.Nil {
		req.Header.Set("X-User-ID", userID.String())
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type apiEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder, out interface{}) apiEnvelope {
	t.Helper()
	var envelope apiEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	if out != nil && len(envelope.Data) > 0 {
		require.NoError(t, json.Unmarshal(envelope.Data, out))
	}
	return envelope
}

func seedTestUser(t *testing.T, db *gorm.DB, id uuid.UUID, name string) models.User {
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

func seedTestGroup(t *testing.T, db *gorm.DB, code string, memberIDs ...uuid.UUID) models.Group {
	t.Helper()
	group := models.Group{
		Name:              "Flat 4B",
		Code:              code,
		Currency:          "USD",
		SmartSplitEnabled: true,
		CreatedBy:         memberIDs[0],
	}
	require.NoError(t, db.Create(&group).Error)
	for i, id := range memberIDs {
		role := "member"
		if i == 0 {
			role = "admin"
		}
		require.NoError(t, db.Create(&models.GroupMember{GroupID: group.ID, UserID: id, Role: role}).Error)
	}
	return group
}
