package handlers

import (
	"fmt"
	"net/http"

	"splitmate-backend/database"
	"splitmate-backend/models"
	"splitmate-backend/services"
	"splitmate-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// POST /api/groups/:id/settle — mark every open debt from the current user
// to one payee as paid
func SettleUp(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid group ID")
		return
	}

	if !isMember(groupID, userID) {
		utils.Unauthorized(c, "You are not a member of this group")
		return
	}

	var req models.SettleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	toUserID, err := uuid.Parse(req.ToUserID)
	if err != nil {
		utils.BadRequest(c, "Invalid to_user_id")
		return
	}

	settledCount, err := services.SettleDebts(groupID, userID, toUserID)
	if err != nil {
		if err == services.ErrNoDebtsToSettle {
			utils.NotFound(c, "No debts to settle")
		} else {
			utils.InternalError(c, "Failed to settle debts")
		}
		return
	}

	// Log activity and notify the payee
	var payer, payee models.User
	database.DB.First(&payer, userID)
	database.DB.First(&payee, toUserID)
	var group models.Group
	database.DB.First(&group, groupID)

	database.DB.Create(&models.Activity{
		GroupID:     groupID,
		UserID:      userID,
		Type:        "debts_settled",
		Description: fmt.Sprintf("%s settled up with %s", payer.Name, payee.Name),
	})

	go services.GetNotificationService().NotifyDebtsSettled(group, payer, payee, settledCount)

	utils.SuccessResponse(c, http.StatusOK, "Debts settled", models.SettleResponse{
		SettledCount: settledCount,
	})
}

// GET /api/groups/:id/smart-split — compute the settlement plan that clears
// the group's open debts with the fewest payments. The plan is a snapshot
// recommendation: executing it means one settle call per transaction, and
// a plan computed before a concurrent settlement may reference already-paid
// debt, so clients re-derive before applying.
func GetSmartSplit(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid group ID")
		return
	}

	if !isMember(groupID, userID) {
		utils.Unauthorized(c, "You are not a member of this group")
		return
	}

	var group models.Group
	if err := database.DB.First(&group, groupID).Error; err != nil {
		utils.NotFound(c, "Group not found")
		return
	}

	if !group.SmartSplitEnabled {
		utils.BadRequest(c, "Smart split is disabled for this group")
		return
	}

	rows, err := services.UnsettledSplits(groupID)
	if err != nil {
		utils.InternalError(c, "Failed to load balances")
		return
	}

	balances := services.GroupNetBalances(memberIDs(groupID), rows)
	plan := services.SimplifyDebts(balances)
	plan.Currency = group.Currency

	// Fill in display names
	names := make(map[uuid.UUID]string)
	for i, t := range plan.Transactions {
		for _, id := range []uuid.UUID{t.FromID, t.ToID} {
			if _, ok := names[id]; !ok {
				var user models.User
				database.DB.First(&user, id)
				names[id] = user.Name
			}
		}
		plan.Transactions[i].FromName = names[t.FromID]
		plan.Transactions[i].ToName = names[t.ToID]
	}

	utils.SuccessResponse(c, http.StatusOK, "", plan)
}
