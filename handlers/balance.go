package handlers

import (
	"net/http"

	"splitmate-backend/database"
	"splitmate-backend/models"
	"splitmate-backend/services"
	"splitmate-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GET /api/groups/:id/balances — every member's position, from one snapshot
func GetGroupBalances(c *gin.Context) {
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
	database.DB.First(&group, groupID)

	rows, err := services.UnsettledSplits(groupID)
	if err != nil {
		utils.InternalError(c, "Failed to load balances")
		return
	}

	balances := services.GroupNetBalances(memberIDs(groupID), rows)
	attachCounterpartyNames(balances)

	var totalSpent float64
	database.DB.Model(&models.Expense{}).Where("group_id = ?", groupID).Select("COALESCE(SUM(amount), 0)").Scan(&totalSpent)

	summary := models.GroupBalanceSummary{
		GroupID:    groupID,
		GroupName:  group.Name,
		Currency:   group.Currency,
		Balances:   balances,
		TotalSpent: totalSpent,
	}

	utils.SuccessResponse(c, http.StatusOK, "", summary)
}

// GET /api/groups/:id/balances/:uid — one member's position. A former
// member's history can still be inspected: an unknown user just comes back
// with all zeroes.
func GetMemberBalance(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	groupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid group ID")
		return
	}

	targetID, err := uuid.Parse(c.Param("uid"))
	if err != nil {
		utils.BadRequest(c, "Invalid user ID")
		return
	}

	if !isMember(groupID, userID) {
		utils.Unauthorized(c, "You are not a member of this group")
		return
	}

	balance, err := services.GroupBalance(groupID, targetID)
	if err != nil {
		if err == services.ErrGroupNotFound {
			utils.NotFound(c, "Group not found")
		} else {
			utils.InternalError(c, "Failed to load balance")
		}
		return
	}

	balances := []models.NetBalance{balance}
	attachCounterpartyNames(balances)

	utils.SuccessResponse(c, http.StatusOK, "", balances[0])
}

// GET /api/balances — overall balances across all groups for current user
func GetOverallBalances(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	var memberships []models.GroupMember
	database.DB.Where("user_id = ?", userID).Find(&memberships)

	// Aggregate per-friend balances across all groups
	friendBalances := make(map[uuid.UUID]float64)

	for _, m := range memberships {
		rows, err := services.UnsettledSplits(m.GroupID)
		if err != nil {
			utils.InternalError(c, "Failed to load balances")
			return
		}

		balance := services.NetBalanceFromRows(userID, rows)
		for _, cp := range balance.OwesMe {
			friendBalances[cp.UserID] += cp.Amount
		}
		for _, cp := range balance.IOwe {
			friendBalances[cp.UserID] -= cp.Amount
		}
	}

	var totalOwed, totalOwing float64
	var friends []models.FriendBalance

	for friendID, amount := range friendBalances {
		if utils.RoundToTwo(amount) == 0 {
			continue
		}

		var user models.User
		database.DB.First(&user, friendID)

		friends = append(friends, models.FriendBalance{
			UserID:    friendID,
			Name:      user.Name,
			Email:     user.Email,
			AvatarURL: user.AvatarURL,
			Amount:    utils.RoundToTwo(amount),
		})

		if amount > 0 {
			totalOwed += amount
		} else {
			totalOwing += -amount
		}
	}

	summary := models.OverallBalanceSummary{
		TotalOwed:  utils.RoundToTwo(totalOwed),
		TotalOwing: utils.RoundToTwo(totalOwing),
		Friends:    friends,
	}

	utils.SuccessResponse(c, http.StatusOK, "", summary)
}

// Helper: IDs of all current group members in join order
func memberIDs(groupID uuid.UUID) []uuid.UUID {
	var members []models.GroupMember
	database.DB.Where("group_id = ?", groupID).Order("joined_at").Find(&members)

	ids := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.UserID)
	}
	return ids
}

// Helper: fill in display names on counterparty entries
func attachCounterpartyNames(balances []models.NetBalance) {
	names := make(map[uuid.UUID]string)

	lookup := func(id uuid.UUID) string {
		if name, ok := names[id]; ok {
			return name
		}
		var user models.User
		database.DB.First(&user, id)
		names[id] = user.Name
		return user.Name
	}

	for i := range balances {
		for j := range balances[i].OwesMe {
			balances[i].OwesMe[j].Name = lookup(balances[i].OwesMe[j].UserID)
		}
		for j := range balances[i].IOwe {
			balances[i].IOwe[j].Name = lookup(balances[i].IOwe[j].UserID)
		}
	}
}
