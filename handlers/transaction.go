package handlers

import (
	"net/http"

	"splitmate-backend/database"
	"splitmate-backend/models"
	"splitmate-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// POST /api/transactions — personal ledger entry (positive = income,
// negative = spending)
func CreateTransaction(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	var req models.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	transaction := models.Transaction{
		UserID:   userID,
		Title:    req.Title,
		Amount:   req.Amount,
		Category: req.Category,
	}

	if err := database.DB.Create(&transaction).Error; err != nil {
		utils.InternalError(c, "Failed to create transaction")
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Transaction added", transaction)
}

// GET /api/transactions
func GetTransactions(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	var pagination utils.PaginationQuery
	c.ShouldBindQuery(&pagination)

	var transactions []models.Transaction
	database.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit).
		Find(&transactions)

	utils.SuccessResponse(c, http.StatusOK, "", transactions)
}

// GET /api/transactions/summary
func GetTransactionSummary(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	var summary models.TransactionSummary
	database.DB.Model(&models.Transaction{}).Where("user_id = ?", userID).
		Select("COALESCE(SUM(amount), 0)").Scan(&summary.Balance)
	database.DB.Model(&models.Transaction{}).Where("user_id = ? AND amount > 0", userID).
		Select("COALESCE(SUM(amount), 0)").Scan(&summary.Income)
	database.DB.Model(&models.Transaction{}).Where("user_id = ? AND amount < 0", userID).
		Select("COALESCE(SUM(amount), 0)").Scan(&summary.Expenses)

	utils.SuccessResponse(c, http.StatusOK, "", summary)
}

// DELETE /api/transactions/:id
func DeleteTransaction(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)
	transactionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "Invalid transaction ID")
		return
	}

	var transaction models.Transaction
	if err := database.DB.First(&transaction, transactionID).Error; err != nil {
		utils.NotFound(c, "Transaction not found")
		return
	}

	if transaction.UserID != userID {
		utils.Unauthorized(c, "Not your transaction")
		return
	}

	database.DB.Delete(&transaction)

	utils.SuccessResponse(c, http.StatusOK, "Transaction deleted", nil)
}

// DELETE /api/transactions — wipe the current user's personal ledger
func DeleteAllTransactions(c *gin.Context) {
	userID := utils.GetCurrentUserID(c)

	database.DB.Where("user_id = ?", userID).Delete(&models.Transaction{})

	utils.SuccessResponse(c, http.StatusOK, "All transactions deleted", nil)
}
