package controllers

import (
	"net/http"
	"strconv"

	"mealtracker/services"

	"github.com/gin-gonic/gin"
)

type MealController struct {
	Ledger *services.LedgerService
}

func NewMealController(ledger *services.LedgerService) *MealController {
	return &MealController{Ledger: ledger}
}

func (mc *MealController) LogMeal(c *gin.Context) {
	var body services.EntryInput
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := mc.Ledger.AddMeal(c.Request.Context(), c.GetUint("userID"), body)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (mc *MealController) UpdateMeal(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)

	var body services.EntryInput
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := mc.Ledger.UpdateMeal(c.Request.Context(), c.GetUint("userID"), uint(id), body); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "meal updated"})
}

func (mc *MealController) DeleteMeal(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("id"), 10, 64)

	if err := mc.Ledger.DeleteMeal(c.Request.Context(), c.GetUint("userID"), uint(id)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "meal deleted"})
}

// ListToday returns the current snapshot of today's ledger with the
// running calorie total, newest entry first.
func (mc *MealController) ListToday(c *gin.Context) {
	entries, total, err := mc.Ledger.ListToday(c.Request.Context(), c.GetUint("userID"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"entries":       entries,
		"totalCalories": total,
	})
}
