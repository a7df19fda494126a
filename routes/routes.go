package routes

import (
	"mealtracker/controllers"
	"mealtracker/middlewares"
	"mealtracker/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Deps struct {
	Auth     *services.AuthService
	Ledger   *services.LedgerService
	Sessions *services.SessionBroker
	Store    services.EntryStore
	Hub      *services.LedgerHub
	Log      *zap.Logger
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.Default()

	authCtl := controllers.NewAuthController(d.Auth)
	mealCtl := controllers.NewMealController(d.Ledger)
	rtCtl := controllers.NewRealtimeController(d.Hub, d.Sessions, d.Store, d.Log)

	// Public auth routes
	auth := r.Group("/auth")
	{
		auth.POST("/register", authCtl.Register)
		auth.POST("/login", authCtl.Login)
	}

	// Protected routes
	protected := r.Group("/")
	protected.Use(middlewares.AuthMiddleware(d.Sessions))
	{
		protected.POST("/auth/logout", authCtl.Logout)

		protected.GET("/meals/today", mealCtl.ListToday)
		protected.POST("/meals", mealCtl.LogMeal)
		protected.PUT("/meals/:id", mealCtl.UpdateMeal)
		protected.DELETE("/meals/:id", mealCtl.DeleteMeal)

		protected.GET("/ws/today", rtCtl.TodayWS)
	}

	return r
}
