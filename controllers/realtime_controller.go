package controllers

import (
	"net/http"
	"sync"
	"time"

	"mealtracker/models"
	"mealtracker/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type RealtimeController struct {
	Hub   *services.LedgerHub
	Auth  services.AuthWatcher
	Store services.EntryStore
	Log   *zap.Logger
}

func NewRealtimeController(hub *services.LedgerHub, auth services.AuthWatcher, store services.EntryStore, log *zap.Logger) *RealtimeController {
	return &RealtimeController{Hub: hub, Auth: auth, Store: store, Log: log}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true }, // tighten behind a proxy if needed
}

type todayMessage struct {
	Entries       []models.MealEntry `json:"entries"`
	TotalCalories float64            `json:"totalCalories"`
}

// TodayWS streams the live today-ledger to the client: a snapshot
// message on connect and another after every change, until the client
// disconnects or signs out.
func (rc *RealtimeController) TodayWS(c *gin.Context) {
	uid := c.GetUint("userID")
	sid := c.GetString("sessionID")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	feed := services.NewTodayFeed(rc.Auth, rc.Store, rc.Log)
	cl := &services.FeedClient{UserID: uid, Conn: conn, Feed: feed}
	rc.Hub.Register(cl)

	// gorilla allows one concurrent writer; pushes and pings share it.
	var writeMu sync.Mutex

	feed.Start(sid, func(entries []models.MealEntry, total float64) {
		if entries == nil {
			entries = []models.MealEntry{}
		}
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := conn.WriteJSON(todayMessage{Entries: entries, TotalCalories: total}); err != nil {
			rc.Log.Debug("feed push write failed", zap.Uint("userID", uid), zap.Error(err))
		}
	})

	// ping to keep connections alive through some proxies
	go func() {
		t := time.NewTicker(25 * time.Second)
		defer t.Stop()
		for range t.C {
			writeMu.Lock()
			err := conn.WriteMessage(websocket.PingMessage, nil)
			writeMu.Unlock()
			if err != nil {
				rc.Hub.Unregister(cl)
				return
			}
		}
	}()

	// read loop ends on client close/error → unregister (stops the
	// feed, which releases both watches)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			rc.Hub.Unregister(cl)
			return
		}
	}
}
