package internal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"guiche-backend/config"
	"guiche-backend/internal/api"
	"guiche-backend/internal/gate"
	"guiche-backend/internal/liveview"
	"guiche-backend/internal/notes"
	"guiche-backend/internal/session"
	"guiche-backend/internal/store"
	"guiche-backend/internal/upstream"
)

// TestTicketLifecycle drives a ticket through being called and leaving the
// live view against a simulated scheduling API, and verifies what the display
// endpoint serves and what the archive records at each step.
func TestTicketLifecycle(t *testing.T) {
	gin.SetMode(gin.TestMode)

	testDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := testDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	defer sqlDB.Close()

	require.NoError(t, testDB.AutoMigrate(&store.PushSubscription{}, &store.SubscriptionCode{}, &store.TicketEvent{}))
	appStore := store.NewGormStore(testDB)

	// Simulated scheduling API: first poll serves one live ticket, later
	// polls serve none.
	var mu sync.Mutex
	pollCount := 0
	scheduled := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	upstreamSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/live-items", r.URL.Path)
		mu.Lock()
		first := pollCount == 0
		pollCount++
		mu.Unlock()
		if first {
			json.NewEncoder(w).Encode([]upstream.QueueItem{
				{ID: 1, Code: "FON001", Room: "3", ScheduledMoment: scheduled, Status: upstream.StatusInService},
			})
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer upstreamSrv.Close()

	client := upstream.NewClient(&config.UpstreamConfig{BaseURL: upstreamSrv.URL, Timeout: 5 * time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	displayView := liveview.NewLiveView(4)
	poller := liveview.NewPoller(client, upstream.Scope{}, time.Hour, displayView,
		func(appeared, dropped []upstream.QueueItem) {
			events := make([]store.TicketEvent, 0, len(appeared)+len(dropped))
			for _, item := range appeared {
				events = append(events, store.TicketEvent{
					Code: item.Code, Room: item.Room, Event: store.EventCalled, ScheduledAt: item.ScheduledMoment,
				})
			}
			for _, item := range dropped {
				events = append(events, store.TicketEvent{
					Code: item.Code, Room: item.Room, Event: store.EventLeft, ScheduledAt: item.ScheduledMoment,
				})
			}
			require.NoError(t, appStore.RecordTicketEvents(ctx, events))
		})

	kv := session.NewMemoryKV()
	sessions := session.NewStore(kv)
	accessGate := gate.New(sessions, client, client)
	registry := liveview.NewRegistry(ctx, client, time.Hour, time.Hour, 4)
	defer registry.Close()

	handler := api.NewHandler(api.Deps{
		Upstream:     client,
		Sessions:     sessions,
		Gate:         accessGate,
		Notes:        notes.NewStore(kv, 200),
		Store:        appStore,
		Display:      displayView,
		Dashboards:   registry,
		WebPush:      &webpush.Options{VAPIDPublicKey: "test-public-key"},
		DisplaySlots: 4,
	})
	router := api.NewRouter(&config.ServerConfig{RateLimitPerSec: 1000, RateLimitBurst: 1000}, handler, accessGate)

	getDisplay := func() (nowServing, history []string) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/display", nil))
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			NowServing struct {
				Code        string `json:"code"`
				Placeholder bool   `json:"placeholder"`
			} `json:"nowServing"`
			History []struct {
				Code string `json:"code"`
			} `json:"history"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		if !resp.NowServing.Placeholder {
			nowServing = append(nowServing, resp.NowServing.Code)
		}
		for _, slot := range resp.History {
			history = append(history, slot.Code)
		}
		return nowServing, history
	}

	// First poll: the ticket is being served.
	poller.PollOnce(ctx)
	nowServing, history := getDisplay()
	assert.Equal(t, []string{"FON001"}, nowServing)
	assert.Empty(t, history)

	events, err := appStore.RecentTicketEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, store.EventCalled, events[0].Event)

	// Second poll: the ticket left; it must move to the display history and
	// the archive must record the departure.
	poller.PollOnce(ctx)
	nowServing, history = getDisplay()
	assert.Empty(t, nowServing)
	assert.Equal(t, []string{"FON001"}, history)

	events, err = appStore.RecentTicketEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, store.EventLeft, events[0].Event)
}
