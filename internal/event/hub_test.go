package event

import (
	"testing"
	"time"

	"github.com/blues/dfs/internal/database"
	"github.com/blues/dfs/internal/logic"
	"github.com/blues/dfs/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()

	hub, err := NewHub(nil)
	require.NoError(t, err)
	t.Cleanup(hub.Close)
	return hub
}

func TestPublishToSubscriber(t *testing.T) {
	hub := newTestHub(t)

	sub := hub.Subscribe(1)
	hub.Publish(1, model.FundEventDonationReceived, map[string]interface{}{"amount": int64(2000)})

	select {
	case ev := <-sub.Ch:
		assert.Equal(t, int64(1), ev.CampaignId)
		assert.Equal(t, model.FundEventDonationReceived, ev.EventType)
		assert.Equal(t, int64(2000), ev.Payload["amount"])
		assert.False(t, ev.Timestamp.IsZero())
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestSameCampaignOrderPreserved(t *testing.T) {
	hub := newTestHub(t)

	sub := hub.Subscribe(1)
	for i := 0; i < 5; i++ {
		hub.Publish(1, model.FundEventDonationReceived, map[string]interface{}{"seq": i})
	}

	for i := 0; i < 5; i++ {
		select {
		case ev := <-sub.Ch:
			assert.Equal(t, i, ev.Payload["seq"])
		case <-time.After(time.Second):
			t.Fatal("event not delivered")
		}
	}
}

func TestWildcardSubscriber(t *testing.T) {
	hub := newTestHub(t)

	sub := hub.Subscribe(WildcardCampaign)
	hub.Publish(7, model.FundEventFundsWithdrawn, map[string]interface{}{"amount": int64(500)})

	select {
	case ev := <-sub.Ch:
		assert.Equal(t, int64(7), ev.CampaignId)
	case <-time.After(time.Second):
		t.Fatal("wildcard subscriber did not receive event")
	}
}

func TestOtherCampaignNotDelivered(t *testing.T) {
	hub := newTestHub(t)

	sub := hub.Subscribe(2)
	hub.Publish(1, model.FundEventDonationReceived, map[string]interface{}{})

	select {
	case ev := <-sub.Ch:
		t.Fatalf("unexpected event for campaign %d", ev.CampaignId)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	hub := newTestHub(t)

	sub := hub.Subscribe(1)
	hub.Unsubscribe(sub)

	_, ok := <-sub.Ch
	assert.False(t, ok)

	// 取消订阅后发布不会panic，事件被静默丢弃
	hub.Publish(1, model.FundEventDonationReceived, map[string]interface{}{})
}

func TestSlowSubscriberDropsEvents(t *testing.T) {
	hub := newTestHub(t)

	sub := hub.Subscribe(1)
	// 不消费，写满订阅缓冲后继续发布
	for i := 0; i < subscriberBuffer+10; i++ {
		hub.Publish(1, model.FundEventDonationReceived, map[string]interface{}{"seq": i})
	}

	assert.Len(t, sub.Ch, subscriberBuffer)
}

func TestPublishPersistsEvent(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	hub, err := NewHub(logic.NewFundEventLogic(db))
	require.NoError(t, err)
	t.Cleanup(hub.Close)

	hub.Publish(3, model.FundEventMilestoneUpdated, map[string]interface{}{"milestone_id": int64(9)})

	require.Eventually(t, func() bool {
		var count int64
		if err := db.Model(&model.FundEventModel{}).Where("campaign_id = ?", 3).Count(&count).Error; err != nil {
			return false
		}
		return count == 1
	}, 2*time.Second, 10*time.Millisecond)

	var record model.FundEventModel
	require.NoError(t, db.Where("campaign_id = ?", 3).First(&record).Error)
	assert.Equal(t, model.FundEventMilestoneUpdated, record.EventType)
	assert.Contains(t, record.Data, "milestone_id")
}
