package logic

import (
	"sync"
	"testing"

	"github.com/blues/dfs/internal/config"
	"github.com/blues/dfs/internal/database"
	"github.com/blues/dfs/internal/model"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB 内存sqlite。单连接，避免每个连接各自一个内存库
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func testLedgerConfig() config.LedgerConfig {
	return config.LedgerConfig{
		MinDonation:   100,
		MinWithdrawal: 500,
		LockTimeoutMs: 2000,
	}
}

func newTestLedger(t *testing.T, db *gorm.DB) *LedgerLogic {
	t.Helper()
	return NewLedgerLogic(db, testLedgerConfig())
}

func createTestCampaign(t *testing.T, db *gorm.DB, target int64, ownerId string) *model.CampaignModel {
	t.Helper()

	campaign := &model.CampaignModel{
		Title:        "乡村小学图书馆",
		TargetAmount: target,
		Status:       model.CampaignStatusActive,
		OwnerId:      ownerId,
		OwnerName:    "张老师",
	}
	require.NoError(t, db.Create(campaign).Error)
	return campaign
}

func createTestMilestone(t *testing.T, db *gorm.DB, campaignId, amount int64) *model.MilestoneModel {
	t.Helper()

	milestone := &model.MilestoneModel{
		CampaignId: campaignId,
		Title:      "采购图书",
		Amount:     amount,
		Status:     model.MilestoneStatusLocked,
	}
	require.NoError(t, db.Create(milestone).Error)
	return milestone
}

// applyDonation 测试辅助：直接记账一笔捐赠
func applyDonation(t *testing.T, ledger *LedgerLogic, campaignId, amount int64) {
	t.Helper()
	err := ledger.Mutate(campaignId, func(tx *gorm.DB, campaign *model.CampaignModel) error {
		_, err := ledger.ApplyDonation(tx, campaign, amount)
		return err
	})
	require.NoError(t, err)
}

// applyRelease 测试辅助：直接解锁一笔金额
func applyRelease(t *testing.T, ledger *LedgerLogic, campaignId, amount int64) {
	t.Helper()
	err := ledger.Mutate(campaignId, func(tx *gorm.DB, campaign *model.CampaignModel) error {
		return ledger.ApplyMilestoneRelease(tx, campaign, amount)
	})
	require.NoError(t, err)
}

// stubBroadcaster 记录发布的事件，供断言
type stubBroadcaster struct {
	mu     sync.Mutex
	events []model.FundEvent
}

func (s *stubBroadcaster) Publish(campaignId int64, eventType model.FundEventType, payload map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, model.FundEvent{
		CampaignId: campaignId,
		EventType:  eventType,
		Payload:    payload,
	})
}

func (s *stubBroadcaster) Events() []model.FundEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.FundEvent, len(s.events))
	copy(out, s.events)
	return out
}
