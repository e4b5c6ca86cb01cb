package task

import (
	"time"

	"github.com/blues/dfs/internal/config"
	"github.com/blues/dfs/internal/logger"
	"github.com/blues/dfs/internal/model"
	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// LedgerAuditJob 账本审计任务。
// 定期用只追加的流水重算每个项目的总额，和账本里的总额对账，
// 发现不一致只告警，不自动修正
type LedgerAuditJob struct {
	db     *gorm.DB
	config *config.Config
}

// NewLedgerAuditJob 创建账本审计任务
func NewLedgerAuditJob(db *gorm.DB, cfg *config.Config) *LedgerAuditJob {
	return &LedgerAuditJob{
		db:     db,
		config: cfg,
	}
}

// GetName 获取任务名称
func (j *LedgerAuditJob) GetName() string {
	return "ledger_audit"
}

// GetSchedule 获取调度配置
func (j *LedgerAuditJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Task.Interval) * time.Second)
}

// Execute 执行任务
func (j *LedgerAuditJob) Execute() {
	logger.Info("Starting ledger audit task")

	discrepancies, err := j.audit()
	if err != nil {
		logger.Error("Ledger audit failed: %v", err)
		return
	}

	if discrepancies > 0 {
		logger.Error("Ledger audit found %d campaign(s) with inconsistent totals", discrepancies)
	} else {
		logger.Info("Ledger audit completed, all campaigns consistent")
	}
}

// audit 对所有项目对账，返回不一致的项目数
func (j *LedgerAuditJob) audit() (int, error) {
	var campaigns []model.CampaignModel
	if err := j.db.Find(&campaigns).Error; err != nil {
		return 0, err
	}

	discrepancies := 0
	for i := range campaigns {
		if !j.auditCampaign(&campaigns[i]) {
			discrepancies++
		}
	}
	return discrepancies, nil
}

// auditCampaign 对单个项目对账
func (j *LedgerAuditJob) auditCampaign(campaign *model.CampaignModel) bool {
	var donatedSum, releasedSum, withdrawnSum int64

	if err := j.db.Model(&model.DonationRecordModel{}).
		Where("campaign_id = ?", campaign.Id).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&donatedSum).Error; err != nil {
		logger.Error("Failed to sum donations for campaign %d: %v", campaign.Id, err)
		return false
	}

	if err := j.db.Model(&model.MilestoneModel{}).
		Where("campaign_id = ? AND status = ?", campaign.Id, model.MilestoneStatusApproved).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&releasedSum).Error; err != nil {
		logger.Error("Failed to sum approved milestones for campaign %d: %v", campaign.Id, err)
		return false
	}

	if err := j.db.Model(&model.WithdrawalRecordModel{}).
		Where("campaign_id = ?", campaign.Id).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&withdrawnSum).Error; err != nil {
		logger.Error("Failed to sum withdrawals for campaign %d: %v", campaign.Id, err)
		return false
	}

	consistent := true

	if donatedSum != campaign.RaisedTotal {
		logger.Error("Campaign %d raised_total mismatch: ledger=%d, records=%d", campaign.Id, campaign.RaisedTotal, donatedSum)
		consistent = false
	}
	if releasedSum != campaign.ReleasedTotal {
		logger.Error("Campaign %d released_total mismatch: ledger=%d, records=%d", campaign.Id, campaign.ReleasedTotal, releasedSum)
		consistent = false
	}
	if withdrawnSum != campaign.WithdrawnTotal {
		logger.Error("Campaign %d withdrawn_total mismatch: ledger=%d, records=%d", campaign.Id, campaign.WithdrawnTotal, withdrawnSum)
		consistent = false
	}

	// 账本不变量：0 <= withdrawn <= released <= raised
	if campaign.WithdrawnTotal < 0 ||
		campaign.WithdrawnTotal > campaign.ReleasedTotal ||
		campaign.ReleasedTotal > campaign.RaisedTotal {
		logger.Error("Campaign %d ledger invariant violated: raised=%d, released=%d, withdrawn=%d",
			campaign.Id, campaign.RaisedTotal, campaign.ReleasedTotal, campaign.WithdrawnTotal)
		consistent = false
	}

	return consistent
}
