package logic

import (
	"errors"
	"fmt"

	"github.com/blues/dfs/internal/config"
	"github.com/blues/dfs/internal/model"
	"gorm.io/gorm"
)

// LedgerLogic 项目资金账本。raised/released/withdrawn 三个总额
// 是唯一的共享可变状态，所有变更都必须在 Mutate 的项目锁和事务内完成，
// 保证同一项目的账本操作线性化：
//
//	0 <= withdrawn_total <= released_total <= raised_total
type LedgerLogic struct {
	db    *gorm.DB
	locks *campaignLocker
	cfg   config.LedgerConfig
}

// NewLedgerLogic 创建资金账本业务逻辑
func NewLedgerLogic(db *gorm.DB, cfg config.LedgerConfig) *LedgerLogic {
	return &LedgerLogic{
		db:    db,
		locks: newCampaignLocker(),
		cfg:   cfg,
	}
}

// Config 账本配置
func (l *LedgerLogic) Config() config.LedgerConfig {
	return l.cfg
}

// Mutate 在项目锁和数据库事务内执行账本变更。
// fn 收到的 campaign 是锁内加载的最新行，fn 返回错误时整个事务回滚，
// 不会留下部分效果。事务提交后、释放项目锁之前依次执行 afterCommit，
// 事件广播必须放在这里，才能保证同一项目的事件按账本变更顺序发布。
// 获取锁超时返回 ErrLockTimeout，由调用方决定是否重试
func (l *LedgerLogic) Mutate(campaignId int64, fn func(tx *gorm.DB, campaign *model.CampaignModel) error, afterCommit ...func()) error {
	release, err := l.locks.Acquire(campaignId, l.cfg.LockTimeout())
	if err != nil {
		return err
	}
	defer release()

	err = l.db.Transaction(func(tx *gorm.DB) error {
		var campaign model.CampaignModel
		if err := tx.First(&campaign, campaignId).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCampaignNotFound
			}
			return err
		}
		return fn(tx, &campaign)
	})
	if err != nil {
		return err
	}

	for _, hook := range afterCommit {
		hook()
	}
	return nil
}

// ApplyDonation 记账一笔已确认的捐赠，只能在 Mutate 内调用。
// 返回新的已筹总额
func (l *LedgerLogic) ApplyDonation(tx *gorm.DB, campaign *model.CampaignModel, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("%w: 捐赠金额必须大于0", ErrValidation)
	}

	campaign.RaisedTotal += amount
	if err := tx.Model(campaign).Update("raised_total", campaign.RaisedTotal).Error; err != nil {
		return 0, err
	}
	return campaign.RaisedTotal, nil
}

// ApplyMilestoneRelease 里程碑审批通过时解锁对应金额，只能在 Mutate 内调用。
// 解锁不允许超前于捐赠：解锁后 released_total 超过 raised_total 时
// 返回 ErrLedgerIntegrity，变更不生效
func (l *LedgerLogic) ApplyMilestoneRelease(tx *gorm.DB, campaign *model.CampaignModel, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: 解锁金额必须大于0", ErrValidation)
	}
	if campaign.ReleasedTotal+amount > campaign.RaisedTotal {
		return ErrLedgerIntegrity
	}

	campaign.ReleasedTotal += amount
	return tx.Model(campaign).Update("released_total", campaign.ReleasedTotal).Error
}

// ApplyWithdrawal 记账一笔提现，只能在 Mutate 内调用
func (l *LedgerLogic) ApplyWithdrawal(tx *gorm.DB, campaign *model.CampaignModel, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: 提现金额必须大于0", ErrValidation)
	}
	if amount < l.cfg.MinWithdrawal {
		return ErrBelowMinimum
	}
	if amount > campaign.AvailableTotal() {
		return ErrInsufficientFunds
	}

	campaign.WithdrawnTotal += amount
	return tx.Model(campaign).Update("withdrawn_total", campaign.WithdrawnTotal).Error
}

// Snapshot 读取账本快照，与最近一次完成的变更一致
func (l *LedgerLogic) Snapshot(campaignId int64) (*model.LedgerSnapshot, error) {
	var campaign model.CampaignModel
	if err := l.db.First(&campaign, campaignId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCampaignNotFound
		}
		return nil, err
	}

	return &model.LedgerSnapshot{
		CampaignId:     campaign.Id,
		RaisedTotal:    campaign.RaisedTotal,
		ReleasedTotal:  campaign.ReleasedTotal,
		WithdrawnTotal: campaign.WithdrawnTotal,
		AvailableTotal: campaign.AvailableTotal(),
	}, nil
}
