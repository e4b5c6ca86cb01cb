package logic

import (
	"errors"
	"fmt"

	"github.com/blues/dfs/internal/logger"
	"github.com/blues/dfs/internal/model"
	"gorm.io/gorm"
)

// DonationLogic 捐赠记录业务逻辑。
// 上游是支付网关确认回调，同一笔交易可能重复回调，
// 以 tx_ref 为幂等键，重复确认不会重复计入已筹总额
type DonationLogic struct {
	db          *gorm.DB
	ledger      *LedgerLogic
	broadcaster Broadcaster
}

// NewDonationLogic 创建捐赠记录业务逻辑
func NewDonationLogic(db *gorm.DB, ledger *LedgerLogic, broadcaster Broadcaster) *DonationLogic {
	return &DonationLogic{
		db:          db,
		ledger:      ledger,
		broadcaster: broadcaster,
	}
}

// RecordDonation 记录一笔已确认的捐赠。
// 记录追加和账本更新在同一事务内完成，事件广播在事务提交后、
// 释放项目锁之前进行，同一项目的事件按入账顺序发布。
// 重复的 tx_ref 直接返回已存在的记录，不产生任何变更
func (d *DonationLogic) RecordDonation(record *model.DonationRecordModel) (*model.DonationRecordModel, error) {
	if err := d.validateDonation(record); err != nil {
		return nil, err
	}

	var result *model.DonationRecordModel
	var raisedTotal int64
	duplicate := false

	err := d.ledger.Mutate(record.CampaignId, func(tx *gorm.DB, campaign *model.CampaignModel) error {
		if campaign.Status != model.CampaignStatusActive {
			return fmt.Errorf("%w: 项目已结束，无法接受捐赠", ErrInvalidState)
		}

		// 单笔最低捐赠金额，项目可覆盖平台默认值
		minDonation := d.ledger.Config().MinDonation
		if campaign.MinDonation > 0 {
			minDonation = campaign.MinDonation
		}
		if record.Amount < minDonation {
			return fmt.Errorf("%w: 捐赠金额低于最低限额", ErrValidation)
		}

		// 幂等检查：同一交易号只入账一次。
		// 交易号属于某一个项目，换了项目的重放说明网关出了问题，拒绝而不是吞掉
		var existing model.DonationRecordModel
		err := tx.Where("tx_ref = ?", record.TxRef).First(&existing).Error
		if err == nil {
			if existing.CampaignId != record.CampaignId {
				return fmt.Errorf("%w: 交易号已用于其他项目", ErrValidation)
			}
			duplicate = true
			result = &existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := tx.Create(record).Error; err != nil {
			return err
		}

		raisedTotal, err = d.ledger.ApplyDonation(tx, campaign, record.Amount)
		if err != nil {
			return err
		}

		result = record
		return nil
	}, func() {
		if !duplicate {
			d.publish(record, raisedTotal)
		}
	})
	if err != nil {
		return nil, err
	}

	if duplicate {
		logger.Warn("Duplicate donation confirmation for tx_ref %s, campaign %d, ignored", record.TxRef, record.CampaignId)
	}
	return result, nil
}

// GetCampaignDonations 分页获取项目捐赠记录
func (d *DonationLogic) GetCampaignDonations(campaignId int64, page, pageSize int) ([]model.DonationRecordModel, int64, error) {
	var donations []model.DonationRecordModel
	var total int64

	if err := d.db.Model(&model.DonationRecordModel{}).Where("campaign_id = ?", campaignId).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := d.db.Where("campaign_id = ?", campaignId).
		Offset(offset).
		Limit(pageSize).
		Order("created_at DESC").
		Find(&donations).Error; err != nil {
		return nil, 0, err
	}

	return donations, total, nil
}

// publish 广播捐赠事件
func (d *DonationLogic) publish(record *model.DonationRecordModel, raisedTotal int64) {
	if d.broadcaster == nil {
		return
	}

	donorName := record.DonorName
	if record.Anonymous {
		donorName = "匿名"
	}

	d.broadcaster.Publish(record.CampaignId, model.FundEventDonationReceived, map[string]interface{}{
		"donation_id":  record.Id,
		"amount":       record.Amount,
		"donor_name":   donorName,
		"message":      record.Message,
		"raised_total": raisedTotal,
	})
}

// validateDonation 验证捐赠数据
func (d *DonationLogic) validateDonation(record *model.DonationRecordModel) error {
	if record.CampaignId == 0 {
		return fmt.Errorf("%w: 项目ID不能为空", ErrValidation)
	}
	if record.Amount <= 0 {
		return fmt.Errorf("%w: 捐赠金额必须大于0", ErrValidation)
	}
	if record.TxRef == "" {
		return fmt.Errorf("%w: 交易号不能为空", ErrValidation)
	}
	return nil
}
