package logic

import (
	"fmt"

	"github.com/blues/dfs/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WithdrawalLogic 提现业务逻辑。
// 校验发起人身份和账本前置条件，任何一步失败都不产生部分效果
type WithdrawalLogic struct {
	db          *gorm.DB
	ledger      *LedgerLogic
	broadcaster Broadcaster
}

// NewWithdrawalLogic 创建提现业务逻辑
func NewWithdrawalLogic(db *gorm.DB, ledger *LedgerLogic, broadcaster Broadcaster) *WithdrawalLogic {
	return &WithdrawalLogic{
		db:          db,
		ledger:      ledger,
		broadcaster: broadcaster,
	}
}

// RequestWithdrawal 发起提现。
// 两个并发提现不会都成功把可提现余额提成负数：
// 余额检查和扣减在同一个项目锁和事务内完成
func (w *WithdrawalLogic) RequestWithdrawal(campaignId int64, amount int64, method, destination, ownerId string) (*model.WithdrawalRecordModel, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: 提现金额必须大于0", ErrValidation)
	}
	if method == "" {
		return nil, fmt.Errorf("%w: 提现方式不能为空", ErrValidation)
	}
	if destination == "" {
		return nil, fmt.Errorf("%w: 收款账户不能为空", ErrValidation)
	}

	record := &model.WithdrawalRecordModel{
		CampaignId:         campaignId,
		Amount:             amount,
		Method:             method,
		DestinationAccount: destination,
		TxRef:              uuid.NewString(),
	}

	var availableTotal int64
	err := w.ledger.Mutate(campaignId, func(tx *gorm.DB, campaign *model.CampaignModel) error {
		if campaign.OwnerId != ownerId {
			return ErrNotOwner
		}

		if err := tx.Create(record).Error; err != nil {
			return err
		}
		if err := w.ledger.ApplyWithdrawal(tx, campaign, amount); err != nil {
			return err
		}

		availableTotal = campaign.AvailableTotal()
		return nil
	}, func() {
		if w.broadcaster == nil {
			return
		}
		w.broadcaster.Publish(campaignId, model.FundEventFundsWithdrawn, map[string]interface{}{
			"withdrawal_id":   record.Id,
			"amount":          record.Amount,
			"method":          record.Method,
			"available_total": availableTotal,
		})
	})
	if err != nil {
		return nil, err
	}

	return record, nil
}

// GetCampaignWithdrawals 分页获取项目提现记录
func (w *WithdrawalLogic) GetCampaignWithdrawals(campaignId int64, page, pageSize int) ([]model.WithdrawalRecordModel, int64, error) {
	var withdrawals []model.WithdrawalRecordModel
	var total int64

	if err := w.db.Model(&model.WithdrawalRecordModel{}).Where("campaign_id = ?", campaignId).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := w.db.Where("campaign_id = ?", campaignId).
		Offset(offset).
		Limit(pageSize).
		Order("created_at DESC").
		Find(&withdrawals).Error; err != nil {
		return nil, 0, err
	}

	return withdrawals, total, nil
}
