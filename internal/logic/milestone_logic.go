package logic

import (
	"errors"
	"fmt"
	"time"

	"github.com/blues/dfs/internal/model"
	"gorm.io/gorm"
)

// MilestoneLogic 里程碑状态机。
// 状态只能前进：locked → pending_approval → approved/rejected，
// rejected 可以重新提交凭证回到 pending_approval，approved 是终态。
// 状态变更用带条件的 UPDATE 做 CAS，凭证提交和审批并发时只有一个生效
type MilestoneLogic struct {
	db          *gorm.DB
	ledger      *LedgerLogic
	broadcaster Broadcaster
}

// NewMilestoneLogic 创建里程碑业务逻辑
func NewMilestoneLogic(db *gorm.DB, ledger *LedgerLogic, broadcaster Broadcaster) *MilestoneLogic {
	return &MilestoneLogic{
		db:          db,
		ledger:      ledger,
		broadcaster: broadcaster,
	}
}

// SubmitProof 项目发起人提交里程碑完成凭证。
// 仅 locked 和 rejected 状态可提交，提交后进入 pending_approval 等待审批
func (m *MilestoneLogic) SubmitProof(milestoneId int64, ownerId, proofURL, proofDescription string) error {
	if proofURL == "" {
		return fmt.Errorf("%w: 凭证地址不能为空", ErrValidation)
	}

	milestone, err := m.GetMilestone(milestoneId)
	if err != nil {
		return err
	}

	var campaign model.CampaignModel
	if err := m.db.First(&campaign, milestone.CampaignId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCampaignNotFound
		}
		return err
	}
	if campaign.OwnerId != ownerId {
		return ErrNotOwner
	}

	now := time.Now()
	res := m.db.Model(&model.MilestoneModel{}).
		Where("id = ? AND status IN ?", milestoneId,
			[]model.MilestoneStatus{model.MilestoneStatusLocked, model.MilestoneStatusRejected}).
		Updates(map[string]interface{}{
			"status":            model.MilestoneStatusPendingApproval,
			"proof_url":         proofURL,
			"proof_description": proofDescription,
			"submitted_at":      &now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// 已在审批中或已通过
		return ErrInvalidState
	}

	m.publish(milestone, model.MilestoneStatusPendingApproval, nil)
	return nil
}

// Decide 管理员审批里程碑，outcome 为 approved 或 rejected。
// 调用方负责管理员权限校验，这里信任收到的决定。
// 仅 pending_approval 状态可审批；审批通过会在同一个项目锁和事务内
// 解锁对应金额，解锁失败（如超过已筹金额）时审批整体回滚，
// 里程碑留在 pending_approval 状态
func (m *MilestoneLogic) Decide(milestoneId int64, outcome string) error {
	milestone, err := m.GetMilestone(milestoneId)
	if err != nil {
		return err
	}

	switch outcome {
	case string(model.MilestoneStatusApproved):
		return m.approve(milestone)
	case string(model.MilestoneStatusRejected):
		return m.reject(milestone)
	default:
		return fmt.Errorf("%w: 审批结果必须是 approved 或 rejected", ErrValidation)
	}
}

// GetMilestone 获取里程碑
func (m *MilestoneLogic) GetMilestone(id int64) (*model.MilestoneModel, error) {
	var milestone model.MilestoneModel
	if err := m.db.First(&milestone, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMilestoneNotFound
		}
		return nil, err
	}
	return &milestone, nil
}

// approve 审批通过并解锁资金
func (m *MilestoneLogic) approve(milestone *model.MilestoneModel) error {
	var releasedTotal int64

	err := m.ledger.Mutate(milestone.CampaignId, func(tx *gorm.DB, campaign *model.CampaignModel) error {
		now := time.Now()
		res := tx.Model(&model.MilestoneModel{}).
			Where("id = ? AND status = ?", milestone.Id, model.MilestoneStatusPendingApproval).
			Updates(map[string]interface{}{
				"status":     model.MilestoneStatusApproved,
				"decided_at": &now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInvalidState
		}

		if err := m.ledger.ApplyMilestoneRelease(tx, campaign, milestone.Amount); err != nil {
			return err
		}
		releasedTotal = campaign.ReleasedTotal
		return nil
	}, func() {
		m.publish(milestone, model.MilestoneStatusApproved, map[string]interface{}{
			"released_amount": milestone.Amount,
			"released_total":  releasedTotal,
		})
	})
	return err
}

// reject 驳回，发起人可补充凭证后重新提交
func (m *MilestoneLogic) reject(milestone *model.MilestoneModel) error {
	now := time.Now()
	res := m.db.Model(&model.MilestoneModel{}).
		Where("id = ? AND status = ?", milestone.Id, model.MilestoneStatusPendingApproval).
		Updates(map[string]interface{}{
			"status":     model.MilestoneStatusRejected,
			"decided_at": &now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInvalidState
	}

	m.publish(milestone, model.MilestoneStatusRejected, nil)
	return nil
}

// publish 广播里程碑状态变更事件
func (m *MilestoneLogic) publish(milestone *model.MilestoneModel, status model.MilestoneStatus, extra map[string]interface{}) {
	if m.broadcaster == nil {
		return
	}

	payload := map[string]interface{}{
		"milestone_id": milestone.Id,
		"title":        milestone.Title,
		"amount":       milestone.Amount,
		"status":       string(status),
	}
	for k, v := range extra {
		payload[k] = v
	}

	m.broadcaster.Publish(milestone.CampaignId, model.FundEventMilestoneUpdated, payload)
}
