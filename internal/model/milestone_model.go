package model

import (
	"time"
)

// MilestoneModel 项目里程碑
type MilestoneModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CampaignId  int64  `json:"campaign_id" gorm:"not null;index"`
	Title       string `json:"title" gorm:"not null"`
	Description string `json:"description" gorm:"type:text"`
	Amount      int64  `json:"amount" gorm:"not null"` // 审批通过后解锁的金额，创建后不可变

	// 状态，只能通过 logic.MilestoneLogic 的 CAS 更新修改
	Status MilestoneStatus `json:"status" gorm:"default:'locked'"`

	// 凭证信息，提交凭证后才有值
	ProofURL         string     `json:"proof_url"`
	ProofDescription string     `json:"proof_description" gorm:"type:text"`
	SubmittedAt      *time.Time `json:"submitted_at"`
	DecidedAt        *time.Time `json:"decided_at"`
}

// MilestoneStatus 里程碑状态
type MilestoneStatus string

const (
	MilestoneStatusLocked          MilestoneStatus = "locked"           // 未解锁
	MilestoneStatusPendingApproval MilestoneStatus = "pending_approval" // 待审批
	MilestoneStatusApproved        MilestoneStatus = "approved"         // 已通过（终态）
	MilestoneStatusRejected        MilestoneStatus = "rejected"         // 已驳回（可重新提交凭证）
)

// TableName 自定义表名
func (MilestoneModel) TableName() string {
	return "campaign_milestone"
}
