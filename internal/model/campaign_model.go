package model

import (
	"time"
)

// CampaignModel 募捐项目模型
type CampaignModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 基本信息
	Title       string `json:"title" gorm:"not null" binding:"required"`
	Description string `json:"description" gorm:"type:text"`
	ImageURL    string `json:"image_url"`
	Category    string `json:"category"`

	// 募捐信息
	TargetAmount int64 `json:"target_amount" gorm:"not null" binding:"required,min=0"`
	MinDonation  int64 `json:"min_donation" gorm:"default:0"` // 单笔最低捐赠金额，0表示使用平台默认值

	// 资金账本，只能通过 logic.LedgerLogic 修改
	RaisedTotal    int64 `json:"raised_total" gorm:"not null;default:0"`    // 已筹总额
	ReleasedTotal  int64 `json:"released_total" gorm:"not null;default:0"`  // 已解锁总额
	WithdrawnTotal int64 `json:"withdrawn_total" gorm:"not null;default:0"` // 已提现总额

	// 状态
	Status CampaignStatus `json:"status" gorm:"default:'active'"`

	// 发起人信息
	OwnerId   string `json:"owner_id" gorm:"not null;index"`
	OwnerName string `json:"owner_name"`
}

// AvailableTotal 可提现余额（派生值，不落库）
func (c *CampaignModel) AvailableTotal() int64 {
	return c.ReleasedTotal - c.WithdrawnTotal
}

// CampaignStatus 项目状态
type CampaignStatus string

const (
	CampaignStatusActive CampaignStatus = "active" // 募捐中
	CampaignStatusClosed CampaignStatus = "closed" // 已结束
)

// TableName 自定义表名
func (CampaignModel) TableName() string {
	return "campaign"
}
