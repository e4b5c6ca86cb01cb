package model

import (
	"time"
)

// FundEventType 资金事件类型
type FundEventType string

const (
	FundEventDonationReceived FundEventType = "donation_received" // 收到捐赠
	FundEventMilestoneUpdated FundEventType = "milestone_updated" // 里程碑状态变更
	FundEventFundsWithdrawn   FundEventType = "funds_withdrawn"   // 资金提现
)

// FundEvent 推送给订阅者的资金事件
// 推送只是提示客户端刷新，不保证可靠送达，客户端重连后应拉取全量快照
type FundEvent struct {
	CampaignId int64                  `json:"campaign_id"`
	EventType  FundEventType          `json:"event_type"`
	Payload    map[string]interface{} `json:"payload"`
	Timestamp  time.Time              `json:"timestamp"`
}

// FundEventModel 资金事件落库记录
type FundEventModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CampaignId int64         `json:"campaign_id" gorm:"not null;index"`
	EventType  FundEventType `json:"event_type" gorm:"not null"`
	Data       string        `json:"data" gorm:"type:text"`
}

// TableName 自定义表名
func (FundEventModel) TableName() string {
	return "fund_event"
}
