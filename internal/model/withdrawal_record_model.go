package model

import (
	"time"
)

// WithdrawalRecordModel 提现记录，只追加不修改
type WithdrawalRecordModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CampaignId         int64  `json:"campaign_id" gorm:"not null;index"`
	Amount             int64  `json:"amount" gorm:"not null"`
	Method             string `json:"method" gorm:"not null"` // bank_transfer, mobile_money 等
	DestinationAccount string `json:"destination_account" gorm:"not null"`
	TxRef              string `json:"tx_ref" gorm:"uniqueIndex;not null"`
}

// TableName 自定义表名
func (WithdrawalRecordModel) TableName() string {
	return "withdrawal_record"
}
