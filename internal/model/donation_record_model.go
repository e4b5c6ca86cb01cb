package model

import (
	"time"
)

// DonationRecordModel 捐赠记录，只追加不修改
type DonationRecordModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CampaignId int64  `json:"campaign_id" gorm:"not null;index"`
	Amount     int64  `json:"amount" gorm:"not null"`
	DonorName  string `json:"donor_name"`
	Anonymous  bool   `json:"anonymous" gorm:"default:false"`
	Message    string `json:"message" gorm:"type:text"`
	TxRef      string `json:"tx_ref" gorm:"uniqueIndex;not null"` // 支付网关交易号，幂等键
}

// TableName 自定义表名
func (DonationRecordModel) TableName() string {
	return "donation_record"
}
