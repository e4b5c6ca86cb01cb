package logic

import (
	"github.com/blues/dfs/internal/model"
	"gorm.io/gorm"
)

// FundEventLogic 资金事件落库业务逻辑
type FundEventLogic struct {
	db *gorm.DB
}

// NewFundEventLogic 创建资金事件业务逻辑
func NewFundEventLogic(db *gorm.DB) *FundEventLogic {
	return &FundEventLogic{db: db}
}

// CreateFundEvent 保存资金事件
func (f *FundEventLogic) CreateFundEvent(event *model.FundEventModel) error {
	return f.db.Create(event).Error
}

// GetCampaignEvents 分页获取项目资金事件
func (f *FundEventLogic) GetCampaignEvents(campaignId int64, page, pageSize int) ([]model.FundEventModel, int64, error) {
	var events []model.FundEventModel
	var total int64

	if err := f.db.Model(&model.FundEventModel{}).Where("campaign_id = ?", campaignId).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := f.db.Where("campaign_id = ?", campaignId).
		Offset(offset).
		Limit(pageSize).
		Order("created_at DESC").
		Find(&events).Error; err != nil {
		return nil, 0, err
	}

	return events, total, nil
}
