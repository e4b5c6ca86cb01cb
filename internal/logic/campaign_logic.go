package logic

import (
	"errors"
	"fmt"

	"github.com/blues/dfs/internal/model"
	"gorm.io/gorm"
)

// CampaignLogic 募捐项目业务逻辑
type CampaignLogic struct {
	db *gorm.DB
}

// NewCampaignLogic 创建募捐项目业务逻辑
func NewCampaignLogic(db *gorm.DB) *CampaignLogic {
	return &CampaignLogic{db: db}
}

// CreateCampaign 创建募捐项目及其里程碑。
// 账本总额全部从0开始；里程碑初始状态为 locked，
// 金额之和不能超过项目目标金额
func (c *CampaignLogic) CreateCampaign(campaign *model.CampaignModel, milestones []model.MilestoneModel) error {
	if err := c.validateCampaign(campaign); err != nil {
		return err
	}

	var milestoneSum int64
	for i := range milestones {
		if milestones[i].Title == "" {
			return fmt.Errorf("%w: 里程碑标题不能为空", ErrValidation)
		}
		if milestones[i].Amount <= 0 {
			return fmt.Errorf("%w: 里程碑金额必须大于0", ErrValidation)
		}
		milestoneSum += milestones[i].Amount
	}
	if milestoneSum > campaign.TargetAmount {
		return fmt.Errorf("%w: 里程碑金额之和不能超过目标金额", ErrValidation)
	}

	// 账本初始值
	campaign.RaisedTotal = 0
	campaign.ReleasedTotal = 0
	campaign.WithdrawnTotal = 0
	if campaign.Status == "" {
		campaign.Status = model.CampaignStatusActive
	}

	return c.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(campaign).Error; err != nil {
			return err
		}
		for i := range milestones {
			milestones[i].CampaignId = campaign.Id
			milestones[i].Status = model.MilestoneStatusLocked
		}
		if len(milestones) > 0 {
			if err := tx.Create(&milestones).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// GetCampaign 获取项目详情
func (c *CampaignLogic) GetCampaign(id int64) (*model.CampaignModel, error) {
	var campaign model.CampaignModel
	if err := c.db.First(&campaign, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCampaignNotFound
		}
		return nil, err
	}
	return &campaign, nil
}

// GetCampaigns 分页获取项目列表
func (c *CampaignLogic) GetCampaigns(page, pageSize int) ([]model.CampaignModel, int64, error) {
	var campaigns []model.CampaignModel
	var total int64

	if err := c.db.Model(&model.CampaignModel{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := c.db.Offset(offset).
		Limit(pageSize).
		Order("created_at DESC").
		Find(&campaigns).Error; err != nil {
		return nil, 0, err
	}

	return campaigns, total, nil
}

// GetCampaignMilestones 获取项目里程碑列表
func (c *CampaignLogic) GetCampaignMilestones(campaignId int64) ([]model.MilestoneModel, error) {
	var milestones []model.MilestoneModel
	if err := c.db.Where("campaign_id = ?", campaignId).
		Order("id ASC").
		Find(&milestones).Error; err != nil {
		return nil, err
	}
	return milestones, nil
}

// validateCampaign 验证项目数据
func (c *CampaignLogic) validateCampaign(campaign *model.CampaignModel) error {
	if campaign.Title == "" {
		return fmt.Errorf("%w: 项目标题不能为空", ErrValidation)
	}
	if campaign.TargetAmount <= 0 {
		return fmt.Errorf("%w: 目标金额必须大于0", ErrValidation)
	}
	if campaign.OwnerId == "" {
		return fmt.Errorf("%w: 发起人不能为空", ErrValidation)
	}
	if campaign.MinDonation < 0 {
		return fmt.Errorf("%w: 最低捐赠金额不能为负数", ErrValidation)
	}
	return nil
}
