package handler

import (
	"net/http"
	"strconv"

	"github.com/blues/dfs/internal/logic"
	"github.com/blues/dfs/internal/model"
	"github.com/gin-gonic/gin"
)

// CampaignHandler 募捐项目处理器
type CampaignHandler struct {
	campaignLogic  *logic.CampaignLogic
	ledgerLogic    *logic.LedgerLogic
	fundEventLogic *logic.FundEventLogic
}

// NewCampaignHandler 创建募捐项目处理器
func NewCampaignHandler(campaignLogic *logic.CampaignLogic, ledgerLogic *logic.LedgerLogic, fundEventLogic *logic.FundEventLogic) *CampaignHandler {
	return &CampaignHandler{
		campaignLogic:  campaignLogic,
		ledgerLogic:    ledgerLogic,
		fundEventLogic: fundEventLogic,
	}
}

// CreateCampaign 创建募捐项目
func (h *CampaignHandler) CreateCampaign(c *gin.Context) {
	var req CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "请求参数不合法: "+err.Error())
		return
	}

	campaign := &model.CampaignModel{
		Title:        req.Title,
		Description:  req.Description,
		ImageURL:     req.ImageURL,
		Category:     req.Category,
		TargetAmount: req.TargetAmount,
		MinDonation:  req.MinDonation,
		OwnerId:      req.OwnerId,
		OwnerName:    req.OwnerName,
	}

	milestones := make([]model.MilestoneModel, 0, len(req.Milestones))
	for _, m := range req.Milestones {
		milestones = append(milestones, model.MilestoneModel{
			Title:       m.Title,
			Description: m.Description,
			Amount:      m.Amount,
		})
	}

	if err := h.campaignLogic.CreateCampaign(campaign, milestones); err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "创建募捐项目成功", ToCampaignResponse(campaign))
}

// GetCampaigns 分页获取项目列表
func (h *CampaignHandler) GetCampaigns(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	campaigns, total, err := h.campaignLogic.GetCampaigns(page, pageSize)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取项目列表成功", gin.H{
		"campaigns":  ToCampaignResponseList(campaigns),
		"pagination": paginationOf(page, pageSize, total),
	})
}

// GetCampaign 获取项目详情（含账本快照）
func (h *CampaignHandler) GetCampaign(c *gin.Context) {
	campaignId, ok := campaignIdParam(c)
	if !ok {
		return
	}

	campaign, err := h.campaignLogic.GetCampaign(campaignId)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取项目详情成功", ToCampaignResponse(campaign))
}

// GetCampaignLedger 获取账本快照
func (h *CampaignHandler) GetCampaignLedger(c *gin.Context) {
	campaignId, ok := campaignIdParam(c)
	if !ok {
		return
	}

	snapshot, err := h.ledgerLogic.Snapshot(campaignId)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取账本快照成功", ToLedgerResponse(snapshot))
}

// GetCampaignMilestones 获取项目里程碑列表
func (h *CampaignHandler) GetCampaignMilestones(c *gin.Context) {
	campaignId, ok := campaignIdParam(c)
	if !ok {
		return
	}

	milestones, err := h.campaignLogic.GetCampaignMilestones(campaignId)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取里程碑列表成功", ToMilestoneResponseList(milestones))
}

// GetCampaignEvents 分页获取项目资金事件
func (h *CampaignHandler) GetCampaignEvents(c *gin.Context) {
	campaignId, ok := campaignIdParam(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	events, total, err := h.fundEventLogic.GetCampaignEvents(campaignId, page, pageSize)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取资金事件成功", gin.H{
		"events":     ToFundEventResponseList(events),
		"pagination": paginationOf(page, pageSize, total),
	})
}

// campaignIdParam 解析路径中的项目ID
func campaignIdParam(c *gin.Context) (int64, bool) {
	campaignId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的项目ID")
		return 0, false
	}
	return campaignId, true
}

// paginationOf 构造分页信息
func paginationOf(page, pageSize int, total int64) Pagination {
	return Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
}
