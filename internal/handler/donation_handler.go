package handler

import (
	"net/http"
	"strconv"

	"github.com/blues/dfs/internal/logic"
	"github.com/blues/dfs/internal/model"
	"github.com/gin-gonic/gin"
)

// DonationHandler 捐赠处理器
type DonationHandler struct {
	donationLogic *logic.DonationLogic
}

// NewDonationHandler 创建捐赠处理器
func NewDonationHandler(donationLogic *logic.DonationLogic) *DonationHandler {
	return &DonationHandler{
		donationLogic: donationLogic,
	}
}

// ConfirmDonation 支付网关确认回调。
// 网关可能对同一笔交易重复回调，按交易号幂等处理
func (h *DonationHandler) ConfirmDonation(c *gin.Context) {
	var req ConfirmDonationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "请求参数不合法: "+err.Error())
		return
	}

	record := &model.DonationRecordModel{
		CampaignId: req.CampaignId,
		Amount:     req.Amount,
		DonorName:  req.DonorName,
		Anonymous:  req.Anonymous,
		Message:    req.Message,
		TxRef:      req.TxRef,
	}

	result, err := h.donationLogic.RecordDonation(record)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "捐赠确认成功", ToDonationRecordResponse(result))
}

// GetCampaignDonations 分页获取项目捐赠记录
func (h *DonationHandler) GetCampaignDonations(c *gin.Context) {
	campaignId, ok := campaignIdParam(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	records, total, err := h.donationLogic.GetCampaignDonations(campaignId, page, pageSize)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取捐赠记录成功", gin.H{
		"records":    ToDonationRecordResponseList(records),
		"pagination": paginationOf(page, pageSize, total),
	})
}
