package handler

import (
	"net/http"
	"strconv"

	"github.com/blues/dfs/internal/logic"
	"github.com/gin-gonic/gin"
)

// WithdrawalHandler 提现处理器
type WithdrawalHandler struct {
	withdrawalLogic *logic.WithdrawalLogic
}

// NewWithdrawalHandler 创建提现处理器
func NewWithdrawalHandler(withdrawalLogic *logic.WithdrawalLogic) *WithdrawalHandler {
	return &WithdrawalHandler{
		withdrawalLogic: withdrawalLogic,
	}
}

// RequestWithdrawal 发起人申请提现
func (h *WithdrawalHandler) RequestWithdrawal(c *gin.Context) {
	campaignId, ok := campaignIdParam(c)
	if !ok {
		return
	}

	var req RequestWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "请求参数不合法: "+err.Error())
		return
	}

	record, err := h.withdrawalLogic.RequestWithdrawal(campaignId, req.Amount, req.Method, req.DestinationAccount, req.OwnerId)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "提现申请成功", ToWithdrawalRecordResponse(record))
}

// GetCampaignWithdrawals 分页获取项目提现记录
func (h *WithdrawalHandler) GetCampaignWithdrawals(c *gin.Context) {
	campaignId, ok := campaignIdParam(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	records, total, err := h.withdrawalLogic.GetCampaignWithdrawals(campaignId, page, pageSize)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "获取提现记录成功", gin.H{
		"records":    ToWithdrawalRecordResponseList(records),
		"pagination": paginationOf(page, pageSize, total),
	})
}
