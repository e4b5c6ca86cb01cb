package handler

import (
	"net/http"
	"strconv"

	"github.com/blues/dfs/internal/logic"
	"github.com/gin-gonic/gin"
)

// MilestoneHandler 里程碑处理器
type MilestoneHandler struct {
	milestoneLogic *logic.MilestoneLogic
}

// NewMilestoneHandler 创建里程碑处理器
func NewMilestoneHandler(milestoneLogic *logic.MilestoneLogic) *MilestoneHandler {
	return &MilestoneHandler{
		milestoneLogic: milestoneLogic,
	}
}

// SubmitProof 发起人提交里程碑完成凭证
func (h *MilestoneHandler) SubmitProof(c *gin.Context) {
	milestoneId, ok := milestoneIdParam(c)
	if !ok {
		return
	}

	var req SubmitProofRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "请求参数不合法: "+err.Error())
		return
	}

	if err := h.milestoneLogic.SubmitProof(milestoneId, req.OwnerId, req.ProofURL, req.ProofDescription); err != nil {
		HandleError(c, err)
		return
	}

	milestone, err := h.milestoneLogic.GetMilestone(milestoneId)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "凭证提交成功", ToMilestoneResponse(milestone))
}

// Decide 管理员审批里程碑。
// 管理员身份校验由上游网关完成，这里信任收到的决定
func (h *MilestoneHandler) Decide(c *gin.Context) {
	milestoneId, ok := milestoneIdParam(c)
	if !ok {
		return
	}

	var req DecideMilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "请求参数不合法: "+err.Error())
		return
	}

	if err := h.milestoneLogic.Decide(milestoneId, req.Outcome); err != nil {
		HandleError(c, err)
		return
	}

	milestone, err := h.milestoneLogic.GetMilestone(milestoneId)
	if err != nil {
		HandleError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "审批完成", ToMilestoneResponse(milestone))
}

// milestoneIdParam 解析路径中的里程碑ID
func milestoneIdParam(c *gin.Context) (int64, bool) {
	milestoneId, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的里程碑ID")
		return 0, false
	}
	return milestoneId, true
}
