package handler

import (
	"errors"
	"net/http"

	"github.com/blues/dfs/internal/logic"
	"github.com/gin-gonic/gin"
)

// SuccessResponse 成功响应
func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ErrorResponse 错误响应
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{
		Success: false,
		Message: message,
		Data:    nil,
	})
}

// HandleError 按错误类型映射HTTP状态码返回错误响应
func HandleError(c *gin.Context, err error) {
	ErrorResponse(c, statusFromError(err), err.Error())
}

// statusFromError 错误类型到HTTP状态码的映射
func statusFromError(err error) int {
	switch {
	case errors.Is(err, logic.ErrCampaignNotFound),
		errors.Is(err, logic.ErrMilestoneNotFound):
		return http.StatusNotFound
	case errors.Is(err, logic.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, logic.ErrNotOwner):
		return http.StatusForbidden
	case errors.Is(err, logic.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, logic.ErrInsufficientFunds),
		errors.Is(err, logic.ErrBelowMinimum):
		return http.StatusUnprocessableEntity
	case errors.Is(err, logic.ErrLockTimeout):
		// 可重试
		return http.StatusServiceUnavailable
	default:
		// 包括 ErrLedgerIntegrity：数据问题，需要人工排查
		return http.StatusInternalServerError
	}
}
