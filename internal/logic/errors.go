package logic

import (
	"errors"
)

// 资金账本错误类型。handler 层按错误类型映射HTTP状态码，
// 错误信息直接展示给调用方。
var (
	// ErrValidation 入参非法，未产生任何状态变更
	ErrValidation = errors.New("参数不合法")

	// ErrInvalidState 当前状态不允许该操作
	ErrInvalidState = errors.New("当前状态不允许该操作")

	// ErrInsufficientFunds 提现金额超过可提现余额
	ErrInsufficientFunds = errors.New("可提现余额不足")

	// ErrBelowMinimum 提现金额低于最低限额
	ErrBelowMinimum = errors.New("提现金额低于最低限额")

	// ErrNotOwner 调用方不是项目发起人
	ErrNotOwner = errors.New("只有项目发起人才能执行该操作")

	// ErrLockTimeout 获取项目账本锁超时，调用方可重试
	ErrLockTimeout = errors.New("项目账本繁忙，请稍后重试")

	// ErrLedgerIntegrity 账本不变量将被破坏，操作被拒绝。
	// 该错误说明数据有问题（例如解锁金额将超过已筹金额），需要人工排查，不做静默修正
	ErrLedgerIntegrity = errors.New("账本数据异常：已解锁金额不能超过已筹金额")

	// ErrCampaignNotFound 项目不存在
	ErrCampaignNotFound = errors.New("募捐项目不存在")

	// ErrMilestoneNotFound 里程碑不存在
	ErrMilestoneNotFound = errors.New("里程碑不存在")
)
