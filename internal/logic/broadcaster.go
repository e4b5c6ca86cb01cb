package logic

import (
	"github.com/blues/dfs/internal/model"
)

// Broadcaster 资金事件广播接口，由 event.Hub 实现。
// 广播是尽力而为的，失败不影响账本状态的正确性
type Broadcaster interface {
	Publish(campaignId int64, eventType model.FundEventType, payload map[string]interface{})
}
