package event

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/blues/dfs/internal/logger"
	"github.com/blues/dfs/internal/logic"
	"github.com/blues/dfs/internal/model"
	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
)

// 订阅者接收缓冲大小，写满说明消费方太慢，事件直接丢弃
const subscriberBuffer = 16

// WildcardCampaign 订阅所有项目的事件（大盘页使用）
const WildcardCampaign int64 = 0

// Subscriber 资金事件订阅者
type Subscriber struct {
	Id         uuid.UUID
	CampaignId int64
	Ch         chan model.FundEvent
}

// Hub 资金事件广播器。
// 推送是尽力而为的：只送给当前在线的订阅者，不做重放，
// 慢消费者的事件会被丢弃，客户端需要在重连后拉取全量快照。
// 账本变更的事件在事务提交后、项目锁释放前发布（logic.LedgerLogic.Mutate
// 的 afterCommit），因此同一项目的事件按账本变更顺序入队，
// 不同项目之间不保证顺序
type Hub struct {
	mu   sync.RWMutex
	subs map[int64]map[uuid.UUID]*Subscriber // campaignId -> subId -> subscriber

	eventLogic *logic.FundEventLogic
	pool       *ants.Pool // 落库协程池
	closed     bool
}

// NewHub 创建广播器。eventLogic 为 nil 时不落库
func NewHub(eventLogic *logic.FundEventLogic) (*Hub, error) {
	pool, err := ants.NewPool(8, ants.WithNonblocking(true))
	if err != nil {
		return nil, err
	}

	return &Hub{
		subs:       make(map[int64]map[uuid.UUID]*Subscriber),
		eventLogic: eventLogic,
		pool:       pool,
	}, nil
}

// Publish 广播一个资金事件，实现 logic.Broadcaster
func (h *Hub) Publish(campaignId int64, eventType model.FundEventType, payload map[string]interface{}) {
	ev := model.FundEvent{
		CampaignId: campaignId,
		EventType:  eventType,
		Payload:    payload,
		Timestamp:  time.Now(),
	}

	// 同步写入订阅者队列，保证同一项目内事件的相对顺序
	h.mu.RLock()
	if !h.closed {
		h.deliver(h.subs[campaignId], ev)
		h.deliver(h.subs[WildcardCampaign], ev)
	}
	h.mu.RUnlock()

	// 落库异步执行，失败只记日志，不影响账本状态
	if h.eventLogic != nil {
		if err := h.pool.Submit(func() { h.persist(ev) }); err != nil {
			logger.Warn("Event persist pool full, persisting inline: %v", err)
			h.persist(ev)
		}
	}
}

// deliver 把事件写入一组订阅者队列，写不进去就丢弃
func (h *Hub) deliver(subs map[uuid.UUID]*Subscriber, ev model.FundEvent) {
	for _, sub := range subs {
		select {
		case sub.Ch <- ev:
		default:
			logger.Warn("Subscriber %s too slow, dropped %s event for campaign %d", sub.Id, ev.EventType, ev.CampaignId)
		}
	}
}

// persist 保存事件记录
func (h *Hub) persist(ev model.FundEvent) {
	data, err := json.Marshal(ev.Payload)
	if err != nil {
		logger.Error("Failed to marshal fund event payload: %v", err)
		return
	}

	record := &model.FundEventModel{
		CampaignId: ev.CampaignId,
		EventType:  ev.EventType,
		Data:       string(data),
	}
	if err := h.eventLogic.CreateFundEvent(record); err != nil {
		logger.Error("Failed to save fund event for campaign %d: %v", ev.CampaignId, err)
	}
}

// Subscribe 订阅项目的资金事件，campaignId 为 WildcardCampaign 时订阅所有项目
func (h *Hub) Subscribe(campaignId int64) *Subscriber {
	sub := &Subscriber{
		Id:         uuid.New(),
		CampaignId: campaignId,
		Ch:         make(chan model.FundEvent, subscriberBuffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		close(sub.Ch)
		return sub
	}
	if h.subs[campaignId] == nil {
		h.subs[campaignId] = make(map[uuid.UUID]*Subscriber)
	}
	h.subs[campaignId][sub.Id] = sub
	return sub
}

// Unsubscribe 取消订阅并关闭接收通道
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.subs[sub.CampaignId]
	if !ok {
		return
	}
	if _, ok := subs[sub.Id]; !ok {
		return
	}
	delete(subs, sub.Id)
	if len(subs) == 0 {
		delete(h.subs, sub.CampaignId)
	}
	close(sub.Ch)
}

// Close 关闭广播器，所有订阅通道被关闭
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true

	for _, subs := range h.subs {
		for _, sub := range subs {
			close(sub.Ch)
		}
	}
	h.subs = make(map[int64]map[uuid.UUID]*Subscriber)
	h.pool.Release()
}
