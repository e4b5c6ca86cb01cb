package logic

import (
	"sync"
	"time"
)

// campaignLocker 按项目ID互斥。同一项目的账本变更串行执行，
// 不同项目互不阻塞。锁用容量为1的channel实现，以便带超时获取。
type campaignLocker struct {
	mu    sync.Mutex
	locks map[int64]chan struct{}
}

func newCampaignLocker() *campaignLocker {
	return &campaignLocker{
		locks: make(map[int64]chan struct{}),
	}
}

// get 获取项目对应的锁channel，不存在则创建
func (l *campaignLocker) get(campaignId int64) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	ch, ok := l.locks[campaignId]
	if !ok {
		ch = make(chan struct{}, 1)
		l.locks[campaignId] = ch
	}
	return ch
}

// Acquire 获取项目锁，超时返回 ErrLockTimeout。
// 成功时返回释放函数，调用方必须调用它
func (l *campaignLocker) Acquire(campaignId int64, timeout time.Duration) (func(), error) {
	ch := l.get(campaignId)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case ch <- struct{}{}:
		return func() { <-ch }, nil
	case <-timer.C:
		return nil, ErrLockTimeout
	}
}
