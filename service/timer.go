package service

import (
	"sync"
	"time"
)

// roomTimer 房间专属的可取消计时器. Cancel 幂等, 终态转换时必须且只会生效一次,
// 防止残留的 tick 打进已删除的房间.
type roomTimer struct {
	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
}

// newRoomTimer 启动一个周期计时器, tick 在独立 goroutine 中回调
func newRoomTimer(interval time.Duration, tick func()) *roomTimer {
	t := &roomTimer{
		ticker: time.NewTicker(interval),
		done:   make(chan struct{}),
	}
	go func() {
		for {
			select {
			case <-t.ticker.C:
				tick()
			case <-t.done:
				return
			}
		}
	}()
	return t
}

func (t *roomTimer) Cancel() {
	t.once.Do(func() {
		t.ticker.Stop()
		close(t.done)
	})
}
