package execpool

import (
	"container/list"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/samarth494/Capstone-sub000/model"
	"go.uber.org/zap"
)

// ErrQueueFull 等待队列已满, 调用方应向用户提示系统繁忙而不是执行失败
var ErrQueueFull = errors.New("execpool: waiting queue is full")

// Thunk 实际的沙箱执行闭包, 由 Pool 决定何时启动
type Thunk func(ctx context.Context) (*model.RunResult, error)

// Pool 沙箱执行许可池, 限制并发执行数并在积压超限时快速拒绝
type Pool struct {
	limit      int
	queueLimit int
	log        *zap.Logger

	mu      sync.Mutex
	running int
	waiting *list.List // FIFO, 元素类型 chan struct{}
}

func New(limit, queueLimit int, log *zap.Logger) *Pool {
	if limit <= 0 {
		limit = 5
	}
	if queueLimit <= 0 {
		queueLimit = 100
	}
	return &Pool{
		limit:      limit,
		queueLimit: queueLimit,
		log:        log,
		waiting:    list.New(),
	}
}

// Submit 按 FIFO 顺序调度 thunk 执行, 阻塞直到执行完成或被拒绝/取消.
// 运行中数量达到上限时排队, 等待数量达到上限时立即返回 ErrQueueFull.
func (p *Pool) Submit(ctx context.Context, thunk Thunk) (*model.RunResult, error) {
	p.mu.Lock()
	if p.running < p.limit {
		p.running++
		poolRunning.Inc()
		p.mu.Unlock()
	} else {
		if p.waiting.Len() >= p.queueLimit {
			p.mu.Unlock()
			poolRejectedTotal.Inc()
			p.log.Warn("execution rejected at capacity",
				zap.Int("queueLimit", p.queueLimit))
			return nil, ErrQueueFull
		}
		ready := make(chan struct{})
		elem := p.waiting.PushBack(ready)
		poolWaiting.Inc()
		p.mu.Unlock()

		select {
		case <-ready:
			// 许可已转移给本任务, running 计数由释放方保留
		case <-ctx.Done():
			p.mu.Lock()
			select {
			case <-ready:
				// 取消与授予竞争: 许可已到手, 必须归还
				p.mu.Unlock()
				p.release()
				return nil, ctx.Err()
			default:
			}
			p.waiting.Remove(elem)
			poolWaiting.Dec()
			p.mu.Unlock()
			return nil, ctx.Err()
		}
	}

	poolStartedTotal.Inc()
	p.log.Debug("execution started")

	res, err := p.run(ctx, thunk)
	p.release()

	poolCompletedTotal.Inc()
	if err != nil {
		return nil, err
	}
	return res, nil
}

// run 执行 thunk, panic 转为错误, 保证许可一定会被释放
func (p *Pool) run(ctx context.Context, thunk Thunk) (res *model.RunResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("execpool: job panicked: %v", r)
			p.log.Error("execution job panicked", zap.Any("panic", r))
		}
	}()
	return thunk(ctx)
}

// release 释放一个执行许可并唤醒队首等待者
func (p *Pool) release() {
	p.mu.Lock()
	if front := p.waiting.Front(); front != nil {
		p.waiting.Remove(front)
		poolWaiting.Dec()
		close(front.Value.(chan struct{}))
		p.mu.Unlock()
		return
	}
	p.running--
	poolRunning.Dec()
	idle := p.running == 0
	p.mu.Unlock()

	if idle {
		p.log.Debug("execution queue idle")
	}
}

// Running 当前执行中的任务数
func (p *Pool) Running() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Waiting 当前排队中的任务数
func (p *Pool) Waiting() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.waiting.Len()
}
