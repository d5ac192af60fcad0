// Package scheduler 提供单线程、按帧驱动的定时回调队列
//
// 所有回调都在调用 Advance/Update 的线程上同步执行，不创建 goroutine。
// 时间只由 Advance 推进，因此测试可以直接把 Scheduler 当作假时钟使用。
package scheduler

import (
	"container/heap"
	"time"
)

// Handle 定时任务句柄，用于取消
// 0 是无效句柄，Cancel(0) 总是返回 false
type Handle uint64

// timer 队列中的单个定时任务
type timer struct {
	handle   Handle
	deadline time.Duration
	seq      uint64 // 插入序号，同一截止时间按 FIFO 执行
	interval time.Duration
	fn       func()
	repeat   func() bool
	index    int // 在堆中的位置，由 timerQueue 维护
}

// timerQueue 按 (deadline, seq) 排序的最小堆
type timerQueue []*timer

func (q timerQueue) Len() int { return len(q) }

func (q timerQueue) Less(i, j int) bool {
	if q[i].deadline == q[j].deadline {
		return q[i].seq < q[j].seq
	}
	return q[i].deadline < q[j].deadline
}

func (q timerQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *timerQueue) Push(x any) {
	t := x.(*timer)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *timerQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}

// Scheduler 定时回调调度器
//
// 职责：
//   - 维护 (deadline, callback) 优先队列
//   - 每帧由宿主调用 Update/Advance 推进虚拟时间并执行到期回调
//   - 支持通过 Handle 取消尚未执行的回调
type Scheduler struct {
	now     time.Duration
	queue   timerQueue
	byID    map[Handle]*timer
	nextID  uint64
	nextSeq uint64
}

// New 创建一个虚拟时间为 0 的调度器
func New() *Scheduler {
	return &Scheduler{
		queue: make(timerQueue, 0),
		byID:  make(map[Handle]*timer),
	}
}

// Now 返回当前虚拟时间（自创建以来累计推进的时长）
func (s *Scheduler) Now() time.Duration {
	return s.now
}

// Pending 返回尚未执行的定时任务数量
func (s *Scheduler) Pending() int {
	return len(s.queue)
}

// After 注册一次性回调，delay 之后执行
// delay <= 0 时在下一次 Advance 中执行（不会立即同步执行）
func (s *Scheduler) After(delay time.Duration, fn func()) Handle {
	if delay < 0 {
		delay = 0
	}
	return s.push(&timer{deadline: s.now + delay, fn: fn})
}

// Every 注册重复回调，每隔 interval 执行一次，直到 fn 返回 false 或被取消
// 落后的 tick 会在同一次 Advance 中补齐（deadline 累加 interval）
// interval 必须大于 0，否则按 1ns 处理以避免死循环
func (s *Scheduler) Every(interval time.Duration, fn func() bool) Handle {
	if interval <= 0 {
		interval = time.Nanosecond
	}
	return s.push(&timer{deadline: s.now + interval, interval: interval, repeat: fn})
}

// Cancel 取消尚未执行的回调
// 返回 true 表示成功取消；句柄无效或回调已执行返回 false
func (s *Scheduler) Cancel(h Handle) bool {
	t, ok := s.byID[h]
	if !ok {
		return false
	}
	delete(s.byID, h)
	if t.index >= 0 {
		heap.Remove(&s.queue, t.index)
	}
	return true
}

// Active 检查句柄对应的回调是否仍在等待执行
func (s *Scheduler) Active(h Handle) bool {
	_, ok := s.byID[h]
	return ok
}

// Update 按 ebiten 的帧时间（秒）推进调度器
func (s *Scheduler) Update(dt float64) int {
	return s.Advance(time.Duration(dt * float64(time.Second)))
}

// Advance 推进虚拟时间并按截止时间顺序执行所有到期回调
// 回调中新注册且已到期的任务也会在本次调用中执行
// 返回本次执行的回调数量
func (s *Scheduler) Advance(d time.Duration) int {
	if d > 0 {
		s.now += d
	}

	fired := 0
	for len(s.queue) > 0 {
		next := s.queue[0]
		if next.deadline > s.now {
			break
		}
		heap.Pop(&s.queue)

		if next.repeat != nil {
			// 先重新入队再执行，回调内部可以安全地 Cancel 自己
			next.deadline += next.interval
			next.seq = s.seq()
			heap.Push(&s.queue, next)
			fired++
			if !next.repeat() {
				s.Cancel(next.handle)
			}
			continue
		}

		delete(s.byID, next.handle)
		fired++
		next.fn()
	}
	return fired
}

// Clear 取消所有尚未执行的回调（不推进时间）
func (s *Scheduler) Clear() {
	for _, t := range s.queue {
		t.index = -1
	}
	s.queue = s.queue[:0]
	s.byID = make(map[Handle]*timer)
}

func (s *Scheduler) push(t *timer) Handle {
	s.nextID++
	t.handle = Handle(s.nextID)
	t.seq = s.seq()
	s.byID[t.handle] = t
	heap.Push(&s.queue, t)
	return t.handle
}

func (s *Scheduler) seq() uint64 {
	s.nextSeq++
	return s.nextSeq
}
