// Package challenge 实现任务中嵌入的两个解谜小游戏
//
//   - BinarySearch: 猜数字，根据"高/低"提示用二分查找定位隐藏目标
//   - Sorting: 每次交换两个位置，把记录按数值升序排列
//
// 两个挑战都是单线程状态机，由 scheduler.Scheduler 驱动延迟通知。
// 只有 Solved 结果会通过 Notifier 通知任务导演；Exhausted 在挑战内部自动重置。
package challenge

import (
	"errors"
	"time"

	"github.com/decker502/algoquest/pkg/scheduler"
)

// 可恢复的输入错误：只显示反馈，不修改状态，不消耗次数
var (
	// ErrInvalidInput 猜测值不是数字或超出取值范围
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidPosition 交换位置不是数字或超出 [1, M]
	ErrInvalidPosition = errors.New("invalid position")
	// ErrIdenticalPositions 两个交换位置相同
	ErrIdenticalPositions = errors.New("identical positions")
	// ErrChallengeInactive 挑战正在结算/重置或已关闭，输入被忽略
	ErrChallengeInactive = errors.New("challenge is not accepting input")
	// ErrNoActiveChallenge 当前没有对应类型的挑战
	ErrNoActiveChallenge = errors.New("no active challenge")
)

// ErrInvariantViolation 逻辑或配置错误（目标不在集合中、重洗次数超限等）
// 这是唯一的致命错误，不应被静默吞掉
var ErrInvariantViolation = errors.New("challenge invariant violation")

// Kind 挑战类型
type Kind string

const (
	KindBinarySearch Kind = "binary-search"
	KindSorting      Kind = "sorting"
)

// Valid 检查挑战类型是否已知
func (k Kind) Valid() bool {
	return k == KindBinarySearch || k == KindSorting
}

// Status 挑战生命周期状态
type Status int

const (
	// StatusActive 接受玩家输入
	StatusActive Status = iota
	// StatusResolving 已解出，等待显示延迟后通知导演
	StatusResolving
	// StatusResetting 次数耗尽，等待显示延迟后重置
	StatusResetting
	// StatusSolved Solved 已通知导演
	StatusSolved
	// StatusClosed 已被导演丢弃
	StatusClosed
)

// String 返回 Status 的字符串表示
func (s Status) String() string {
	switch s {
	case StatusActive:
		return "Active"
	case StatusResolving:
		return "Resolving"
	case StatusResetting:
		return "Resetting"
	case StatusSolved:
		return "Solved"
	case StatusClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// OutcomeKind 单次校验的结果类别
type OutcomeKind int

const (
	OutcomePending OutcomeKind = iota
	OutcomeSolved
	OutcomeExhausted
)

// String 返回 OutcomeKind 的字符串表示
func (k OutcomeKind) String() string {
	switch k {
	case OutcomePending:
		return "Pending"
	case OutcomeSolved:
		return "Solved"
	case OutcomeExhausted:
		return "Exhausted"
	default:
		return "Unknown"
	}
}

// Outcome 挑战结果
// Taken 为解出时使用的猜测/交换次数，Exhausted 时为预算值
type Outcome struct {
	Challenge Kind
	Kind      OutcomeKind
	Taken     int
}

// Verdict 单次有效输入的判定
type Verdict int

const (
	VerdictNone Verdict = iota
	VerdictTooLow
	VerdictTooHigh
	VerdictCorrect
	VerdictSwapped
)

// String 返回 Verdict 的字符串表示
func (v Verdict) String() string {
	switch v {
	case VerdictNone:
		return "None"
	case VerdictTooLow:
		return "TooLow"
	case VerdictTooHigh:
		return "TooHigh"
	case VerdictCorrect:
		return "Solved"
	case VerdictSwapped:
		return "Swapped"
	default:
		return "Unknown"
	}
}

// Result 一次 SubmitGuess/SubmitSwap 的返回值
type Result struct {
	Verdict  Verdict
	Outcome  Outcome
	Feedback string
	Used     int
	Budget   int
}

// Notifier 接收 Solved 结果（在显示延迟结束后调用）
type Notifier func(Outcome)

// Rand 挑战使用的随机源，*math/rand/v2.Rand 满足此接口
// 测试可以注入固定序列
type Rand interface {
	IntN(n int) int
	Shuffle(n int, swap func(i, j int))
}

// Challenge 导演持有的挑战实例的公共视图
type Challenge interface {
	Kind() Kind
	Status() Status
	Feedback() string
	Progress() (used, budget int)
	Reset() error
	Close()
}

// base 两个挑战共享的生命周期与延迟通知逻辑
type base struct {
	kind     Kind
	sched    *scheduler.Scheduler
	notify   Notifier
	status   Status
	feedback string
	pending  scheduler.Handle
}

// Kind 返回挑战类型
func (b *base) Kind() Kind {
	return b.kind
}

// Status 返回当前生命周期状态
func (b *base) Status() Status {
	return b.status
}

// Feedback 返回最近一次显示给玩家的反馈
func (b *base) Feedback() string {
	return b.feedback
}

// Close 丢弃挑战：取消所有待执行的回调，之后的输入全部忽略
func (b *base) Close() {
	b.cancelPending()
	b.status = StatusClosed
}

func (b *base) accepting() bool {
	return b.status == StatusActive
}

func (b *base) cancelPending() {
	if b.pending != 0 {
		b.sched.Cancel(b.pending)
		b.pending = 0
	}
}

// scheduleSolved 显示延迟后把 Solved 通知给导演
func (b *base) scheduleSolved(delay time.Duration, outcome Outcome) {
	b.cancelPending()
	b.status = StatusResolving
	b.pending = b.sched.After(delay, func() {
		b.pending = 0
		if b.status != StatusResolving {
			return
		}
		b.status = StatusSolved
		if b.notify != nil {
			b.notify(outcome)
		}
	})
}

// scheduleReset 显示延迟后重新生成隐藏状态
// reset 返回错误说明配置有误，直接 panic 让开发者看到
func (b *base) scheduleReset(delay time.Duration, reset func() error) {
	b.cancelPending()
	b.status = StatusResetting
	b.pending = b.sched.After(delay, func() {
		b.pending = 0
		if b.status != StatusResetting {
			return
		}
		if err := reset(); err != nil {
			panic(err)
		}
	})
}
