package challenge

import (
	"fmt"
	"log"
	"math/bits"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/decker502/algoquest/pkg/scheduler"
)

// BinarySearch 默认参数（与原版任务窗口一致）
const (
	DefaultBinarySearchSize       = 50
	DefaultBinarySearchSolveDelay = 2500 * time.Millisecond
	DefaultBinarySearchResetDelay = 2500 * time.Millisecond
)

// BinarySearchConfig 猜数字挑战配置
type BinarySearchConfig struct {
	Size       int           // 取值范围 1..Size
	SolveDelay time.Duration // 解出后通知导演前的显示延迟
	ResetDelay time.Duration // 次数耗尽后重置前的显示延迟
}

// DefaultBinarySearchConfig 返回默认配置
func DefaultBinarySearchConfig() BinarySearchConfig {
	return BinarySearchConfig{
		Size:       DefaultBinarySearchSize,
		SolveDelay: DefaultBinarySearchSolveDelay,
		ResetDelay: DefaultBinarySearchResetDelay,
	}
}

// AttemptBudget 计算 size 个有序值的猜测预算
//
// 返回 ⌈log2(size)⌉，默认的 50 个值为 6 次；只有 1 个值时为 1 次。
// size 为 2 的幂时每次折半的策略可能差一次，挑战会耗尽并重置。
func AttemptBudget(size int) int {
	switch {
	case size < 1:
		return 0
	case size == 1:
		return 1
	}
	return bits.Len(uint(size - 1))
}

// BinarySearch 猜数字挑战
//
// 状态机：Active →(命中) Resolving →(延迟) Solved
//
//	Active →(次数耗尽) Resetting →(延迟) Active（新目标，次数清零）
type BinarySearch struct {
	base
	cfg    BinarySearchConfig
	rnd    Rand
	values []int
	target int
	used   int
	budget int
}

// NewBinarySearch 创建猜数字挑战
//
// 参数：
//   - cfg: 挑战配置，Size < 1 视为配置错误
//   - sched: 驱动延迟通知的调度器
//   - rnd: 随机源（测试时注入固定序列）
//   - notify: Solved 通知回调，可为 nil
//
// 返回：
//   - *BinarySearch: 挑战实例
//   - error: ErrInvariantViolation（配置错误）
func NewBinarySearch(cfg BinarySearchConfig, sched *scheduler.Scheduler, rnd Rand, notify Notifier) (*BinarySearch, error) {
	if cfg.Size < 1 {
		return nil, fmt.Errorf("%w: binary search size must be at least 1, got %d", ErrInvariantViolation, cfg.Size)
	}

	values := make([]int, cfg.Size)
	for i := range values {
		values[i] = i + 1
	}

	c := &BinarySearch{
		base: base{
			kind:   KindBinarySearch,
			sched:  sched,
			notify: notify,
		},
		cfg:    cfg,
		rnd:    rnd,
		values: values,
		budget: AttemptBudget(cfg.Size),
	}
	if err := c.regenerate(); err != nil {
		return nil, err
	}

	log.Printf("[BinarySearch] Created: size=%d, maxTries=%d", cfg.Size, c.budget)
	return c, nil
}

// SubmitGuess 校验一次猜测
//
// 非数字或超出范围返回 ErrInvalidInput，不消耗次数；
// 结算/重置期间及关闭后返回 ErrChallengeInactive。
func (c *BinarySearch) SubmitGuess(input string) (Result, error) {
	if !c.accepting() {
		return c.result(VerdictNone, OutcomePending), ErrChallengeInactive
	}

	guess, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		c.feedback = "⚠️ Please enter a valid number!"
		return c.result(VerdictNone, OutcomePending), fmt.Errorf("%w: %q is not a number", ErrInvalidInput, input)
	}
	if guess < c.values[0] || guess > c.values[len(c.values)-1] {
		c.feedback = fmt.Sprintf("⚠️ Pick a shrine between %d and %d!", c.values[0], c.values[len(c.values)-1])
		return c.result(VerdictNone, OutcomePending), fmt.Errorf("%w: %d is outside [%d, %d]",
			ErrInvalidInput, guess, c.values[0], c.values[len(c.values)-1])
	}

	c.used++

	switch {
	case guess < c.target:
		c.feedback = fmt.Sprintf("🔺 Seek higher than %d...", guess)
		return c.afterMiss(VerdictTooLow), nil
	case guess > c.target:
		c.feedback = fmt.Sprintf("🔻 Too far. Try lower than %d...", guess)
		return c.afterMiss(VerdictTooHigh), nil
	}

	c.feedback = fmt.Sprintf("🎯 You found the hidden shrine in %d tries!", c.used)
	outcome := Outcome{Challenge: c.kind, Kind: OutcomeSolved, Taken: c.used}
	c.scheduleSolved(c.cfg.SolveDelay, outcome)
	log.Printf("[BinarySearch] Solved in %d/%d tries, notifying in %v", c.used, c.budget, c.cfg.SolveDelay)
	return c.result(VerdictCorrect, OutcomeSolved), nil
}

// afterMiss 未命中后检查次数是否耗尽
func (c *BinarySearch) afterMiss(v Verdict) Result {
	if c.used < c.budget {
		return c.result(v, OutcomePending)
	}

	c.feedback = "❌ The shrine remains hidden... You must try again using your logic."
	c.scheduleReset(c.cfg.ResetDelay, c.regenerate)
	log.Printf("[BinarySearch] Exhausted after %d tries, resetting in %v", c.used, c.cfg.ResetDelay)
	return c.result(v, OutcomeExhausted)
}

// Reset 立即重置：取消待执行的通知，抽取新目标，次数清零
func (c *BinarySearch) Reset() error {
	if c.status == StatusClosed {
		return ErrChallengeInactive
	}
	c.cancelPending()
	return c.regenerate()
}

// regenerate 抽取新目标并回到 Active
func (c *BinarySearch) regenerate() error {
	idx := c.rnd.IntN(len(c.values))
	if idx < 0 || idx >= len(c.values) {
		return fmt.Errorf("%w: random index %d outside [0, %d)", ErrInvariantViolation, idx, len(c.values))
	}
	target := c.values[idx]
	if _, found := slices.BinarySearch(c.values, target); !found {
		return fmt.Errorf("%w: target %d not in generated values", ErrInvariantViolation, target)
	}

	c.target = target
	c.used = 0
	c.feedback = ""
	c.status = StatusActive

	// 开发辅助：输出目标值（仅 --verbose 可见）
	log.Printf("[BinarySearch] 🎯 Target Shrine Number: %d", c.target)
	log.Printf("[BinarySearch] 📊 Max Tries Allowed: %d", c.budget)
	return nil
}

// Values 返回有序取值序列的副本（用于宿主显示卷轴）
func (c *BinarySearch) Values() []int {
	return slices.Clone(c.values)
}

// Target 返回隐藏目标（开发/验证工具使用，宿主不应显示）
func (c *BinarySearch) Target() int {
	return c.target
}

// Progress 返回已用次数和预算
func (c *BinarySearch) Progress() (used, budget int) {
	return c.used, c.budget
}

// Range 返回取值范围
func (c *BinarySearch) Range() (lo, hi int) {
	return c.values[0], c.values[len(c.values)-1]
}

func (c *BinarySearch) result(v Verdict, k OutcomeKind) Result {
	taken := 0
	if k != OutcomePending {
		taken = c.used
	}
	return Result{
		Verdict:  v,
		Outcome:  Outcome{Challenge: c.kind, Kind: k, Taken: taken},
		Feedback: c.feedback,
		Used:     c.used,
		Budget:   c.budget,
	}
}
