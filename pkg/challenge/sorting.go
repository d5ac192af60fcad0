package challenge

import (
	"cmp"
	"fmt"
	"log"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/decker502/algoquest/pkg/scheduler"
)

// Sorting 默认参数
const (
	DefaultSortingSolveDelay = 1500 * time.Millisecond
	DefaultSortingResetDelay = 1500 * time.Millisecond

	// MaxShuffleAttempts 重洗直到"未排序"的最大尝试次数，超过视为配置错误
	MaxShuffleAttempts = 1000
)

// Record 一条待排序记录（名字 + Code Points）
type Record struct {
	Name  string
	Value int
}

// String 返回 "[值] 名字" 格式（与原版显示一致）
func (r Record) String() string {
	return fmt.Sprintf("[%d] %s", r.Value, r.Name)
}

// DefaultRecords 返回原版的五位人物记录
func DefaultRecords() []Record {
	return []Record{
		{Name: "Ada", Value: 40},
		{Name: "Grace", Value: 20},
		{Name: "Linus", Value: 80},
		{Name: "Ken", Value: 60},
		{Name: "Tim", Value: 10},
	}
}

// SortingConfig 排序挑战配置
type SortingConfig struct {
	Records    []Record
	SolveDelay time.Duration
	ResetDelay time.Duration
}

// DefaultSortingConfig 返回默认配置
func DefaultSortingConfig() SortingConfig {
	return SortingConfig{
		Records:    DefaultRecords(),
		SolveDelay: DefaultSortingSolveDelay,
		ResetDelay: DefaultSortingResetDelay,
	}
}

// SwapBudget 计算 m 条记录的最大交换次数 m(m-1)/2（冒泡排序最坏情况）
func SwapBudget(m int) int {
	if m < 2 {
		return 0
	}
	return m * (m - 1) / 2
}

// IsSorted 检查记录是否按数值非递减排列
func IsSorted(records []Record) bool {
	return slices.IsSortedFunc(records, func(a, b Record) int {
		return cmp.Compare(a.Value, b.Value)
	})
}

// Sorting 位置交换排序挑战
//
// 状态机：Active →(已排序) Resolving →(延迟) Solved
//
//	Active →(交换次数耗尽) Resetting →(延迟) Active（重新洗牌，次数清零）
type Sorting struct {
	base
	cfg     SortingConfig
	rnd     Rand
	initial []Record
	records []Record
	used    int
	budget  int
}

// NewSorting 创建排序挑战
//
// 参数：
//   - cfg: 挑战配置，至少需要两个不同数值的记录
//   - sched: 驱动延迟通知的调度器
//   - rnd: 随机源
//   - notify: Solved 通知回调，可为 nil
//
// 返回：
//   - *Sorting: 挑战实例
//   - error: ErrInvariantViolation（记录无法洗成未排序状态）
func NewSorting(cfg SortingConfig, sched *scheduler.Scheduler, rnd Rand, notify Notifier) (*Sorting, error) {
	if len(cfg.Records) < 2 {
		return nil, fmt.Errorf("%w: sorting needs at least 2 records, got %d", ErrInvariantViolation, len(cfg.Records))
	}

	c := &Sorting{
		base: base{
			kind:   KindSorting,
			sched:  sched,
			notify: notify,
		},
		cfg:     cfg,
		rnd:     rnd,
		initial: slices.Clone(cfg.Records),
		budget:  SwapBudget(len(cfg.Records)),
	}
	if err := c.reshuffle(); err != nil {
		return nil, err
	}

	log.Printf("[Sorting] Created: records=%d, maxSwaps=%d", len(c.records), c.budget)
	return c, nil
}

// SubmitSwap 校验并执行一次交换（位置从 1 开始）
//
// 非数字或越界返回 ErrInvalidPosition，相同位置返回 ErrIdenticalPositions，
// 这些情况都不交换、不计数。
func (c *Sorting) SubmitSwap(pos1, pos2 string) (Result, error) {
	if !c.accepting() {
		return c.result(VerdictNone, OutcomePending), ErrChallengeInactive
	}

	p1, err1 := strconv.Atoi(strings.TrimSpace(pos1))
	p2, err2 := strconv.Atoi(strings.TrimSpace(pos2))
	if err1 != nil || err2 != nil {
		c.feedback = "⚠️ Please enter both positions!"
		return c.result(VerdictNone, OutcomePending), fmt.Errorf("%w: %q, %q", ErrInvalidPosition, pos1, pos2)
	}
	return c.Swap(p1, p2)
}

// Swap 与 SubmitSwap 相同，但接收已解析的位置
func (c *Sorting) Swap(p1, p2 int) (Result, error) {
	if !c.accepting() {
		return c.result(VerdictNone, OutcomePending), ErrChallengeInactive
	}

	m := len(c.records)
	if p1 < 1 || p1 > m || p2 < 1 || p2 > m {
		c.feedback = fmt.Sprintf("⚠️ Positions must be between 1 and %d", m)
		return c.result(VerdictNone, OutcomePending), fmt.Errorf("%w: (%d, %d) outside [1, %d]", ErrInvalidPosition, p1, p2, m)
	}
	if p1 == p2 {
		c.feedback = "⚠️ Choose two different positions!"
		return c.result(VerdictNone, OutcomePending), fmt.Errorf("%w: %d", ErrIdenticalPositions, p1)
	}

	i, j := p1-1, p2-1
	c.records[i], c.records[j] = c.records[j], c.records[i]
	c.used++
	c.feedback = fmt.Sprintf("Swapped! (%d/%d)", c.used, c.budget)

	if IsSorted(c.records) {
		c.feedback = fmt.Sprintf("✅ Sorted in %d swaps!", c.used)
		c.scheduleSolved(c.cfg.SolveDelay, Outcome{Challenge: c.kind, Kind: OutcomeSolved, Taken: c.used})
		log.Printf("[Sorting] Sorted in %d/%d swaps, notifying in %v", c.used, c.budget, c.cfg.SolveDelay)
		return c.result(VerdictSwapped, OutcomeSolved), nil
	}

	if c.used >= c.budget {
		c.feedback = "❌ Too many swaps! Restarting..."
		c.scheduleReset(c.cfg.ResetDelay, c.reshuffle)
		log.Printf("[Sorting] Exhausted after %d swaps, reshuffling in %v", c.used, c.cfg.ResetDelay)
		return c.result(VerdictSwapped, OutcomeExhausted), nil
	}

	return c.result(VerdictSwapped, OutcomePending), nil
}

// Reset 立即重置：取消待执行的通知，重新洗牌，次数清零
func (c *Sorting) Reset() error {
	if c.status == StatusClosed {
		return ErrChallengeInactive
	}
	c.cancelPending()
	return c.reshuffle()
}

// reshuffle 均匀随机洗牌，直到结果不是已排序状态
func (c *Sorting) reshuffle() error {
	shuffled := slices.Clone(c.initial)
	for attempt := 1; ; attempt++ {
		if attempt > MaxShuffleAttempts {
			return fmt.Errorf("%w: records still sorted after %d shuffles", ErrInvariantViolation, MaxShuffleAttempts)
		}
		c.rnd.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		if !IsSorted(shuffled) {
			break
		}
	}

	c.records = shuffled
	c.used = 0
	c.feedback = ""
	c.status = StatusActive

	// 开发辅助：输出目标顺序和初始状态（仅 --verbose 可见）
	log.Printf("[Sorting] 🎯 Target Order (by points): %v", c.SortedOrder())
	log.Printf("[Sorting] 📊 Initial Unsorted Array: %v", c.records)
	log.Printf("[Sorting] 📊 Max Swaps Allowed: %d", c.budget)
	return nil
}

// Records 返回当前记录顺序的副本
func (c *Sorting) Records() []Record {
	return slices.Clone(c.records)
}

// SortedOrder 返回按数值升序的目标顺序（稳定排序）
func (c *Sorting) SortedOrder() []Record {
	sorted := slices.Clone(c.initial)
	slices.SortStableFunc(sorted, func(a, b Record) int {
		return cmp.Compare(a.Value, b.Value)
	})
	return sorted
}

// Progress 返回已用交换次数和预算
func (c *Sorting) Progress() (used, budget int) {
	return c.used, c.budget
}

// Display 返回 "[40] Ada  |  [20] Grace ..." 格式的一行文本
func (c *Sorting) Display() string {
	parts := make([]string, len(c.records))
	for i, r := range c.records {
		parts[i] = r.String()
	}
	return strings.Join(parts, "  |  ")
}

func (c *Sorting) result(v Verdict, k OutcomeKind) Result {
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
