package challenge

import (
	"errors"
	"math"
	"math/rand/v2"
	"strconv"
	"testing"
	"time"

	"github.com/decker502/algoquest/pkg/scheduler"
)

func newTestBinarySearch(t *testing.T, size int, rnd Rand, notify Notifier) (*BinarySearch, *scheduler.Scheduler) {
	t.Helper()
	s := scheduler.New()
	cfg := DefaultBinarySearchConfig()
	cfg.Size = size
	c, err := NewBinarySearch(cfg, s, rnd, notify)
	if err != nil {
		t.Fatalf("NewBinarySearch() error: %v", err)
	}
	return c, s
}

// TestAttemptBudget 测试猜测预算计算
func TestAttemptBudget(t *testing.T) {
	tests := []struct {
		size int
		want int
	}{
		{size: 0, want: 0},
		{size: 1, want: 1},
		{size: 2, want: 1},
		{size: 3, want: 2},
		{size: 4, want: 2},
		{size: 7, want: 3},
		{size: 8, want: 3},
		{size: 9, want: 4},
		{size: 50, want: 6},
		{size: 64, want: 6},
		{size: 1000, want: 10},
		{size: 1024, want: 10},
	}

	for _, tt := range tests {
		if got := AttemptBudget(tt.size); got != tt.want {
			t.Errorf("AttemptBudget(%d) = %d, want %d", tt.size, got, tt.want)
		}
	}

	for n := 2; n <= 4096; n++ {
		want := int(math.Ceil(math.Log2(float64(n))))
		if got := AttemptBudget(n); got != want {
			t.Errorf("AttemptBudget(%d) = %d, want ceil(log2) = %d", n, got, want)
		}
	}
}

// TestBinarySearchCreate 测试创建后的初始状态
func TestBinarySearchCreate(t *testing.T) {
	c, s := newTestBinarySearch(t, 50, targetRand(37), nil)

	values := c.Values()
	if len(values) != 50 || values[0] != 1 || values[49] != 50 {
		t.Errorf("Values() = %v..., want 1..50", values[:3])
	}
	if c.Target() != 37 {
		t.Errorf("Target() = %d, want 37", c.Target())
	}
	used, budget := c.Progress()
	if used != 0 || budget != 6 {
		t.Errorf("Progress() = (%d, %d), want (0, 6)", used, budget)
	}
	if c.Status() != StatusActive {
		t.Errorf("Status() = %v, want Active", c.Status())
	}
	if c.Kind() != KindBinarySearch {
		t.Errorf("Kind() = %q", c.Kind())
	}
	if s.Pending() != 0 {
		t.Errorf("scheduler has %d pending timers after create", s.Pending())
	}
}

// TestBinarySearchInvalidConfig 测试非法配置返回 ErrInvariantViolation
func TestBinarySearchInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		size int
		rnd  Rand
	}{
		{name: "size 为 0", size: 0, rnd: targetRand(1)},
		{name: "随机源越界", size: 10, rnd: &scriptedRand{ints: []int{10}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultBinarySearchConfig()
			cfg.Size = tt.size
			_, err := NewBinarySearch(cfg, scheduler.New(), tt.rnd, nil)
			if !errors.Is(err, ErrInvariantViolation) {
				t.Errorf("error = %v, want ErrInvariantViolation", err)
			}
		})
	}
}

// TestBinarySearchScenarioA 目标 37，猜测 25,50,40,35,37
func TestBinarySearchScenarioA(t *testing.T) {
	var notified []Outcome
	c, s := newTestBinarySearch(t, 50, targetRand(37), func(o Outcome) { notified = append(notified, o) })

	guesses := []string{"25", "50", "40", "35", "37"}
	want := []Verdict{VerdictTooLow, VerdictTooHigh, VerdictTooHigh, VerdictTooLow, VerdictCorrect}

	for i, g := range guesses {
		res, err := c.SubmitGuess(g)
		if err != nil {
			t.Fatalf("guess %s: unexpected error %v", g, err)
		}
		if res.Verdict != want[i] {
			t.Errorf("guess %s: verdict = %v, want %v", g, res.Verdict, want[i])
		}
		if res.Used != i+1 {
			t.Errorf("guess %s: used = %d, want %d", g, res.Used, i+1)
		}
	}

	used, budget := c.Progress()
	if used != 5 || used > budget {
		t.Errorf("Progress() = (%d, %d), want 5 <= 6", used, budget)
	}
	if c.Feedback() != "🎯 You found the hidden shrine in 5 tries!" {
		t.Errorf("Feedback() = %q", c.Feedback())
	}

	// 通知在显示延迟之后才发出
	s.Advance(DefaultBinarySearchSolveDelay - time.Millisecond)
	if len(notified) != 0 {
		t.Fatal("director notified before display delay elapsed")
	}
	if c.Status() != StatusResolving {
		t.Errorf("Status() = %v during delay, want Resolving", c.Status())
	}

	s.Advance(time.Millisecond)
	if len(notified) != 1 {
		t.Fatalf("notified %d times, want 1", len(notified))
	}
	if notified[0].Kind != OutcomeSolved || notified[0].Taken != 5 || notified[0].Challenge != KindBinarySearch {
		t.Errorf("outcome = %+v", notified[0])
	}
	if c.Status() != StatusSolved {
		t.Errorf("Status() = %v, want Solved", c.Status())
	}
}

// TestBinarySearchFeedback 测试方向提示文本
func TestBinarySearchFeedback(t *testing.T) {
	c, _ := newTestBinarySearch(t, 50, targetRand(20), nil)

	res, _ := c.SubmitGuess("10")
	if res.Feedback != "🔺 Seek higher than 10..." {
		t.Errorf("too low feedback = %q", res.Feedback)
	}
	res, _ = c.SubmitGuess(" 30 ")
	if res.Feedback != "🔻 Too far. Try lower than 30..." {
		t.Errorf("too high feedback = %q", res.Feedback)
	}
}

// TestBinarySearchInvalidInput 非数字和越界输入不消耗次数
func TestBinarySearchInvalidInput(t *testing.T) {
	c, _ := newTestBinarySearch(t, 50, targetRand(37), nil)

	inputs := []string{"abc", "", "  ", "12abc", "3.5", "0", "51", "-4"}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			res, err := c.SubmitGuess(in)
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("SubmitGuess(%q) error = %v, want ErrInvalidInput", in, err)
			}
			if res.Verdict != VerdictNone {
				t.Errorf("verdict = %v, want None", res.Verdict)
			}
			if used, _ := c.Progress(); used != 0 {
				t.Errorf("attempts used = %d, want 0", used)
			}
		})
	}

	if _, err := c.SubmitGuess("abc"); err == nil || c.Feedback() != "⚠️ Please enter a valid number!" {
		t.Errorf("feedback = %q", c.Feedback())
	}
}

// TestBinarySearchExhaustedReset 次数耗尽后延迟重置，次数归零并抽取新目标
func TestBinarySearchExhaustedReset(t *testing.T) {
	rnd := targetRand(37, 10)
	notified := false
	c, s := newTestBinarySearch(t, 50, rnd, func(Outcome) { notified = true })

	for i := 1; i < 6; i++ {
		res, err := c.SubmitGuess("1")
		if err != nil {
			t.Fatalf("guess %d: %v", i, err)
		}
		if res.Outcome.Kind != OutcomePending {
			t.Fatalf("guess %d: outcome = %v, want Pending", i, res.Outcome.Kind)
		}
	}

	res, err := c.SubmitGuess("1")
	if err != nil {
		t.Fatalf("6th guess: %v", err)
	}
	if res.Outcome.Kind != OutcomeExhausted {
		t.Fatalf("6th guess outcome = %v, want Exhausted", res.Outcome.Kind)
	}
	if res.Used != 6 || res.Budget != 6 {
		t.Errorf("used/budget = %d/%d, want 6/6", res.Used, res.Budget)
	}
	if c.Status() != StatusResetting {
		t.Errorf("Status() = %v, want Resetting", c.Status())
	}

	// 重置等待期间的输入被忽略
	if _, err := c.SubmitGuess("37"); !errors.Is(err, ErrChallengeInactive) {
		t.Errorf("guess during reset delay error = %v, want ErrChallengeInactive", err)
	}

	s.Advance(DefaultBinarySearchResetDelay)

	used, _ := c.Progress()
	if used != 0 {
		t.Errorf("attempts after reset = %d, want 0", used)
	}
	if c.Target() != 10 {
		t.Errorf("Target() after reset = %d, want 10", c.Target())
	}
	if rnd.intCalls != 2 {
		t.Errorf("IntN called %d times, want 2", rnd.intCalls)
	}
	if c.Status() != StatusActive {
		t.Errorf("Status() after reset = %v, want Active", c.Status())
	}
	if c.Feedback() != "" {
		t.Errorf("Feedback() after reset = %q, want empty", c.Feedback())
	}
	if notified {
		t.Error("Exhausted must not notify the director")
	}
}

// TestBinarySearchResetCancelsSolved 重置会取消已安排的 Solved 通知
func TestBinarySearchResetCancelsSolved(t *testing.T) {
	notified := 0
	c, s := newTestBinarySearch(t, 50, targetRand(5, 6), func(Outcome) { notified++ })

	if res, _ := c.SubmitGuess("5"); res.Outcome.Kind != OutcomeSolved {
		t.Fatalf("outcome = %v, want Solved", res.Outcome.Kind)
	}
	if err := c.Reset(); err != nil {
		t.Fatalf("Reset() error: %v", err)
	}
	s.Advance(10 * time.Second)

	if notified != 0 {
		t.Errorf("stale Solved notification fired %d times", notified)
	}
	if c.Status() != StatusActive || c.Target() != 6 {
		t.Errorf("after Reset status=%v target=%d", c.Status(), c.Target())
	}
}

// TestBinarySearchClose 关闭后取消通知并忽略输入
func TestBinarySearchClose(t *testing.T) {
	notified := false
	c, s := newTestBinarySearch(t, 50, targetRand(5), func(Outcome) { notified = true })

	c.SubmitGuess("5")
	c.Close()
	s.Advance(10 * time.Second)

	if notified {
		t.Error("closed challenge notified the director")
	}
	if _, err := c.SubmitGuess("5"); !errors.Is(err, ErrChallengeInactive) {
		t.Errorf("guess after Close error = %v", err)
	}
	if err := c.Reset(); !errors.Is(err, ErrChallengeInactive) {
		t.Errorf("Reset after Close error = %v", err)
	}
	if c.Status() != StatusClosed {
		t.Errorf("Status() = %v, want Closed", c.Status())
	}
}

// TestBinarySearchSizeOne 只有一个值时第一次有效猜测即命中
func TestBinarySearchSizeOne(t *testing.T) {
	c, _ := newTestBinarySearch(t, 1, targetRand(1), nil)

	res, err := c.SubmitGuess("1")
	if err != nil {
		t.Fatalf("SubmitGuess error: %v", err)
	}
	if res.Outcome.Kind != OutcomeSolved || res.Used != 1 || res.Budget != 1 {
		t.Errorf("result = %+v", res)
	}
}

// TestBinarySearchHalvingStrategyWithinBudget size 不是 2 的幂时每次折半的策略总能在预算内命中
func TestBinarySearchHalvingStrategyWithinBudget(t *testing.T) {
	for size := 3; size <= 130; size++ {
		if size&(size-1) == 0 {
			continue
		}
		for target := 1; target <= size; target++ {
			c, _ := newTestBinarySearch(t, size, targetRand(target), nil)

			lo, hi := c.Range()
			solved := false
			for !solved {
				mid := (lo + hi) / 2
				res, err := c.SubmitGuess(strconv.Itoa(mid))
				if err != nil {
					t.Fatalf("size=%d target=%d: %v", size, target, err)
				}
				switch res.Verdict {
				case VerdictTooLow:
					lo = mid + 1
				case VerdictTooHigh:
					hi = mid - 1
				case VerdictCorrect:
					solved = true
				}
				if !solved && res.Outcome.Kind == OutcomeExhausted {
					t.Fatalf("size=%d target=%d: exhausted after %d guesses", size, target, res.Used)
				}
			}
		}
	}
}

// TestBinarySearchPowerOfTwoExhaustsAtBudget size 为 2 的幂时第 ⌈log2 N⌉ 次未命中即耗尽
func TestBinarySearchPowerOfTwoExhaustsAtBudget(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		target  int
		guesses []string
	}{
		{name: "N=2", size: 2, target: 2, guesses: []string{"1"}},
		{name: "N=4", size: 4, target: 4, guesses: []string{"1", "2"}},
		{name: "N=8", size: 8, target: 8, guesses: []string{"4", "6", "7"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestBinarySearch(t, tt.size, targetRand(tt.target), nil)

			var res Result
			for i, g := range tt.guesses {
				var err error
				res, err = c.SubmitGuess(g)
				if err != nil {
					t.Fatalf("guess %s: %v", g, err)
				}
				if last := i == len(tt.guesses)-1; !last && res.Outcome.Kind != OutcomePending {
					t.Fatalf("guess %s: outcome = %v, want Pending", g, res.Outcome.Kind)
				}
			}
			if res.Outcome.Kind != OutcomeExhausted {
				t.Errorf("outcome = %v, want Exhausted", res.Outcome.Kind)
			}
			if res.Used != len(tt.guesses) || res.Budget != len(tt.guesses) {
				t.Errorf("used/budget = %d/%d, want %d/%d", res.Used, res.Budget, len(tt.guesses), len(tt.guesses))
			}
			if c.Status() != StatusResetting {
				t.Errorf("Status() = %v, want Resetting", c.Status())
			}
		})
	}
}

// TestBinarySearchSeededDeterminism 相同种子产生相同目标
func TestBinarySearchSeededDeterminism(t *testing.T) {
	a, _ := newTestBinarySearch(t, 50, rand.New(rand.NewPCG(7, 11)), nil)
	b, _ := newTestBinarySearch(t, 50, rand.New(rand.NewPCG(7, 11)), nil)
	if a.Target() != b.Target() {
		t.Errorf("targets differ with the same seed: %d vs %d", a.Target(), b.Target())
	}
	if a.Target() < 1 || a.Target() > 50 {
		t.Errorf("target %d outside 1..50", a.Target())
	}
}
