package quest

import (
	"errors"
	"io"
	"log"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/decker502/algoquest/pkg/challenge"
	"github.com/decker502/algoquest/pkg/config"
	"github.com/decker502/algoquest/pkg/scheduler"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

// recordingHost 记录导演对宿主的所有调用
type recordingHost struct {
	texts     []string
	shown     []challenge.Challenge
	hidden    []challenge.Challenge
	completed int
}

func (h *recordingHost) DisplayText(text string)             { h.texts = append(h.texts, text) }
func (h *recordingHost) ShowChallenge(c challenge.Challenge) { h.shown = append(h.shown, c) }
func (h *recordingHost) HideChallenge(c challenge.Challenge) { h.hidden = append(h.hidden, c) }
func (h *recordingHost) QuestCompleted()                     { h.completed++ }

func (h *recordingHost) lastText() string {
	if len(h.texts) == 0 {
		return ""
	}
	return h.texts[len(h.texts)-1]
}

const miniScript = `
id: mini
typingIntervalMs: 20
stages:
  - text: "Hi {PLAYER}"
  - text: "Guess"
    challenge: binary-search
  - text: "Bye"
binarySearch:
  size: 8
  solveDelayMs: 100
  resetDelayMs: 100
`

func loadMiniScript(t *testing.T) *config.QuestScript {
	t.Helper()
	script, err := config.ParseQuestScript([]byte(miniScript), "mini")
	if err != nil {
		t.Fatalf("ParseQuestScript() error: %v", err)
	}
	return script
}

func newTestDirector(t *testing.T, script *config.QuestScript, opts ...Option) (*Director, *scheduler.Scheduler, *recordingHost) {
	t.Helper()
	sched := scheduler.New()
	host := &recordingHost{}
	opts = append([]Option{WithRand(rand.New(rand.NewPCG(1, 2)))}, opts...)
	d, err := New(script, sched, host, opts...)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return d, sched, host
}

// solveBinarySearch 直接猜中目标
func solveBinarySearch(t *testing.T, d *Director) {
	t.Helper()
	bs, ok := d.ActiveChallenge().(*challenge.BinarySearch)
	if !ok {
		t.Fatalf("active challenge = %T, want *challenge.BinarySearch", d.ActiveChallenge())
	}
	res, err := d.SubmitGuess(strconv.Itoa(bs.Target()))
	if err != nil || res.Outcome.Kind != challenge.OutcomeSolved {
		t.Fatalf("solving guess: res=%+v err=%v", res, err)
	}
}

// solveSorting 用选择排序交换到有序
func solveSorting(t *testing.T, d *Director) {
	t.Helper()
	so, ok := d.ActiveChallenge().(*challenge.Sorting)
	if !ok {
		t.Fatalf("active challenge = %T, want *challenge.Sorting", d.ActiveChallenge())
	}
	for i := 0; ; i++ {
		records := so.Records()
		if i >= len(records) {
			t.Fatalf("records not sorted after a full pass: %v", records)
		}
		lo := i
		for j := i + 1; j < len(records); j++ {
			if records[j].Value < records[lo].Value {
				lo = j
			}
		}
		if lo == i {
			continue
		}
		res, err := d.SubmitSwap(strconv.Itoa(i+1), strconv.Itoa(lo+1))
		if err != nil {
			t.Fatalf("swap %d<->%d: %v", i+1, lo+1, err)
		}
		if res.Outcome.Kind == challenge.OutcomeSolved {
			return
		}
		if res.Outcome.Kind == challenge.OutcomeExhausted {
			t.Fatalf("selection sort exhausted the swap budget")
		}
	}
}

// TestNewValidation 测试构造参数校验
func TestNewValidation(t *testing.T) {
	script := loadMiniScript(t)
	tests := []struct {
		name   string
		script *config.QuestScript
		sched  *scheduler.Scheduler
		host   Host
	}{
		{name: "脚本为空", script: nil, sched: scheduler.New(), host: &recordingHost{}},
		{name: "没有阶段", script: &config.QuestScript{ID: "x"}, sched: scheduler.New(), host: &recordingHost{}},
		{name: "缺少调度器", script: script, sched: nil, host: &recordingHost{}},
		{name: "缺少宿主", script: script, sched: scheduler.New(), host: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.script, tt.sched, tt.host); !errors.Is(err, challenge.ErrInvariantViolation) {
				t.Errorf("New() error = %v, want ErrInvariantViolation", err)
			}
		})
	}
}

// TestDefaultQuestFullRun 完整流程：两个挑战都解出后任务结束
func TestDefaultQuestFullRun(t *testing.T) {
	script, err := config.LoadQuestScript("../../data/quest/algorithm_quest.yaml")
	if err != nil {
		t.Fatalf("LoadQuestScript() error: %v", err)
	}
	d, sched, host := newTestDirector(t, script, WithTypingInterval(0))

	d.Start("Ada")
	if d.Phase() != PhaseIdle || d.StageIndex() != 0 {
		t.Fatalf("after Start: phase=%v index=%d", d.Phase(), d.StageIndex())
	}
	if !strings.Contains(host.lastText(), "Brave Ada") {
		t.Errorf("stage 0 text = %q, want player name substituted", host.lastText())
	}

	for d.StageIndex() < 3 {
		d.Advance()
	}
	if d.Phase() != PhaseBlocked || len(host.shown) != 1 {
		t.Fatalf("at binary search gate: phase=%v shown=%d", d.Phase(), len(host.shown))
	}
	if d.ActiveChallenge().Kind() != challenge.KindBinarySearch {
		t.Fatalf("challenge kind = %v", d.ActiveChallenge().Kind())
	}

	solveBinarySearch(t, d)
	if d.StageIndex() != 3 {
		t.Error("director advanced before the solve delay elapsed")
	}
	sched.Advance(2500 * time.Millisecond)

	if d.StageIndex() != 4 || d.Phase() != PhaseIdle {
		t.Fatalf("after binary search: index=%d phase=%v", d.StageIndex(), d.Phase())
	}
	if d.ActiveChallenge() != nil || len(host.hidden) != 1 {
		t.Errorf("challenge not discarded: active=%v hidden=%d", d.ActiveChallenge(), len(host.hidden))
	}
	if !strings.Contains(host.lastText(), "Well done, Ada") {
		t.Errorf("stage 4 text = %q", host.lastText())
	}

	for d.StageIndex() < 11 {
		d.Advance()
	}
	if d.Phase() != PhaseBlocked || d.ActiveChallenge().Kind() != challenge.KindSorting {
		t.Fatalf("at sorting gate: phase=%v", d.Phase())
	}

	solveSorting(t, d)
	sched.Advance(1500 * time.Millisecond)

	if d.StageIndex() != 12 || d.Phase() != PhaseIdle {
		t.Fatalf("after sorting: index=%d phase=%v", d.StageIndex(), d.Phase())
	}

	d.Advance()
	if d.Phase() != PhaseCompleted || host.completed != 1 {
		t.Fatalf("after last stage: phase=%v completed=%d", d.Phase(), host.completed)
	}

	// 结束后是终态
	d.Advance()
	d.Advance()
	if d.Phase() != PhaseCompleted || d.StageIndex() != 12 || host.completed != 1 {
		t.Errorf("Completed is not terminal: phase=%v index=%d completed=%d", d.Phase(), d.StageIndex(), host.completed)
	}
}

// TestAdvanceWhileBlockedIsNoop 挑战进行中 Advance 不改变索引和挑战
func TestAdvanceWhileBlockedIsNoop(t *testing.T) {
	d, sched, _ := newTestDirector(t, loadMiniScript(t), WithTypingInterval(0))
	d.Start("")
	d.Advance()

	if d.Phase() != PhaseBlocked {
		t.Fatalf("phase = %v, want Blocked", d.Phase())
	}
	before := d.State()

	for i := 0; i < 5; i++ {
		d.Advance()
	}
	sched.Advance(time.Second)

	after := d.State()
	if after.StageIndex != before.StageIndex || after.Challenge != before.Challenge || after.Phase != PhaseBlocked {
		t.Errorf("state changed while blocked: before=%+v after=%+v", before, after)
	}
}

// TestTypingReveal 逐字显示与中断
func TestTypingReveal(t *testing.T) {
	d, sched, host := newTestDirector(t, loadMiniScript(t))

	d.Start("Bo")
	if d.Phase() != PhasePresenting {
		t.Fatalf("phase = %v, want Presenting", d.Phase())
	}
	if host.lastText() != "" {
		t.Errorf("first DisplayText = %q, want empty", host.lastText())
	}

	sched.Advance(20 * time.Millisecond)
	if d.Text() != "H" {
		t.Errorf("Text() after one tick = %q, want %q", d.Text(), "H")
	}

	// 叙事阶段显示中 Advance 会中断并进入下一阶段
	d.Advance()
	if d.StageIndex() != 1 || d.Phase() != PhasePresenting {
		t.Fatalf("after interrupt: index=%d phase=%v", d.StageIndex(), d.Phase())
	}

	// 关卡文本显示中 Advance 无效
	d.Advance()
	if d.StageIndex() != 1 {
		t.Errorf("Advance during gate reveal moved to %d", d.StageIndex())
	}

	sched.Advance(time.Second)
	if d.Text() != "Guess" || d.Phase() != PhaseBlocked {
		t.Errorf("after reveal: text=%q phase=%v", d.Text(), d.Phase())
	}
	for _, text := range host.texts {
		if strings.HasPrefix(text, "Hi") {
			t.Errorf("cancelled reveal kept writing: %q", text)
		}
	}
}

// TestStaleNotificationIgnored 被丢弃的挑战发出的通知不影响任务
func TestStaleNotificationIgnored(t *testing.T) {
	d, sched, host := newTestDirector(t, loadMiniScript(t), WithTypingInterval(0))
	d.Start("Ada")
	d.Advance()
	first := d.State().RunID

	solveBinarySearch(t, d)
	old := d.ActiveChallenge()

	// 解出后、通知前重新开始
	d.Start("Ada")
	if old.Status() != challenge.StatusClosed {
		t.Errorf("old challenge status = %v, want Closed", old.Status())
	}
	sched.Advance(time.Second)

	if d.StageIndex() != 0 || d.Phase() != PhaseIdle {
		t.Errorf("stale notification moved quest: index=%d phase=%v", d.StageIndex(), d.Phase())
	}
	if d.State().RunID == first {
		t.Error("RunID not regenerated on restart")
	}
	if len(host.hidden) != 1 {
		t.Errorf("hidden = %d, want 1", len(host.hidden))
	}

	// 没有挑战时直接送达的 Solved 也被忽略
	d.OnChallengeResolved(challenge.Outcome{Challenge: challenge.KindBinarySearch, Kind: challenge.OutcomeSolved})
	if d.StageIndex() != 0 {
		t.Errorf("OnChallengeResolved without challenge moved to %d", d.StageIndex())
	}
}

// TestExhaustedKeepsQuestBlocked 次数耗尽只重置挑战，任务保持阻塞
func TestExhaustedKeepsQuestBlocked(t *testing.T) {
	d, sched, _ := newTestDirector(t, loadMiniScript(t), WithTypingInterval(0))
	d.Start("Ada")
	d.Advance()

	bs := d.ActiveChallenge().(*challenge.BinarySearch)
	wrong := "1"
	if bs.Target() == 1 {
		wrong = "2"
	}
	_, budget := bs.Progress()
	var res challenge.Result
	for i := 0; i < budget; i++ {
		res, _ = d.SubmitGuess(wrong)
	}
	if res.Outcome.Kind != challenge.OutcomeExhausted {
		t.Fatalf("outcome = %v, want Exhausted", res.Outcome.Kind)
	}

	sched.Advance(time.Second)

	if d.Phase() != PhaseBlocked || d.StageIndex() != 1 {
		t.Errorf("after exhaustion: phase=%v index=%d", d.Phase(), d.StageIndex())
	}
	if d.ActiveChallenge() != bs || bs.Status() != challenge.StatusActive {
		t.Errorf("challenge replaced or not reset: status=%v", bs.Status())
	}
	if used, _ := bs.Progress(); used != 0 {
		t.Errorf("attempts after reset = %d, want 0", used)
	}
}

// TestInputWithoutChallenge 没有对应挑战时输入返回 ErrNoActiveChallenge
func TestInputWithoutChallenge(t *testing.T) {
	d, _, _ := newTestDirector(t, loadMiniScript(t), WithTypingInterval(0))
	d.Start("Ada")

	if _, err := d.SubmitGuess("4"); !errors.Is(err, challenge.ErrNoActiveChallenge) {
		t.Errorf("SubmitGuess before gate error = %v", err)
	}

	d.Advance()
	if _, err := d.SubmitSwap("1", "2"); !errors.Is(err, challenge.ErrNoActiveChallenge) {
		t.Errorf("SubmitSwap at binary search gate error = %v", err)
	}
	if d.StageIndex() != 1 || d.Phase() != PhaseBlocked {
		t.Errorf("input without challenge mutated state: index=%d phase=%v", d.StageIndex(), d.Phase())
	}
}

// TestDefaultPlayerLabel 空名字使用默认称呼
func TestDefaultPlayerLabel(t *testing.T) {
	d, _, host := newTestDirector(t, loadMiniScript(t), WithTypingInterval(0))
	d.Start("   ")

	if d.State().PlayerLabel != config.DefaultPlayerLabel {
		t.Errorf("PlayerLabel = %q, want %q", d.State().PlayerLabel, config.DefaultPlayerLabel)
	}
	if host.lastText() != "Hi Adventurer" {
		t.Errorf("text = %q", host.lastText())
	}
}

// TestAdvanceBeforeStart 未开始时 Advance 无效
func TestAdvanceBeforeStart(t *testing.T) {
	d, _, host := newTestDirector(t, loadMiniScript(t))
	d.Advance()
	if len(host.texts) != 0 || d.StageIndex() != 0 {
		t.Errorf("Advance before Start displayed %v", host.texts)
	}
}
