// Package quest 实现任务导演：按脚本推进叙事阶段，在挑战关卡暂停并等待挑战解出
//
// 状态机：
//
//	Idle →(Start/Advance) Presenting →(叙事文本显示完) Idle
//	                      Presenting →(关卡文本显示完) Blocked →(Solved) Presenting
//	Idle →(最后一个阶段后 Advance) Completed（终态）
//
// 导演是任务状态的唯一持有者，宿主（ebiten 场景、终端界面）只负责显示和转发输入。
// 所有回调都在 scheduler.Scheduler 的 Update 中执行，单线程，无需加锁。
package quest

import (
	"fmt"
	"log"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/decker502/algoquest/pkg/challenge"
	"github.com/decker502/algoquest/pkg/config"
	"github.com/decker502/algoquest/pkg/scheduler"
	"github.com/decker502/algoquest/pkg/typing"
	"github.com/google/uuid"
)

// Phase 导演的推进阶段
type Phase int

const (
	// PhaseIdle 当前文本已显示完，等待 Advance
	PhaseIdle Phase = iota
	// PhasePresenting 正在逐字显示当前阶段文本
	PhasePresenting
	// PhaseBlocked 挑战进行中，Advance 被忽略
	PhaseBlocked
	// PhaseCompleted 任务结束
	PhaseCompleted
)

// String 返回 Phase 的字符串表示
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "Idle"
	case PhasePresenting:
		return "Presenting"
	case PhaseBlocked:
		return "Blocked"
	case PhaseCompleted:
		return "Completed"
	default:
		return "Unknown"
	}
}

// Host 导演驱动的显示端
type Host interface {
	// DisplayText 当前阶段文本变化（逐字显示的每一步都会调用）
	DisplayText(text string)
	// ShowChallenge 挑战创建完毕，宿主应显示挑战界面
	ShowChallenge(c challenge.Challenge)
	// HideChallenge 挑战已解出并被丢弃
	HideChallenge(c challenge.Challenge)
	// QuestCompleted 任务结束，宿主应返回上层场景
	QuestCompleted()
}

// QuestState 任务的全部可变状态
type QuestState struct {
	StageIndex  int
	Phase       Phase
	Challenge   challenge.Challenge // 当前挑战，没有时为 nil
	PlayerLabel string
	RunID       uuid.UUID // 每次 Start 生成，用于日志关联
}

// Option 导演配置选项
type Option func(*Director)

// WithRand 指定挑战使用的随机源（测试或 --seed 时使用）
func WithRand(rnd challenge.Rand) Option {
	return func(d *Director) {
		d.rnd = rnd
	}
}

// WithTypingInterval 覆盖脚本中的逐字显示间隔（≤ 0 立即显示全文）
func WithTypingInterval(interval time.Duration) Option {
	return func(d *Director) {
		d.interval = interval
	}
}

// Director 任务导演
type Director struct {
	script    *config.QuestScript
	sched     *scheduler.Scheduler
	host      Host
	presenter *typing.Presenter
	rnd       challenge.Rand
	interval  time.Duration

	state   QuestState
	started bool
}

// New 创建任务导演
//
// 参数：
//   - script: 已校验的任务脚本
//   - sched: 驱动逐字显示和挑战延迟的调度器
//   - host: 显示端
//   - opts: 可选配置
//
// 返回：
//   - *Director: 导演实例，调用 Start 开始任务
//   - error: 脚本为空
func New(script *config.QuestScript, sched *scheduler.Scheduler, host Host, opts ...Option) (*Director, error) {
	if script == nil || len(script.Stages) == 0 {
		return nil, fmt.Errorf("%w: quest script has no stages", challenge.ErrInvariantViolation)
	}
	if sched == nil || host == nil {
		return nil, fmt.Errorf("%w: quest director needs a scheduler and a host", challenge.ErrInvariantViolation)
	}

	d := &Director{
		script:    script,
		sched:     sched,
		host:      host,
		presenter: typing.NewPresenter(sched),
		interval:  script.TypingInterval(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.rnd == nil {
		d.rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return d, nil
}

// Start 从第 0 个阶段开始（或重新开始）任务
// 旧的挑战会被关闭，其待执行回调全部取消
func (d *Director) Start(playerLabel string) {
	playerLabel = strings.TrimSpace(playerLabel)
	if playerLabel == "" {
		playerLabel = config.DefaultPlayerLabel
	}

	d.presenter.Cancel()
	d.discardChallenge()

	d.state = QuestState{
		PlayerLabel: playerLabel,
		RunID:       uuid.New(),
	}
	d.started = true

	log.Printf("[QuestDirector] Quest %q started: run=%s, player=%q, stages=%d",
		d.script.ID, d.state.RunID, playerLabel, len(d.script.Stages))
	d.present(0)
}

// Advance 玩家点击 Next
//
// 挑战进行中、关卡文本显示中或任务已结束时无效；
// 叙事文本显示中调用会中断显示并进入下一阶段。
func (d *Director) Advance() {
	if !d.started {
		return
	}

	switch d.state.Phase {
	case PhaseCompleted:
		return
	case PhaseBlocked:
		log.Printf("[QuestDirector] Advance ignored: challenge %s in progress", d.state.Challenge.Kind())
		return
	case PhasePresenting:
		if d.Stage().IsGate() {
			return
		}
	}

	d.next()
}

// OnChallengeResolved 接收挑战结果
// Solved 时丢弃挑战并继续推进；Exhausted 由挑战自行重置，导演不做处理
func (d *Director) OnChallengeResolved(outcome challenge.Outcome) {
	if d.state.Phase != PhaseBlocked || d.state.Challenge == nil {
		log.Printf("[QuestDirector] Outcome %s ignored in phase %s", outcome.Kind, d.state.Phase)
		return
	}

	switch outcome.Kind {
	case challenge.OutcomeSolved:
		log.Printf("[QuestDirector] Challenge %s solved in %d (run=%s, stage=%d)",
			outcome.Challenge, outcome.Taken, d.state.RunID, d.state.StageIndex)
		d.discardChallenge()
		d.next()
	case challenge.OutcomeExhausted:
		log.Printf("[QuestDirector] Challenge %s exhausted, waiting for retry", outcome.Challenge)
	}
}

// SubmitGuess 把玩家输入转发给当前的猜数字挑战
func (d *Director) SubmitGuess(input string) (challenge.Result, error) {
	c, ok := d.state.Challenge.(*challenge.BinarySearch)
	if !ok {
		return challenge.Result{}, fmt.Errorf("%w: guess %q", challenge.ErrNoActiveChallenge, input)
	}
	return c.SubmitGuess(input)
}

// SubmitSwap 把玩家输入转发给当前的排序挑战
func (d *Director) SubmitSwap(pos1, pos2 string) (challenge.Result, error) {
	c, ok := d.state.Challenge.(*challenge.Sorting)
	if !ok {
		return challenge.Result{}, fmt.Errorf("%w: swap %q, %q", challenge.ErrNoActiveChallenge, pos1, pos2)
	}
	return c.SubmitSwap(pos1, pos2)
}

// Update 推进调度器（宿主每帧调用一次）
//
// 参数：
//   - dt: 距上一帧的秒数
func (d *Director) Update(dt float64) {
	d.sched.Update(dt)
}

// State 返回任务状态的副本
func (d *Director) State() QuestState {
	return d.state
}

// Phase 返回当前推进阶段
func (d *Director) Phase() Phase {
	return d.state.Phase
}

// StageIndex 返回当前阶段索引
func (d *Director) StageIndex() int {
	return d.state.StageIndex
}

// Stage 返回当前阶段
func (d *Director) Stage() config.Stage {
	return d.script.Stages[d.state.StageIndex]
}

// ActiveChallenge 返回当前挑战，没有时为 nil
func (d *Director) ActiveChallenge() challenge.Challenge {
	return d.state.Challenge
}

// Text 返回当前已显示的阶段文本
func (d *Director) Text() string {
	return d.presenter.Text()
}

// IsRevealing 当前阶段文本是否还在逐字显示
func (d *Director) IsRevealing() bool {
	return d.presenter.IsRevealing()
}

// Script 返回任务脚本
func (d *Director) Script() *config.QuestScript {
	return d.script
}

// next 进入下一阶段，最后一个阶段之后结束任务
func (d *Director) next() {
	if d.state.StageIndex >= len(d.script.Stages)-1 {
		d.complete()
		return
	}
	d.present(d.state.StageIndex + 1)
}

// present 显示第 i 个阶段的文本
func (d *Director) present(i int) {
	d.state.StageIndex = i
	d.state.Phase = PhasePresenting

	stage := d.script.Stages[i]
	text := stage.RenderText(d.state.PlayerLabel)
	log.Printf("[QuestDirector] Presenting stage %d/%d (%s)", i, len(d.script.Stages)-1, stage.Kind)

	d.presenter.Reveal(text, d.interval, d.host.DisplayText, func() {
		d.revealDone(i)
	})
}

// revealDone 阶段文本显示完毕
func (d *Director) revealDone(i int) {
	if d.state.StageIndex != i || d.state.Phase != PhasePresenting {
		return
	}

	stage := d.script.Stages[i]
	if !stage.IsGate() {
		d.state.Phase = PhaseIdle
		return
	}

	c, err := d.newChallenge(stage.Challenge)
	if err != nil {
		// 脚本已校验，到这里说明配置和挑战实现不一致
		panic(fmt.Errorf("stage %d: %w", i, err))
	}
	d.state.Challenge = c
	d.state.Phase = PhaseBlocked
	log.Printf("[QuestDirector] Stage %d blocked on %s challenge", i, stage.Challenge)
	d.host.ShowChallenge(c)
}

// newChallenge 创建挑战实例
// 通知回调绑定到实例本身，被丢弃的实例发出的通知会被忽略
func (d *Director) newChallenge(kind challenge.Kind) (challenge.Challenge, error) {
	var inst challenge.Challenge
	notify := func(outcome challenge.Outcome) {
		if inst == nil || inst != d.state.Challenge {
			log.Printf("[QuestDirector] Stale %s outcome from discarded challenge ignored", outcome.Kind)
			return
		}
		d.OnChallengeResolved(outcome)
	}

	switch kind {
	case challenge.KindBinarySearch:
		c, err := challenge.NewBinarySearch(d.script.BinarySearchConfig(), d.sched, d.rnd, notify)
		if err != nil {
			return nil, err
		}
		inst = c
	case challenge.KindSorting:
		c, err := challenge.NewSorting(d.script.SortingConfig(), d.sched, d.rnd, notify)
		if err != nil {
			return nil, err
		}
		inst = c
	default:
		return nil, fmt.Errorf("%w: unknown challenge kind %q", challenge.ErrInvariantViolation, kind)
	}
	return inst, nil
}

// discardChallenge 关闭并隐藏当前挑战
func (d *Director) discardChallenge() {
	c := d.state.Challenge
	if c == nil {
		return
	}
	c.Close()
	d.state.Challenge = nil
	d.host.HideChallenge(c)
}

// complete 结束任务
func (d *Director) complete() {
	d.presenter.Cancel()
	d.state.Phase = PhaseCompleted
	log.Printf("[QuestDirector] Quest %q completed (run=%s)", d.script.ID, d.state.RunID)
	d.host.QuestCompleted()
}
