package scenes

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/decker502/algoquest/pkg/challenge"
	"github.com/decker502/algoquest/pkg/config"
	"github.com/decker502/algoquest/pkg/game"
	"github.com/decker502/algoquest/pkg/quest"
	"github.com/decker502/algoquest/pkg/scheduler"
	"github.com/decker502/algoquest/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
)

// 输入框限制
const (
	guessMaxLength    = 6
	positionMaxLength = 3
)

// QuestSceneOptions 任务场景的可选参数
type QuestSceneOptions struct {
	PlayerName     string         // 玩家称呼，空使用默认称呼
	TypingInterval time.Duration  // 覆盖脚本的逐字显示间隔，0 使用脚本配置，负数立即显示
	ShowHints      bool           // 是否显示剩余次数
	Rand           challenge.Rand // 挑战随机源，nil 使用随机种子
}

// QuestScene 任务面板场景
//
// 作为任务导演的宿主：导演通过 quest.Host 回调更新显示，场景只负责绘制和转发输入。
// 任务结束后场景从 SceneManager 弹出，父场景（营地）恢复运行。
type QuestScene struct {
	sceneManager *game.SceneManager
	director     *quest.Director
	showHints    bool

	nameFont     *text.GoTextFace
	dialogueFont *text.GoTextFace
	widgetFont   *text.GoTextFace

	// 由导演回调维护的显示状态
	text      string
	lines     []string
	challenge challenge.Challenge
	completed bool

	guessField *textField
	pos1Field  *textField
	pos2Field  *textField

	// 上一帧的指针位置
	pointerX, pointerY float64
}

// NewQuestScene 创建任务场景并立即开始任务
//
// 参数：
//   - sm: 场景管理器，任务结束时用于弹出本场景，可为 nil（验证工具中使用）
//   - script: 已校验的任务脚本
//   - opts: 可选参数
//
// 返回：
//   - *QuestScene: 场景实例
//   - error: 字体加载或导演创建失败
func NewQuestScene(sm *game.SceneManager, script *config.QuestScript, opts QuestSceneOptions) (*QuestScene, error) {
	source, err := utils.NewDefaultFaceSource()
	if err != nil {
		return nil, fmt.Errorf("failed to load quest font: %w", err)
	}

	s := &QuestScene{
		sceneManager: sm,
		showHints:    opts.ShowHints,
		nameFont:     &text.GoTextFace{Source: source, Size: config.NameTagFontSize},
		dialogueFont: &text.GoTextFace{Source: source, Size: config.DialogueFontSize},
		widgetFont:   &text.GoTextFace{Source: source, Size: config.WidgetFontSize},
	}

	var directorOpts []quest.Option
	if opts.Rand != nil {
		directorOpts = append(directorOpts, quest.WithRand(opts.Rand))
	}
	if opts.TypingInterval != 0 {
		directorOpts = append(directorOpts, quest.WithTypingInterval(opts.TypingInterval))
	}

	s.director, err = quest.New(script, scheduler.New(), s, directorOpts...)
	if err != nil {
		return nil, err
	}

	log.Printf("[QuestScene] Opening quest %q", script.ID)
	s.director.Start(opts.PlayerName)
	return s, nil
}

// isHovered 指针是否停在矩形区域上
func (s *QuestScene) isHovered(r config.Rect) bool {
	return r.Contains(s.pointerX, s.pointerY)
}

// Director 返回任务导演（验证工具使用）
func (s *QuestScene) Director() *quest.Director {
	return s.director
}

// IsCompleted 任务是否已结束
func (s *QuestScene) IsCompleted() bool {
	return s.completed
}

// DisplayText 实现 quest.Host
func (s *QuestScene) DisplayText(t string) {
	s.text = utils.StripEmphasis(t)
	s.lines = utils.WrapText(s.text, s.dialogueFont, config.DialogueWrapWidth)
}

// ShowChallenge 实现 quest.Host：创建挑战输入框
func (s *QuestScene) ShowChallenge(c challenge.Challenge) {
	s.challenge = c
	cx, cy := config.PanelCenterX, config.PanelCenterY

	switch c.(type) {
	case *challenge.BinarySearch:
		s.guessField = newTextField(
			config.CenteredRect(cx, cy+config.BinaryInputOffsetY, config.InputWidth, config.InputHeight),
			guessMaxLength, "number")
		s.guessField.focus(true)
	case *challenge.Sorting:
		s.pos1Field = newTextField(
			config.CenteredRect(cx-config.SortInputOffsetX, cy+config.SortInputOffsetY, config.PositionInputWidth, config.InputHeight),
			positionMaxLength, "Pos 1")
		s.pos2Field = newTextField(
			config.CenteredRect(cx+config.SortInputOffsetX, cy+config.SortInputOffsetY, config.PositionInputWidth, config.InputHeight),
			positionMaxLength, "Pos 2")
		s.pos1Field.focus(true)
	}
	log.Printf("[QuestScene] Showing %s challenge", c.Kind())
}

// HideChallenge 实现 quest.Host：移除挑战界面
func (s *QuestScene) HideChallenge(c challenge.Challenge) {
	if s.challenge != c {
		return
	}
	s.challenge = nil
	s.guessField = nil
	s.pos1Field = nil
	s.pos2Field = nil
}

// QuestCompleted 实现 quest.Host：返回父场景
func (s *QuestScene) QuestCompleted() {
	s.completed = true
	log.Printf("[QuestScene] Quest completed, returning to parent scene")
	if s.sceneManager != nil {
		s.sceneManager.Pop()
	}
}

// Update 读取输入并推进任务
func (s *QuestScene) Update(deltaTime float64) {
	if s.completed {
		return
	}
	s.handleInput(readFrameInput())
	s.updateFields(deltaTime)
	s.director.Update(deltaTime)
}

// updateFields 更新光标闪烁
func (s *QuestScene) updateFields(deltaTime float64) {
	for _, f := range []*textField{s.guessField, s.pos1Field, s.pos2Field} {
		if f != nil {
			f.update(deltaTime)
		}
	}
}

// handleInput 处理一帧输入
func (s *QuestScene) handleInput(in frameInput) {
	s.pointerX, s.pointerY = in.pointerX, in.pointerY
	if s.completed {
		return
	}

	switch s.challenge.(type) {
	case nil:
		if in.enter || in.clickedIn(nextButtonBounds()) {
			s.director.Advance()
		}

	case *challenge.BinarySearch:
		if in.clickedIn(s.guessField.Bounds) {
			s.guessField.focus(true)
		}
		s.guessField.apply(in)
		if in.enter || in.clickedIn(submitButtonBounds()) {
			s.submitGuess()
		}

	case *challenge.Sorting:
		switch {
		case in.tab:
			s.focusPosition(!s.pos1Field.IsFocused)
		case in.clickedIn(s.pos1Field.Bounds):
			s.focusPosition(true)
		case in.clickedIn(s.pos2Field.Bounds):
			s.focusPosition(false)
		}
		s.pos1Field.apply(in)
		s.pos2Field.apply(in)
		if in.enter || in.clickedIn(swapButtonBounds()) {
			s.submitSwap()
		}
	}
}

// focusPosition 在两个位置输入框之间切换焦点
func (s *QuestScene) focusPosition(first bool) {
	s.pos1Field.focus(first)
	s.pos2Field.focus(!first)
}

// submitGuess 提交猜测，有效猜测后清空输入框
func (s *QuestScene) submitGuess() {
	_, err := s.director.SubmitGuess(s.guessField.Text)
	switch {
	case err == nil:
		s.guessField.clear()
	case errors.Is(err, challenge.ErrInvalidInput):
		// 保留输入，让玩家修改
	case errors.Is(err, challenge.ErrChallengeInactive):
		// 结算/重置延迟中
	default:
		log.Printf("[QuestScene] Guess rejected: %v", err)
	}
}

// submitSwap 提交交换，有效交换后清空两个输入框并聚焦第一个
func (s *QuestScene) submitSwap() {
	_, err := s.director.SubmitSwap(s.pos1Field.Text, s.pos2Field.Text)
	if err != nil {
		if !errors.Is(err, challenge.ErrInvalidPosition) &&
			!errors.Is(err, challenge.ErrIdenticalPositions) &&
			!errors.Is(err, challenge.ErrChallengeInactive) {
			log.Printf("[QuestScene] Swap rejected: %v", err)
		}
		return
	}
	s.pos1Field.clear()
	s.pos2Field.clear()
	s.focusPosition(true)
}
