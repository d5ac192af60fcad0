package scenes

import (
	"fmt"
	"image/color"
	"log"

	"github.com/decker502/algoquest/pkg/config"
	"github.com/decker502/algoquest/pkg/game"
	"github.com/decker502/algoquest/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
)

// QuestFactory 创建一个新的任务场景（每次进入任务都会重新创建）
type QuestFactory func() (Scene, error)

var (
	campBackgroundColor = color.RGBA{R: 0x1b, G: 0x3a, B: 0x2b, A: 0xff}
	campTitleColor      = color.RGBA{R: 0xff, G: 0xd7, B: 0x00, A: 0xff}
	campPromptColor     = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

// CampScene 营地场景，任务场景的父场景
//
// 玩家按 Enter 或点击屏幕时压入任务场景；任务结束弹出后营地恢复并记录完成次数。
type CampScene struct {
	sceneManager *game.SceneManager
	newQuest     QuestFactory
	title        string

	titleFont  *text.GoTextFace
	promptFont *text.GoTextFace

	paused        bool
	completedRuns int
	lastError     error
}

// NewCampScene 创建营地场景
//
// 参数：
//   - sm: 场景管理器
//   - title: 任务标题，显示在营地上方
//   - newQuest: 任务场景工厂
func NewCampScene(sm *game.SceneManager, title string, newQuest QuestFactory) (*CampScene, error) {
	source, err := utils.NewDefaultFaceSource()
	if err != nil {
		return nil, fmt.Errorf("failed to load camp font: %w", err)
	}
	return &CampScene{
		sceneManager: sm,
		newQuest:     newQuest,
		title:        title,
		titleFont:    &text.GoTextFace{Source: source, Size: 32},
		promptFont:   &text.GoTextFace{Source: source, Size: 20},
	}, nil
}

// Pause 实现 game.Pausable：任务场景压入时调用
func (s *CampScene) Pause() {
	s.paused = true
}

// Resume 实现 game.Pausable：任务场景弹出时调用
func (s *CampScene) Resume() {
	s.paused = false
	s.completedRuns++
	log.Printf("[CampScene] Back at camp (quests completed: %d)", s.completedRuns)
}

// CompletedRuns 返回已完成的任务次数
func (s *CampScene) CompletedRuns() int {
	return s.completedRuns
}

// Update 等待玩家开始任务
func (s *CampScene) Update(deltaTime float64) {
	if s.paused {
		return
	}
	s.handleInput(readFrameInput())
}

// handleInput 处理一帧输入
func (s *CampScene) handleInput(in frameInput) {
	if s.paused || !(in.enter || in.clicked) {
		return
	}
	s.startQuest()
}

// startQuest 创建并压入任务场景
func (s *CampScene) startQuest() {
	scene, err := s.newQuest()
	if err != nil {
		s.lastError = err
		log.Printf("[CampScene] Failed to start quest: %v", err)
		return
	}
	s.lastError = nil
	log.Printf("[CampScene] Meeting the Master Monk")
	s.sceneManager.Push(scene)
}

// Draw 绘制营地
func (s *CampScene) Draw(screen *ebiten.Image) {
	screen.Fill(campBackgroundColor)

	cx := float64(config.ScreenWidth) / 2
	drawCenteredText(screen, s.title, s.titleFont, campTitleColor, cx, 180)

	if s.paused {
		return
	}

	prompt := "Press Enter to meet the Master Monk"
	if utils.IsMobile() {
		prompt = "Tap to meet the Master Monk"
	}
	switch {
	case s.lastError != nil:
		prompt = "The Master Monk is away: " + s.lastError.Error()
	case s.completedRuns > 0:
		prompt = fmt.Sprintf("Quest complete (%d). Train again?", s.completedRuns)
	}
	drawCenteredText(screen, prompt, s.promptFont, campPromptColor, cx, 320)
}

// drawCenteredText 以 (cx, cy) 为中心绘制文本
func drawCenteredText(screen *ebiten.Image, str string, face *text.GoTextFace, clr color.Color, cx, cy float64) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(cx, cy)
	op.ColorScale.ScaleWithColor(clr)
	op.PrimaryAlign = text.AlignCenter
	op.SecondaryAlign = text.AlignCenter
	text.Draw(screen, str, face, op)
}
