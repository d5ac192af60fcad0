// Package app 提供游戏应用的核心包装器
//
// 该包将游戏初始化逻辑从 main 包提取出来，使其可以被桌面端和移动端共用。
// 桌面端通过 main.go 调用 NewApp()，移动端通过 mobile/mobile.go 调用。
package app

import (
	"fmt"
	"image/color"
	"io"
	"log"
	"math/rand/v2"
	"time"

	"github.com/decker502/algoquest/pkg/challenge"
	"github.com/decker502/algoquest/pkg/config"
	"github.com/decker502/algoquest/pkg/game"
	"github.com/decker502/algoquest/pkg/scenes"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Config 定义应用启动配置
type Config struct {
	// Verbose 启用详细日志输出（包括挑战的目标值）
	Verbose bool
	// PlayerName 任务中的称呼，非空时覆盖并保存到设置
	PlayerName string
	// ScriptPath 任务脚本路径，为空使用嵌入的内置脚本
	ScriptPath string
	// Seed 挑战随机种子，0 使用随机种子
	Seed uint64
}

// App 是游戏应用的核心包装器，实现 ebiten.Game 接口
type App struct {
	sceneManager             *game.SceneManager
	settingsManager          *game.SettingsManager
	verbose                  bool
	pendingWindowSizeReset   bool // 延迟设置窗口大小标志
	windowSizeResetCountdown int  // 延迟帧数
}

// NewApp 创建并初始化游戏应用
//
// 使用内置脚本时，调用此函数前必须先调用 embedded.Init() 初始化嵌入资源。
func NewApp(cfg Config) (*App, error) {
	// 配置日志输出
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}

	script, err := LoadScript(cfg.ScriptPath)
	if err != nil {
		return nil, fmt.Errorf("任务脚本加载失败: %w", err)
	}
	log.Printf("[App] Loaded quest %q: %d stages, %d gates", script.ID, len(script.Stages), script.GateCount())

	settingsManager := game.OpenSettingsManager(game.AppName)
	if cfg.PlayerName != "" {
		settingsManager.SetPlayerName(cfg.PlayerName)
		if err := settingsManager.Save(); err != nil {
			log.Printf("[App] Warning: failed to save player name: %v", err)
		}
	}
	settings := settingsManager.GetSettings()
	ebiten.SetFullscreen(settings.Fullscreen)

	rnd := NewRand(cfg.Seed)
	sceneManager := game.NewSceneManager()

	camp, err := scenes.NewCampScene(sceneManager, script.Title, func() (game.Scene, error) {
		current := settingsManager.GetSettings()
		return scenes.NewQuestScene(sceneManager, script, scenes.QuestSceneOptions{
			PlayerName:     current.PlayerName,
			TypingInterval: TypingInterval(current.TypingIntervalMs),
			ShowHints:      current.ShowHints,
			Rand:           rnd,
		})
	})
	if err != nil {
		return nil, err
	}
	sceneManager.SwitchTo(camp)

	return &App{
		sceneManager:    sceneManager,
		settingsManager: settingsManager,
		verbose:         cfg.Verbose,
	}, nil
}

// LoadScript 加载任务脚本
// path 为空时从嵌入资源加载内置脚本
func LoadScript(path string) (*config.QuestScript, error) {
	if path == "" {
		return config.LoadEmbeddedQuestScript()
	}
	return config.LoadQuestScript(path)
}

// NewRand 创建挑战随机源
// seed 为 0 时使用随机种子，否则每次运行的目标和洗牌结果都相同
func NewRand(seed uint64) challenge.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	log.Printf("[App] Using fixed challenge seed %d", seed)
	return rand.New(rand.NewPCG(seed, seed))
}

// TypingInterval 把设置中的毫秒数转换为任务场景的间隔覆盖值
// 0 表示沿用脚本配置，负数表示立即显示
func TypingInterval(ms int) time.Duration {
	if ms < 0 {
		return -1
	}
	return time.Duration(ms) * time.Millisecond
}

// Update 更新游戏逻辑
// 每个 tick 调用一次（通常每秒 60 次）
func (a *App) Update() error {
	// 延迟设置窗口大小（退出全屏后需要等待几帧才能正确设置）
	if a.pendingWindowSizeReset {
		a.windowSizeResetCountdown--
		if a.windowSizeResetCountdown <= 0 {
			ebiten.SetWindowSize(config.ScreenWidth, config.ScreenHeight)
			log.Printf("[App] Delayed SetWindowSize(%d, %d)", config.ScreenWidth, config.ScreenHeight)
			a.pendingWindowSizeReset = false
		}
	}

	// F11 切换全屏
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		a.toggleFullscreen()
	}

	deltaTime := 1.0 / 60.0
	a.sceneManager.Update(deltaTime)
	return nil
}

// toggleFullscreen 切换全屏并保存设置
func (a *App) toggleFullscreen() {
	if ebiten.IsFullscreen() {
		// 退出全屏
		ebiten.SetFullscreen(false)
		if ebiten.IsWindowMaximized() || ebiten.IsWindowMinimized() {
			ebiten.RestoreWindow()
		}
		// 延迟几帧后设置窗口大小，让窗口管理器有时间处理
		a.pendingWindowSizeReset = true
		a.windowSizeResetCountdown = 3
		log.Printf("[App] Exit fullscreen, will reset window size in 3 frames")
	} else {
		ebiten.SetFullscreen(true)
	}

	a.settingsManager.SetFullscreen(!a.settingsManager.GetSettings().Fullscreen)
	if err := a.settingsManager.Save(); err != nil {
		log.Printf("[App] Warning: failed to save fullscreen setting: %v", err)
	}
}

// Draw 绘制游戏画面
// 每帧调用一次
func (a *App) Draw(screen *ebiten.Image) {
	a.sceneManager.Draw(screen)
}

// DrawFinalScreen 实现 FinalScreenDrawer 接口
// 用于控制全屏时的缩放和 letterbox 颜色
func (a *App) DrawFinalScreen(screen ebiten.FinalScreen, offscreen *ebiten.Image, geoM ebiten.GeoM) {
	// 先填充黑色背景（全屏时左右两边为黑色）
	screen.Fill(color.Black)
	// 使用线性滤波绘制游戏画面，提高缩放质量
	op := &ebiten.DrawImageOptions{}
	op.GeoM = geoM
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(offscreen, op)
}

// Layout 返回游戏的逻辑屏幕尺寸
// 此尺寸独立于实际窗口大小，Ebitengine 会自动处理缩放
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return config.ScreenWidth, config.ScreenHeight
}

// GetSceneManager 返回场景管理器
func (a *App) GetSceneManager() *game.SceneManager {
	return a.sceneManager
}

// IsVerbose 返回是否启用了详细日志
func (a *App) IsVerbose() bool {
	return a.verbose
}
