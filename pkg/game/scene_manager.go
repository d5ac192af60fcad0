package game

import (
	"log"

	"github.com/hajimehoshi/ebiten/v2"
)

// SceneManager manages the game's high-level state by controlling which scene is active.
// It ensures only one scene's Update and Draw methods are called at any given time.
//
// 场景以栈的方式管理：任务面板 Push 到营地场景之上，任务结束后 Pop 回到营地。
type SceneManager struct {
	stack []Scene
}

// NewSceneManager creates and returns a new SceneManager instance.
// The manager starts with no active scene; use SwitchTo to set the initial scene.
func NewSceneManager() *SceneManager {
	return &SceneManager{}
}

// SwitchTo replaces the whole scene stack with the provided scene.
func (sm *SceneManager) SwitchTo(scene Scene) {
	sm.stack = sm.stack[:0]
	if scene != nil {
		sm.stack = append(sm.stack, scene)
	}
}

// Push 把场景压到当前场景之上，当前场景（如果实现了 Pausable）被暂停
func (sm *SceneManager) Push(scene Scene) {
	if scene == nil {
		return
	}
	if parent := sm.GetCurrentScene(); parent != nil {
		if p, ok := parent.(Pausable); ok {
			p.Pause()
		}
	}
	sm.stack = append(sm.stack, scene)
	log.Printf("[SceneManager] Pushed scene (depth=%d)", len(sm.stack))
}

// Pop 弹出当前场景并恢复父场景
//
// 返回：
//   - Scene: 被弹出的场景，栈中只剩一个或没有场景时返回 nil（根场景不会被弹出）
func (sm *SceneManager) Pop() Scene {
	if len(sm.stack) < 2 {
		log.Printf("[SceneManager] Pop ignored: no parent scene")
		return nil
	}

	top := sm.stack[len(sm.stack)-1]
	sm.stack[len(sm.stack)-1] = nil
	sm.stack = sm.stack[:len(sm.stack)-1]

	if p, ok := sm.GetCurrentScene().(Pausable); ok {
		p.Resume()
	}
	log.Printf("[SceneManager] Popped scene (depth=%d)", len(sm.stack))
	return top
}

// GetCurrentScene 返回当前活动的场景
//
// 返回：
//   - Scene: 当前场景，如果没有活动场景则返回 nil
func (sm *SceneManager) GetCurrentScene() Scene {
	if len(sm.stack) == 0 {
		return nil
	}
	return sm.stack[len(sm.stack)-1]
}

// Depth 返回场景栈深度
func (sm *SceneManager) Depth() int {
	return len(sm.stack)
}

// Update updates the currently active scene.
// If no scene is active, this method does nothing.
// deltaTime is the time elapsed since the last update in seconds.
func (sm *SceneManager) Update(deltaTime float64) {
	if scene := sm.GetCurrentScene(); scene != nil {
		scene.Update(deltaTime)
	}
}

// Draw renders the scene stack to the provided screen.
// 父场景先绘制，覆盖场景绘制在其上（任务面板半透明显示在营地之上）。
func (sm *SceneManager) Draw(screen *ebiten.Image) {
	for _, scene := range sm.stack {
		scene.Draw(screen)
	}
}
