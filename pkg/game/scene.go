package game

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Scene 场景接口，营地和任务面板都实现它
//
// SceneManager 每帧对栈顶场景调用 Update，
// 对整个场景栈从底到顶调用 Draw（任务面板画在营地之上）。
type Scene interface {
	// Update 推进场景逻辑，deltaTime 为距上一帧的秒数
	Update(deltaTime float64)

	// Draw 把场景画到 screen 上
	Draw(screen *ebiten.Image)
}

// Pausable 可选接口，被任务场景覆盖时暂停、重新回到栈顶时恢复
//
//   - Pause(): 有新场景被 Push 到它上面
//   - Resume(): 上层场景 Pop 后它重新成为当前场景
type Pausable interface {
	Pause()
	Resume()
}
