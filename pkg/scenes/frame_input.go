package scenes

import (
	"github.com/decker502/algoquest/pkg/config"
	"github.com/decker502/algoquest/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// frameInput 一帧内的键盘和指针输入
// 场景逻辑只读取这个快照，测试可以直接构造它而不依赖 ebiten 的输入状态
type frameInput struct {
	chars     []rune
	backspace bool
	enter     bool
	tab       bool
	left      bool
	right     bool

	clicked bool
	x, y    float64

	// 指针当前位置，用于按钮悬停高亮
	pointerX, pointerY float64
}

// clickedIn 本帧是否点击了矩形区域
func (in frameInput) clickedIn(r config.Rect) bool {
	return in.clicked && r.Contains(in.x, in.y)
}

// readFrameInput 读取当前帧的输入
func readFrameInput() frameInput {
	in := frameInput{
		chars:     ebiten.AppendInputChars(nil),
		backspace: utils.IsRepeatingKey(ebiten.KeyBackspace),
		enter: inpututil.IsKeyJustPressed(ebiten.KeyEnter) ||
			inpututil.IsKeyJustPressed(ebiten.KeyNumpadEnter),
		tab:   inpututil.IsKeyJustPressed(ebiten.KeyTab),
		left:  utils.IsRepeatingKey(ebiten.KeyArrowLeft),
		right: utils.IsRepeatingKey(ebiten.KeyArrowRight),
	}

	px, py := utils.GetPointerPosition()
	in.pointerX, in.pointerY = float64(px), float64(py)

	if clicked, x, y := utils.IsJustTouchedOrClicked(); clicked {
		in.clicked = true
		in.x, in.y = float64(x), float64(y)
	}
	return in
}

// 按钮区域（与绘制共用同一组坐标）

func nextButtonBounds() config.Rect {
	return config.Rect{X: config.NextButtonX, Y: config.NextButtonY, W: 90, H: 36}
}

func submitButtonBounds() config.Rect {
	return config.CenteredRect(config.PanelCenterX, config.PanelCenterY+config.BinarySubmitOffsetY, 110, 36)
}

func swapButtonBounds() config.Rect {
	return config.CenteredRect(config.PanelCenterX, config.PanelCenterY+config.SortSwapOffsetY, 110, 36)
}
