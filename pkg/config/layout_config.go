package config

// 布局配置常量
// 本文件定义了任务面板的布局参数，所有坐标都是屏幕坐标（左上角为原点）

// Screen Configuration (屏幕配置)
const (
	// ScreenWidth 逻辑屏幕宽度
	ScreenWidth = 800
	// ScreenHeight 逻辑屏幕高度
	ScreenHeight = 600
)

// Quest Panel Configuration (任务面板配置)
const (
	// PanelWidth 面板宽度，占屏幕宽度的 80%
	PanelWidth = ScreenWidth * 0.8
	// PanelHeight 面板高度，占屏幕高度的 60%
	PanelHeight = ScreenHeight * 0.6
	// PanelCenterX 面板中心X坐标
	PanelCenterX = ScreenWidth / 2.0
	// PanelCenterY 面板中心Y坐标
	PanelCenterY = ScreenHeight / 2.0
	// PanelBorderWidth 面板边框宽度
	PanelBorderWidth = 4.0

	// NameTagOffset 名牌距面板左上角的偏移
	NameTagOffset = 10.0
	// NameTagFontSize 名牌字号
	NameTagFontSize = 22.0

	// DialogueX 对话文本左上角X坐标
	DialogueX = ScreenWidth/2.0 - ScreenWidth*0.35
	// DialogueY 对话文本左上角Y坐标
	DialogueY = ScreenHeight/2.0 - ScreenHeight*0.25
	// DialogueWrapWidth 对话文本换行宽度
	DialogueWrapWidth = ScreenWidth * 0.7
	// DialogueFontSize 对话文本字号
	DialogueFontSize = 20.0
	// DialogueLineHeight 对话文本行高
	DialogueLineHeight = 28.0

	// NextButtonX Next 按钮左上角X坐标
	NextButtonX = ScreenWidth - 120.0
	// NextButtonY Next 按钮左上角Y坐标
	NextButtonY = ScreenHeight - 60.0
	// ButtonPadding 按钮文字内边距
	ButtonPadding = 10.0
	// WidgetFontSize 挑战控件字号
	WidgetFontSize = 18.0
)

// Challenge Widget Offsets (挑战控件相对面板中心的Y偏移)
const (
	// BinaryScrollOffsetY 卷轴（取值序列）
	BinaryScrollOffsetY = -100.0
	// BinaryInstructionOffsetY 操作说明
	BinaryInstructionOffsetY = -20.0
	// BinaryInputOffsetY 输入框
	BinaryInputOffsetY = 10.0
	// BinarySubmitOffsetY Submit 按钮
	BinarySubmitOffsetY = 60.0

	// SortInstructionOffsetY 操作说明
	SortInstructionOffsetY = -120.0
	// SortRecordsOffsetY 记录列表
	SortRecordsOffsetY = -80.0
	// SortInputOffsetY 两个位置输入框
	SortInputOffsetY = 0.0
	// SortInputOffsetX 两个位置输入框距中心的水平偏移
	SortInputOffsetX = 100.0
	// SortSwapOffsetY Swap 按钮
	SortSwapOffsetY = 50.0

	// FeedbackOffsetY 反馈文本
	FeedbackOffsetY = 100.0

	// InputWidth 输入框宽度
	InputWidth = 150.0
	// PositionInputWidth 位置输入框宽度
	PositionInputWidth = 80.0
	// InputHeight 输入框高度
	InputHeight = 34.0
)

// Rect 屏幕矩形
type Rect struct {
	X, Y, W, H float64
}

// Contains 检查点是否在矩形内
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// GetPanelBounds 返回任务面板的屏幕矩形
func GetPanelBounds() Rect {
	return Rect{
		X: PanelCenterX - PanelWidth/2,
		Y: PanelCenterY - PanelHeight/2,
		W: PanelWidth,
		H: PanelHeight,
	}
}

// CenteredRect 返回以 (cx, cy) 为中心的矩形
func CenteredRect(cx, cy, w, h float64) Rect {
	return Rect{X: cx - w/2, Y: cy - h/2, W: w, H: h}
}
