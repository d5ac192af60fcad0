package scenes

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/decker502/algoquest/pkg/challenge"
	"github.com/decker502/algoquest/pkg/config"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// 面板配色
var (
	panelFillColor   = color.RGBA{R: 0x22, G: 0x22, B: 0x22, A: 0xff}
	panelBorderColor = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	nameTagColor     = color.RGBA{R: 0xff, G: 0xd7, B: 0x00, A: 0xff}
	dialogueColor    = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	buttonFillColor  = color.RGBA{R: 0x00, G: 0x00, B: 0x00, A: 0xff}
	buttonTextColor  = color.RGBA{R: 0x00, G: 0xff, B: 0x00, A: 0xff}
	buttonHoverColor = color.RGBA{R: 0x1a, G: 0x3d, B: 0x1a, A: 0xff}
	scrollColor      = color.RGBA{R: 0xff, G: 0xff, B: 0x00, A: 0xff}
	inputFillColor   = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	inputTextColor   = color.RGBA{R: 0x00, G: 0x00, B: 0x00, A: 0xff}
	placeholderColor = color.RGBA{R: 0x88, G: 0x88, B: 0x88, A: 0xff}
	focusBorderColor = color.RGBA{R: 0x00, G: 0xff, B: 0x00, A: 0xff}
	feedbackColor    = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	hintColor        = color.RGBA{R: 0xaa, G: 0xaa, B: 0xaa, A: 0xff}
	overlayColor     = color.RGBA{R: 0x00, G: 0x00, B: 0x00, A: 0x80}
)

// binaryScrollLimit 卷轴一行最多显示的数字个数
const binaryScrollLimit = 25

// Draw 绘制任务面板
func (s *QuestScene) Draw(screen *ebiten.Image) {
	if s.completed {
		return
	}

	vector.DrawFilledRect(screen, 0, 0, config.ScreenWidth, config.ScreenHeight, overlayColor, false)

	panel := config.GetPanelBounds()
	vector.DrawFilledRect(screen, float32(panel.X), float32(panel.Y), float32(panel.W), float32(panel.H), panelFillColor, true)
	vector.StrokeRect(screen, float32(panel.X), float32(panel.Y), float32(panel.W), float32(panel.H),
		config.PanelBorderWidth, panelBorderColor, true)

	s.drawText(screen, s.director.Script().Speaker, s.nameFont, nameTagColor,
		panel.X+config.NameTagOffset, panel.Y+config.NameTagOffset)

	for i, line := range s.lines {
		s.drawText(screen, line, s.dialogueFont, dialogueColor,
			config.DialogueX, config.DialogueY+float64(i)*config.DialogueLineHeight)
	}

	switch c := s.challenge.(type) {
	case nil:
		if !s.director.IsRevealing() || !s.director.Stage().IsGate() {
			s.drawButton(screen, nextButtonBounds(), "Next ➡️")
		}
	case *challenge.BinarySearch:
		s.drawBinarySearch(screen, c)
	case *challenge.Sorting:
		s.drawSorting(screen, c)
	}
}

// drawBinarySearch 绘制猜数字挑战
func (s *QuestScene) drawBinarySearch(screen *ebiten.Image, c *challenge.BinarySearch) {
	cx, cy := config.PanelCenterX, config.PanelCenterY

	s.drawCentered(screen, scrollLine(c.Values()), s.widgetFont, scrollColor, cx, cy+config.BinaryScrollOffsetY)

	lo, hi := c.Range()
	s.drawCentered(screen, fmt.Sprintf("Enter a number (%d-%d) and press Submit", lo, hi),
		s.widgetFont, dialogueColor, cx, cy+config.BinaryInstructionOffsetY)

	s.drawField(screen, s.guessField)
	s.drawButton(screen, submitButtonBounds(), "Submit")
	s.drawFeedback(screen, c)
}

// drawSorting 绘制排序挑战
func (s *QuestScene) drawSorting(screen *ebiten.Image, c *challenge.Sorting) {
	cx, cy := config.PanelCenterX, config.PanelCenterY

	s.drawCentered(screen, "Enter two positions (1-based) and press Swap",
		s.widgetFont, dialogueColor, cx, cy+config.SortInstructionOffsetY)
	s.drawCentered(screen, c.Display(), s.widgetFont, scrollColor, cx, cy+config.SortRecordsOffsetY)

	s.drawField(screen, s.pos1Field)
	s.drawField(screen, s.pos2Field)
	s.drawButton(screen, swapButtonBounds(), "Swap")
	s.drawFeedback(screen, c)
}

// drawFeedback 绘制反馈文本和剩余次数
func (s *QuestScene) drawFeedback(screen *ebiten.Image, c challenge.Challenge) {
	cx, cy := config.PanelCenterX, config.PanelCenterY
	if fb := c.Feedback(); fb != "" {
		s.drawCentered(screen, fb, s.widgetFont, feedbackColor, cx, cy+config.FeedbackOffsetY)
	}
	if s.showHints {
		used, budget := c.Progress()
		s.drawCentered(screen, fmt.Sprintf("%d / %d", used, budget),
			s.widgetFont, hintColor, cx, cy+config.FeedbackOffsetY+config.DialogueLineHeight)
	}
}

// drawField 绘制输入框
func (s *QuestScene) drawField(screen *ebiten.Image, f *textField) {
	if f == nil {
		return
	}
	b := f.Bounds
	vector.DrawFilledRect(screen, float32(b.X), float32(b.Y), float32(b.W), float32(b.H), inputFillColor, true)
	if f.IsFocused {
		vector.StrokeRect(screen, float32(b.X), float32(b.Y), float32(b.W), float32(b.H), 2, focusBorderColor, true)
	}

	clr := inputTextColor
	if f.Text == "" && !f.IsFocused {
		clr = placeholderColor
	}
	s.drawText(screen, f.displayText(), s.widgetFont, clr, b.X+6, b.Y+(b.H-config.WidgetFontSize)/2)
}

// drawButton 绘制文字按钮
func (s *QuestScene) drawButton(screen *ebiten.Image, b config.Rect, label string) {
	fill := buttonFillColor
	if s.isHovered(b) {
		fill = buttonHoverColor
	}
	vector.DrawFilledRect(screen, float32(b.X), float32(b.Y), float32(b.W), float32(b.H), fill, true)
	s.drawCentered(screen, label, s.widgetFont, buttonTextColor, b.X+b.W/2, b.Y+b.H/2)
}

// drawText 在 (x, y) 左上角绘制文本
func (s *QuestScene) drawText(screen *ebiten.Image, str string, face *text.GoTextFace, clr color.Color, x, y float64) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(clr)
	text.Draw(screen, str, face, op)
}

// drawCentered 以 (cx, cy) 为中心绘制文本
func (s *QuestScene) drawCentered(screen *ebiten.Image, str string, face *text.GoTextFace, clr color.Color, cx, cy float64) {
	drawCenteredText(screen, str, face, clr, cx, cy)
}

// scrollLine 把取值序列格式化为卷轴文本，过长时折叠中间部分
func scrollLine(values []int) string {
	if len(values) <= binaryScrollLimit {
		parts := make([]string, len(values))
		for i, v := range values {
			parts[i] = strconv.Itoa(v)
		}
		return strings.Join(parts, " ")
	}

	head := binaryScrollLimit / 2
	tail := binaryScrollLimit - head - 1
	parts := make([]string, 0, binaryScrollLimit)
	for _, v := range values[:head] {
		parts = append(parts, strconv.Itoa(v))
	}
	parts = append(parts, "...")
	for _, v := range values[len(values)-tail:] {
		parts = append(parts, strconv.Itoa(v))
	}
	return strings.Join(parts, " ")
}
