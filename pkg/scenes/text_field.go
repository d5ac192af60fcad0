package scenes

import (
	"unicode"

	"github.com/decker502/algoquest/pkg/config"
)

// cursorBlinkInterval 光标闪烁间隔（秒）
const cursorBlinkInterval = 0.5

// textField 单行文本输入框
// 挑战的猜测值和交换位置都通过它输入，内容原样交给挑战校验
type textField struct {
	Text        string // 当前输入的文本
	Placeholder string // 输入框为空时显示
	MaxLength   int    // 最大字符数（0 = 无限制）
	Bounds      config.Rect

	CursorPosition   int     // 光标位置（字符索引）
	CursorVisible    bool    // 光标是否可见（闪烁效果）
	CursorBlinkTimer float64 // 光标闪烁计时器（秒）
	IsFocused        bool    // 是否接收键盘输入
}

// newTextField 创建输入框
func newTextField(bounds config.Rect, maxLength int, placeholder string) *textField {
	return &textField{
		Bounds:      bounds,
		MaxLength:   maxLength,
		Placeholder: placeholder,
	}
}

// update 更新光标闪烁
func (f *textField) update(deltaTime float64) {
	if !f.IsFocused {
		f.CursorVisible = false
		return
	}
	f.CursorBlinkTimer += deltaTime
	if f.CursorBlinkTimer >= cursorBlinkInterval {
		f.CursorBlinkTimer = 0
		f.CursorVisible = !f.CursorVisible
	}
}

// apply 把本帧的键盘输入应用到输入框
func (f *textField) apply(in frameInput) {
	if !f.IsFocused {
		return
	}
	changed := false
	if len(in.chars) > 0 {
		f.insertText(string(in.chars))
		changed = true
	}
	if in.backspace {
		f.deleteCharBefore()
		changed = true
	}
	if in.left && f.CursorPosition > 0 {
		f.CursorPosition--
		changed = true
	}
	if in.right && f.CursorPosition < len([]rune(f.Text)) {
		f.CursorPosition++
		changed = true
	}
	// 输入时光标应该可见
	if changed {
		f.CursorBlinkTimer = 0
		f.CursorVisible = true
	}
}

// insertText 在光标位置插入文本，过滤控制字符
func (f *textField) insertText(s string) {
	var filtered []rune
	for _, r := range s {
		if unicode.IsPrint(r) {
			filtered = append(filtered, r)
		}
	}
	if len(filtered) == 0 {
		return
	}

	runes := []rune(f.Text)
	if f.MaxLength > 0 && len(runes)+len(filtered) > f.MaxLength {
		filtered = filtered[:max(0, f.MaxLength-len(runes))]
		if len(filtered) == 0 {
			return
		}
	}

	result := make([]rune, 0, len(runes)+len(filtered))
	result = append(result, runes[:f.CursorPosition]...)
	result = append(result, filtered...)
	result = append(result, runes[f.CursorPosition:]...)

	f.Text = string(result)
	f.CursorPosition += len(filtered)
}

// deleteCharBefore 删除光标前的字符（退格）
func (f *textField) deleteCharBefore() {
	if f.CursorPosition == 0 {
		return
	}
	runes := []rune(f.Text)
	f.Text = string(append(runes[:f.CursorPosition-1:f.CursorPosition-1], runes[f.CursorPosition:]...))
	f.CursorPosition--
}

// clear 清空内容
func (f *textField) clear() {
	f.Text = ""
	f.CursorPosition = 0
}

// focus 设置焦点
func (f *textField) focus(focused bool) {
	f.IsFocused = focused
	f.CursorBlinkTimer = 0
	f.CursorVisible = focused
}

// displayText 返回用于绘制的文本（含光标）
func (f *textField) displayText() string {
	if f.Text == "" && !f.IsFocused {
		return f.Placeholder
	}
	if !f.CursorVisible {
		return f.Text
	}
	runes := []rune(f.Text)
	return string(runes[:f.CursorPosition]) + "|" + string(runes[f.CursorPosition:])
}
