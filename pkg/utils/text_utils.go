package utils

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/goregular"
)

// NewDefaultFaceSource 创建内置字体源（Go Regular）
func NewDefaultFaceSource() (*text.GoTextFaceSource, error) {
	return text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
}

// StripEmphasis 去掉脚本文本中的 **强调** 标记
func StripEmphasis(textStr string) string {
	return strings.ReplaceAll(textStr, "**", "")
}

// WrapText 将文本按指定宽度自动换行
// 参数:
//   - textStr: 要换行的文本
//   - font: 字体
//   - maxWidth: 最大宽度（像素）
//
// 返回:
//   - []string: 换行后的文本数组（每个元素为一行）
//
// 换行规则:
//   - 保留文本中的 \n
//   - 优先在空格处断行
//   - 如果单词太长超过最大宽度，按字符强制断行
func WrapText(textStr string, font *text.GoTextFace, maxWidth float64) []string {
	if textStr == "" || font == nil || maxWidth <= 0 {
		return []string{textStr}
	}

	// 如果文本宽度小于最大宽度，直接返回
	if !strings.Contains(textStr, "\n") && measureTextWidth(textStr, font) <= maxWidth {
		return []string{textStr}
	}

	var lines []string
	for _, paragraph := range strings.Split(textStr, "\n") {
		lines = append(lines, wrapParagraph(paragraph, font, maxWidth)...)
	}
	return lines
}

// wrapParagraph 对不含换行符的一段文本按单词换行
func wrapParagraph(paragraph string, font *text.GoTextFace, maxWidth float64) []string {
	words := strings.Fields(paragraph)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	currentLine := ""
	for _, word := range words {
		testLine := word
		if currentLine != "" {
			testLine = currentLine + " " + word
		}
		if measureTextWidth(testLine, font) <= maxWidth {
			currentLine = testLine
			continue
		}

		// 当前行结束，开始新行
		if currentLine != "" {
			lines = append(lines, currentLine)
			currentLine = ""
		}
		if measureTextWidth(word, font) <= maxWidth {
			currentLine = word
			continue
		}

		// 单词本身超宽，按字符强制断行
		chunks := breakWord(word, font, maxWidth)
		lines = append(lines, chunks[:len(chunks)-1]...)
		currentLine = chunks[len(chunks)-1]
	}

	if currentLine != "" {
		lines = append(lines, currentLine)
	}
	return lines
}

// breakWord 按字符把超宽单词拆成多段
func breakWord(word string, font *text.GoTextFace, maxWidth float64) []string {
	var chunks []string
	current := ""
	for len(word) > 0 {
		r, size := utf8.DecodeRuneInString(word)
		char := string(r)
		word = word[size:]

		if current != "" && measureTextWidth(current+char, font) > maxWidth {
			chunks = append(chunks, current)
			current = char
			continue
		}
		current += char
	}
	return append(chunks, current)
}

// measureTextWidth 测量文本宽度
func measureTextWidth(textStr string, font *text.GoTextFace) float64 {
	if textStr == "" || font == nil {
		return 0
	}

	width, _ := text.Measure(textStr, font, 0)
	return width
}
