// Package typing 实现打字机效果的文本逐字显示
package typing

import (
	"log"
	"strings"
	"time"

	"github.com/decker502/algoquest/pkg/scheduler"
	"github.com/rivo/uniseg"
)

// DefaultInterval 默认每个字符的显示间隔（与原版任务窗口一致）
const DefaultInterval = 20 * time.Millisecond

// Presenter 打字机文本显示器
//
// 每个 tick 追加一个字素簇（grapheme cluster），组合 emoji（如 "👨‍🦲"）算作一个字符。
// 新的 Reveal 会取消正在进行的显示，旧文本的字符不会混入新文本。
type Presenter struct {
	sched *scheduler.Scheduler

	graphemes []string
	shown     int
	text      strings.Builder
	handle    scheduler.Handle

	// generation 每次 Reveal/Cancel 递增，过期回调据此失效
	generation uint64
	revealing  bool

	onUpdate func(string)
	onDone   func()
}

// NewPresenter 创建打字机显示器
// 参数：
//   - sched: 驱动 tick 的调度器
func NewPresenter(sched *scheduler.Scheduler) *Presenter {
	return &Presenter{sched: sched}
}

// Reveal 开始逐字显示 text
//
// 参数：
//   - text: 完整文本
//   - interval: 每个字符的间隔，<= 0 时立即显示全文
//   - onUpdate: 每次文本变化时回调（首先以空字符串调用一次），可为 nil
//   - onDone: 全部字符显示完毕后回调，可为 nil；被取消的显示不会回调
func (p *Presenter) Reveal(text string, interval time.Duration, onUpdate func(string), onDone func()) {
	p.Cancel()

	p.generation++
	gen := p.generation
	p.graphemes = splitGraphemes(text)
	p.shown = 0
	p.text.Reset()
	p.onUpdate = onUpdate
	p.onDone = onDone
	p.revealing = true

	p.emit()

	if len(p.graphemes) == 0 {
		p.finish(gen)
		return
	}

	if interval <= 0 {
		for _, g := range p.graphemes {
			p.text.WriteString(g)
		}
		p.shown = len(p.graphemes)
		p.emit()
		p.finish(gen)
		return
	}

	p.handle = p.sched.Every(interval, func() bool {
		if gen != p.generation {
			return false
		}
		p.text.WriteString(p.graphemes[p.shown])
		p.shown++
		p.emit()
		if p.shown >= len(p.graphemes) {
			p.handle = 0
			p.finish(gen)
			return false
		}
		return true
	})
}

// Cancel 立即停止当前显示，已显示的部分保留
// 没有进行中的显示时调用无副作用
func (p *Presenter) Cancel() {
	if !p.revealing {
		return
	}
	if p.handle != 0 {
		p.sched.Cancel(p.handle)
		p.handle = 0
	}
	p.generation++
	p.revealing = false
	p.onUpdate = nil
	p.onDone = nil
	log.Printf("[Typing] Reveal cancelled at %d/%d", p.shown, len(p.graphemes))
}

// Text 返回当前已显示的文本
func (p *Presenter) Text() string {
	return p.text.String()
}

// IsRevealing 返回是否正在逐字显示
func (p *Presenter) IsRevealing() bool {
	return p.revealing
}

// Progress 返回已显示和总字符数
func (p *Presenter) Progress() (shown, total int) {
	return p.shown, len(p.graphemes)
}

func (p *Presenter) emit() {
	if p.onUpdate != nil {
		p.onUpdate(p.text.String())
	}
}

func (p *Presenter) finish(gen uint64) {
	if gen != p.generation {
		return
	}
	p.revealing = false
	done := p.onDone
	p.onUpdate = nil
	p.onDone = nil
	if done != nil {
		done()
	}
}

// splitGraphemes 按字素簇拆分文本
func splitGraphemes(text string) []string {
	result := make([]string, 0, len(text))
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		result = append(result, g.Str())
	}
	return result
}
