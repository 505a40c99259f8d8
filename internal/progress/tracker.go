// Package progress 终端进度条，按幻灯片粒度推进。
package progress

import (
	"sync"

	"github.com/pterm/pterm"
)

// Tracker 幻灯片翻译进度。quiet 模式下所有方法是空操作，
// 方便测试与非交互环境直接复用同一条调用路径。
type Tracker struct {
	mu    sync.Mutex
	bar   *pterm.ProgressbarPrinter
	quiet bool
}

// NewTracker 创建并启动进度条。total 为幻灯片总数。
func NewTracker(title string, total int, quiet bool) *Tracker {
	t := &Tracker{quiet: quiet}
	if quiet || total <= 0 {
		t.quiet = true
		return t
	}
	bar, err := pterm.DefaultProgressbar.
		WithTotal(total).
		WithTitle(title).
		WithRemoveWhenDone(false).
		Start()
	if err != nil {
		// 终端不可用时退化为静默
		t.quiet = true
		return t
	}
	t.bar = bar
	return t
}

// Increment 前进一张幻灯片
func (t *Tracker) Increment() {
	if t.quiet {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.bar.Increment()
}

// Done 停止进度条
func (t *Tracker) Done() {
	if t.quiet {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := t.bar.Stop(); err != nil {
		pterm.Debug.Println(err)
	}
}
