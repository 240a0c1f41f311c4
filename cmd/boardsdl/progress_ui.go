package main

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/John-Robertt/boardsdl/internal/domain"
	"github.com/John-Robertt/boardsdl/internal/provider"
)

var _ provider.Observer = (*selftestUI)(nil)

// selftestUI 是 test 命令在交互终端下的进度输出。
//
// 过程信息全部写到 stderr，stdout 只留给汇总表。
// WebSocket 站点可能长时间无响应：超过 keepaliveThreshold 没有输出时定期打印一行进度。
type selftestUI struct {
	w io.Writer

	mu          sync.Mutex
	startedAt   time.Time
	lastPrinted time.Time

	total int
	done  int
	ok    int
	fail  int

	keepaliveThreshold time.Duration
	tickerInterval     time.Duration

	stopCh        chan struct{}
	tickerStarted bool
}

func newSelftestUI(w io.Writer) *selftestUI {
	return &selftestUI{
		w:                  w,
		keepaliveThreshold: 6 * time.Second,
		tickerInterval:     2 * time.Second,
	}
}

func (p *selftestUI) OnStart(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	p.startedAt = now
	p.total = total
	fmt.Fprintf(p.w, "[%s] boardsdl test: links=%d\n\n", now.Format("15:04:05"), total)
	p.lastPrinted = now
	if total > 0 && !p.tickerStarted {
		p.startTickerLocked()
	}
}

func (p *selftestUI) OnCaseDone(idx, total int, res domain.CaseResult) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done = idx
	p.total = total
	status := "PASS"
	if res.Status == domain.StatusPassed {
		p.ok++
	} else {
		p.fail++
		status = "FAIL"
	}

	dur := formatShortDuration(time.Duration(res.DurationMS) * time.Millisecond)
	if res.Status == domain.StatusFailed {
		fmt.Fprintf(p.w, "[%d/%d] %s %s %s expect=%s: %s (%s)\n",
			idx, total, status, res.Provider, res.URL, expectWord(res.Expect), truncate(res.ErrorMsg, 160), dur)
	} else {
		fmt.Fprintf(p.w, "[%d/%d] %s %s %s (%s)\n", idx, total, status, res.Provider, res.URL, dur)
	}
	p.lastPrinted = time.Now()

	// 最后一条完成：停止 ticker，避免在结束打印后又冒出 keepalive。
	if p.done >= p.total {
		p.stopTickerLocked()
	}
}

// Close 停止 keepalive（自检被取消、没有走完全部链接时也要调用）。
func (p *selftestUI) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopTickerLocked()
}

func (p *selftestUI) stopTickerLocked() {
	if p.tickerStarted {
		close(p.stopCh)
		p.tickerStarted = false
	}
}

func (p *selftestUI) startTickerLocked() {
	p.stopCh = make(chan struct{})
	p.tickerStarted = true
	stop := p.stopCh

	interval := p.tickerInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	threshold := p.keepaliveThreshold
	if threshold <= 0 {
		threshold = 6 * time.Second
	}

	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-t.C:
				p.mu.Lock()
				if p.total > 0 && p.done < p.total && time.Since(p.lastPrinted) > threshold {
					fmt.Fprintf(p.w, "进度: done=%d/%d pass=%d fail=%d elapsed=%s\n",
						p.done, p.total, p.ok, p.fail, formatElapsed(time.Since(p.startedAt)))
					p.lastPrinted = time.Now()
				}
				p.mu.Unlock()
			case <-stop:
				return
			}
		}
	}()
}

func expectWord(ok bool) string {
	if ok {
		return "game"
	}
	return "none"
}

func formatShortDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	sec := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d:%02d", sec/3600, (sec%3600)/60, sec%60)
}

// formatAttempts 把一次调度的尝试链压成一行，供日志使用。
func formatAttempts(attempts []provider.Attempt) string {
	parts := make([]string, 0, len(attempts))
	for _, a := range attempts {
		s := a.Provider + ":" + a.Stage
		if a.Err != nil {
			s += ":" + truncate(a.Err.Error(), 80)
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ";")
}
