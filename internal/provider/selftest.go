package provider

import (
	"context"
	"errors"
	"time"

	"github.com/John-Robertt/boardsdl/internal/domain"
)

// Observer 用于把自检进度从执行流程中解耦出来。provider 包只发事件，不做任何输出。
type Observer interface {
	// OnStart 在自检开始时调用，total 为将要执行的链接数。
	OnStart(total int)
	// OnCaseDone 在每条链接执行完成时调用。
	OnCaseDone(idx, total int, res domain.CaseResult)
}

// SelfTest 依次执行 provider 自带的测试链接（一次只有一个网络会话）。
//
// only 非空时只测试该名称的 provider。链接直接交给所属 provider，不经过短 ID 展开与优先级调度。
func (d *Dispatcher) SelfTest(ctx context.Context, only string, obs Observer) domain.SelfTestReport {
	rep := domain.SelfTestReport{StartedAt: time.Now().UTC()}

	type job struct {
		p    Provider
		link domain.TestLink
	}
	var jobs []job
	for _, p := range d.Active() {
		if only != "" && Key(p.Identity().Name) != Key(only) {
			continue
		}
		for _, l := range p.TestLinks() {
			jobs = append(jobs, job{p: p, link: l})
		}
	}
	if obs != nil {
		obs.OnStart(len(jobs))
	}

	for i, j := range jobs {
		if ctx.Err() != nil {
			break
		}
		started := time.Now()
		got, err := d.check(ctx, j.p, j.link.URL)

		cr := domain.CaseResult{
			Provider:   j.p.Identity().Name,
			URL:        j.link.URL,
			Expect:     j.link.Expect,
			Got:        got,
			Status:     domain.StatusPassed,
			DurationMS: time.Since(started).Milliseconds(),
		}
		if got != j.link.Expect {
			cr.Status = domain.StatusFailed
			if err != nil {
				cr.ErrorMsg = err.Error()
			} else {
				cr.ErrorMsg = "期望失败但获取到了棋谱"
			}
		}
		rep.Items = append(rep.Items, cr)
		if obs != nil {
			obs.OnCaseDone(i+1, len(jobs), cr)
		}
	}

	rep.FinishedAt = time.Now().UTC()
	rep.Finalize()
	return rep
}

func (d *Dispatcher) check(ctx context.Context, p Provider, raw string) (bool, error) {
	u, err := parseURL(raw)
	if err != nil {
		return false, err
	}
	res, matched, err := d.run(ctx, p, u)
	if !matched {
		return false, ErrNoMatch
	}
	if err != nil {
		var pe *Error
		if errors.As(err, &pe) {
			return false, pe
		}
		return false, err
	}
	return res.Text != "", nil
}
