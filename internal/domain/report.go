package domain

import (
	"encoding/json"
	"sort"
	"time"
)

const (
	StatusPassed = "passed"
	StatusFailed = "failed"
)

// SelfTestReport 是 test 命令的稳定输出结构（stdout 非 TTY 时输出 JSON）。
type SelfTestReport struct {
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Summary SelfTestSummary `json:"summary"`
	Items   []CaseResult    `json:"items"`
}

type SelfTestSummary struct {
	Total  int `json:"total"`
	Passed int `json:"passed"`
	Failed int `json:"failed"`
}

// CaseResult 是一条测试链接的执行结果。
// Expect 与 Got 一致即为 passed（期望失败的链接失败也算通过）。
type CaseResult struct {
	Provider string `json:"provider"`
	URL      string `json:"url"`
	Expect   bool   `json:"expect"`
	Got      bool   `json:"got"`

	Status   string `json:"status"`
	ErrorMsg string `json:"error_msg"`

	DurationMS int64 `json:"duration_ms"`
}

// Finalize 统一时间为 UTC，按 provider 稳定排序（同 provider 内保持执行顺序），并重算 summary。
func (r *SelfTestReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()

	sort.SliceStable(r.Items, func(i, j int) bool {
		return r.Items[i].Provider < r.Items[j].Provider
	})

	s := SelfTestSummary{Total: len(r.Items)}
	for _, it := range r.Items {
		switch it.Status {
		case StatusPassed:
			s.Passed++
		case StatusFailed:
			s.Failed++
		}
	}
	r.Summary = s
}

// MarshalJSON 集中约束输出稳定性；当前透传默认行为。
func (r SelfTestReport) MarshalJSON() ([]byte, error) {
	type Alias SelfTestReport
	return json.Marshal(Alias(r))
}
