package provider

import (
	"errors"
	"fmt"
)

var (
	// ErrNoGame 是 Resolve 对外唯一的失败信号；具体原因通过 errors.As / Attempts 获取。
	ErrNoGame = errors.New("no game found")
	// ErrNoMatch 表示没有任何启用的 provider 认领该 URL。
	ErrNoMatch = errors.New("没有 provider 认领该 URL")
	// ErrParse 表示站点数据的结构不符合预期。
	ErrParse = errors.New("站点数据解析失败")
)

// 调度阶段。
const (
	StageIdentify = "identify"
	StageRetrieve = "retrieve"
	StageSanitize = "sanitize"
	StageOK       = "ok"
)

// Attempt 记录一次 provider 尝试（用于解释失败原因）。
type Attempt struct {
	Provider string // provider name（小写）
	Stage    string
	Err      error // nil when Stage=="ok"
}

// Error 是 provider 阶段的可追溯错误。
type Error struct {
	Provider string // provider name（小写）
	Stage    string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("provider=%s stage=%s: %v", e.Provider, e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Parsef 构造一个包装 ErrParse 的错误。
func Parsef(format string, args ...any) error {
	return fmt.Errorf("%w：%s", ErrParse, fmt.Sprintf(format, args...))
}
