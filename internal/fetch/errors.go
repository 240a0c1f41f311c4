package fetch

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmpty 表示响应在解码、去 BOM、去空白之后为空。
	ErrEmpty = errors.New("响应内容为空")
	// ErrDecode 表示响应无法按任何候选字符集解码。
	ErrDecode = errors.New("响应解码失败")
)

// HTTPStatusError 表示站点返回了非 2xx 的 HTTP 状态码。
type HTTPStatusError struct {
	URL        string
	StatusCode int
	Location   string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "HTTP status error"
	}
	loc := strings.TrimSpace(e.Location)
	if loc == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d location=%s", e.StatusCode, loc)
}
