package provider

import (
	"context"
	"net/url"

	"github.com/John-Robertt/boardsdl/internal/domain"
	"github.com/John-Robertt/boardsdl/internal/fetch"
)

// Provider 把“站点差异”限制在各自的子包内；调度流程只依赖统一接口。
//
// 约束：
// - Identify 必须是纯函数：不做 I/O，相同输入 => 相同输出
// - Retrieve 返回未清洗的文本；请求级状态全部通过 Match 传入，provider 值可并发共享
// - TestLinks 至少包含一个期望成功与一个期望失败的链接
type Provider interface {
	Identity() domain.Identity
	Identify(u *url.URL) (domain.Match, bool)
	Retrieve(ctx context.Context, m domain.Match, c *fetch.Client) (string, error)
	TestLinks() []domain.TestLink
}

// Toggler 是可选接口：站点暂时不可用时返回 false，调度时整体跳过。
type Toggler interface {
	Enabled() bool
}

// Enabled 对未实现 Toggler 的 provider 返回 true。
func Enabled(p Provider) bool {
	if t, ok := p.(Toggler); ok {
		return t.Enabled()
	}
	return true
}

// Describe 返回 "<Family> - <Name>"。
func Describe(p Provider) string {
	return p.Identity().Describe()
}
