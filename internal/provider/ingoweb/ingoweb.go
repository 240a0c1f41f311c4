// Package ingoweb 下载 Ingo-web.com 的围棋 SGF。
package ingoweb

import (
	"context"
	"net/url"
	"strings"

	"github.com/John-Robertt/boardsdl/internal/domain"
	"github.com/John-Robertt/boardsdl/internal/fetch"
	"github.com/John-Robertt/boardsdl/internal/provider"
)

const defaultBase = "https://ingo-web.com"

type Provider struct {
	// BaseURL 覆盖 https://ingo-web.com，主要用于测试。
	BaseURL string
}

func (Provider) Identity() domain.Identity {
	return domain.Identity{Name: "Ingo-web.com", Family: domain.Go, Strategy: domain.DownloadLink}
}

// Identify 接受任意带 gid 参数的页面；gid 是 14 位时间戳。
func (Provider) Identify(u *url.URL) (domain.Match, bool) {
	if !provider.HostIs(u, "ingo-web.com") {
		return domain.Match{}, false
	}
	gid := u.Query().Get("gid")
	if len(gid) != 14 || !provider.NumericID(gid) {
		return domain.Match{}, false
	}
	return domain.Match{ID: gid, Type: domain.TypeGame, URL: u.String()}, true
}

func (p Provider) Retrieve(ctx context.Context, m domain.Match, c *fetch.Client) (string, error) {
	base := defaultBase
	if b := strings.TrimSpace(p.BaseURL); b != "" {
		base = strings.TrimRight(b, "/")
	}
	return c.Get(ctx, base+"/jsgo.cgi?m=download&gid="+m.ID)
}

func (Provider) TestLinks() []domain.TestLink {
	return []domain.TestLink{
		{URL: "https://ingo-WEB.com/jsgo.cgi?m=obs&gid=20201213155606", Expect: true},
		{URL: "http://ingo-web.com/jsgo.cgi?m=download&gid=20201213155606", Expect: true},
		{URL: "https://ingo-web.com/jsgo.cgi?m=obs&gid=20200913144432", Expect: false},
		{URL: "https://ingo-web.com/jsgo.cgi?m=obs&gid=123456", Expect: false},
		{URL: "https://ingo-web.com", Expect: false},
	}
}
