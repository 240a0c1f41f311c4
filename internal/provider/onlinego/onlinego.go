// Package onlinego 通过 online-go.com 的公开接口下载 SGF。
package onlinego

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/John-Robertt/boardsdl/internal/domain"
	"github.com/John-Robertt/boardsdl/internal/fetch"
)

var urlRE = regexp.MustCompile(`(?i)^https?://online-go\.com/(api/v1/)?games?/([0-9]+)[/?#]?`)

const defaultBase = "https://online-go.com"

type Provider struct {
	// BaseURL 覆盖 https://online-go.com，主要用于测试。
	BaseURL string
}

func (Provider) Identity() domain.Identity {
	return domain.Identity{Name: "Online-go.com", Family: domain.Go, Strategy: domain.DownloadLink}
}

func (Provider) Identify(u *url.URL) (domain.Match, bool) {
	s := u.String()
	m := urlRE.FindStringSubmatch(s)
	if m == nil || strings.TrimLeft(m[2], "0") == "" {
		return domain.Match{}, false
	}
	return domain.Match{ID: m[2], Type: domain.TypeGame, URL: s}, true
}

func (p Provider) base() string {
	if b := strings.TrimSpace(p.BaseURL); b != "" {
		return strings.TrimRight(b, "/")
	}
	return defaultBase
}

func (p Provider) Retrieve(ctx context.Context, m domain.Match, c *fetch.Client) (string, error) {
	return c.GetUA(ctx, p.base()+"/api/v1/games/"+m.ID+"/sgf")
}

func (Provider) TestLinks() []domain.TestLink {
	return []domain.TestLink{
		{URL: "http://online-go.com/game/30113933#tag", Expect: true},
		{URL: "http://online-go.com/game/999930113933#tag", Expect: false},
		{URL: "https://ONLINE-GO.com/api/v1/games/30113933/sgf", Expect: true},
		{URL: "https://online-go.com/api/v1/games/30113933/sgf?ai_review=0b0e875a-b3a3-4a3c-847c-a7474e50d6c5", Expect: true},
		{URL: "https://online-go.com", Expect: false},
	}
}
