// Package goshrine 下载 GoShrine.com 的 SGF。
package goshrine

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/John-Robertt/boardsdl/internal/domain"
	"github.com/John-Robertt/boardsdl/internal/fetch"
	"github.com/John-Robertt/boardsdl/internal/provider"
)

const defaultBase = "http://goshrine.com"

var urlRE = regexp.MustCompile(`(?i)^https?://goshrine\.com/g/([a-z0-9]{8})[/?#]?`)

type Provider struct {
	// BaseURL 覆盖 http://goshrine.com，主要用于测试。
	BaseURL string
}

func (Provider) Identity() domain.Identity {
	return domain.Identity{Name: "GoShrine.com", Family: domain.Go, Strategy: domain.DownloadLink}
}

func (Provider) Identify(u *url.URL) (domain.Match, bool) {
	s := u.String()
	if m := urlRE.FindStringSubmatch(s); m != nil {
		return domain.Match{ID: m[1], Type: domain.TypeGame, URL: s}, true
	}
	return domain.Match{}, false
}

func (p Provider) Retrieve(ctx context.Context, m domain.Match, c *fetch.Client) (string, error) {
	base := defaultBase
	if b := strings.TrimSpace(p.BaseURL); b != "" {
		base = strings.TrimRight(b, "/")
	}
	text, err := c.Get(ctx, base+"/g/"+m.ID+".sgf")
	if err != nil {
		return "", err
	}
	// 站点对不存在的对局仍返回 200。
	if strings.TrimSpace(text) == "Game not found!" {
		return "", provider.Parsef("对局 %s 不存在", m.ID)
	}
	return text, nil
}

func (Provider) TestLinks() []domain.TestLink {
	return []domain.TestLink{
		{URL: "http://goshrine.com/g/f8a82242", Expect: true},
		{URL: "http://goshrine.com/g/f8a82242#tag", Expect: true},
		{URL: "http://goshrine.com/g/f8a82242?arg", Expect: true},
		{URL: "http://goshrine.com/g/aabbccdd", Expect: false},
		{URL: "http://goshrine.com", Expect: false},
	}
}
