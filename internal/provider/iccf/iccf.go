// Package iccf 下载 ICCF.com 的对局与赛事 PGN。
package iccf

import (
	"context"
	"net/url"
	"strings"

	"github.com/John-Robertt/boardsdl/internal/domain"
	"github.com/John-Robertt/boardsdl/internal/fetch"
	"github.com/John-Robertt/boardsdl/internal/provider"
)

const defaultBase = "https://www.iccf.com"

type Provider struct {
	// BaseURL 覆盖 https://www.iccf.com，主要用于测试。
	BaseURL string
}

func (Provider) Identity() domain.Identity {
	return domain.Identity{Name: "Iccf.com", Family: domain.Chess, Strategy: domain.DownloadLink}
}

func (Provider) Identify(u *url.URL) (domain.Match, bool) {
	if !provider.HostIs(u, "iccf.com") {
		return domain.Match{}, false
	}
	var t domain.URLType
	switch p := strings.ToLower(u.Path); {
	case strings.Contains(p, "/game"):
		t = domain.TypeGame
	case strings.Contains(p, "/event"):
		t = domain.TypeEvent
	default:
		return domain.Match{}, false
	}
	id := u.Query().Get("id")
	if !provider.NumericID(id) {
		return domain.Match{}, false
	}
	return domain.Match{ID: id, Type: t, URL: u.String()}, true
}

func (p Provider) Retrieve(ctx context.Context, m domain.Match, c *fetch.Client) (string, error) {
	base := defaultBase
	if b := strings.TrimSpace(p.BaseURL); b != "" {
		base = strings.TrimRight(b, "/")
	}
	endpoint := "/GetPGN.aspx?id="
	if m.Type == domain.TypeEvent {
		endpoint = "/GetEventPGN.aspx?id="
	}
	text, err := c.Get(ctx, base+endpoint+m.ID)
	if err != nil {
		return "", err
	}
	if strings.Contains(text, "does not exist.") || strings.Contains(text, "Invalid event") {
		return "", provider.Parsef("%s %s 不存在", m.Type, m.ID)
	}
	return text, nil
}

func (Provider) TestLinks() []domain.TestLink {
	return []domain.TestLink{
		{URL: "https://www.iccf.COM/game?id=154976&param=foobar", Expect: true},
		{URL: "https://www.iccf.com/GetPGN.aspx?id=154976", Expect: false},
		{URL: "https://www.iccf.com/game?id=abc123", Expect: false},
		{URL: "https://www.iccf.com/officials?id=154976", Expect: false},
		{URL: "https://www.iccf.com", Expect: false},
		{URL: "https://ICCF.com/event?id=13581#tag", Expect: true},
		{URL: "https://www.iccf.com/GetEventPGN.aspx?id=13581", Expect: false},
		{URL: "https://www.iccf.com/event?id=abc123", Expect: false},
	}
}
