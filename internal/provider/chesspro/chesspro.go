// Package chesspro 读取 ChessPro.ru 文章中 OpenGame 控件的着法。
package chesspro

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/John-Robertt/boardsdl/internal/domain"
	"github.com/John-Robertt/boardsdl/internal/fetch"
	"github.com/John-Robertt/boardsdl/internal/provider"
)

const defaultBase = "https://chesspro.ru"

var widgetRE = regexp.MustCompile(`(?i)OpenGame\(\s*"g[0-9]+"\s*,"(.*)"\s*\)\s*;`)

type Provider struct {
	// BaseURL 覆盖 https://chesspro.ru，主要用于测试。
	BaseURL string
}

func (Provider) Identity() domain.Identity {
	return domain.Identity{Name: "ChessPro.ru", Family: domain.Chess, Strategy: domain.HTMLParsing}
}

func (Provider) Identify(u *url.URL) (domain.Match, bool) {
	if !provider.HostIs(u, "chesspro.ru") {
		return domain.Match{}, false
	}
	return domain.Match{ID: u.RequestURI(), Type: domain.TypeGame, URL: u.String()}, true
}

func (p Provider) Retrieve(ctx context.Context, m domain.Match, c *fetch.Client) (string, error) {
	base := defaultBase
	if b := strings.TrimSpace(p.BaseURL); b != "" {
		base = strings.TrimRight(b, "/")
	}
	page, err := c.Get(ctx, base+m.ID)
	if err != nil {
		return "", err
	}
	for _, line := range strings.Split(page, "\n") {
		if sm := widgetRE.FindStringSubmatch(line); sm != nil {
			return "[Annotator \"ChessPro.ru\"]\n" + sm[1], nil
		}
	}
	return "", provider.Parsef("文章中没有对局")
}

func (Provider) TestLinks() []domain.TestLink {
	return []domain.TestLink{
		{URL: "https://chessPRO.ru/details/grand_prix_moscow19_day8", Expect: true},
		{URL: "https://chesspro.ru/details/grand_prix_moscow19_day11", Expect: false},
		{URL: "https://chesspro.ru", Expect: false},
	}
}
