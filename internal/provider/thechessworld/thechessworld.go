// Package thechessworld 收集 TheChessWorld.com 文章引用的 PGN 文件。
package thechessworld

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/John-Robertt/boardsdl/internal/domain"
	"github.com/John-Robertt/boardsdl/internal/fetch"
	"github.com/John-Robertt/boardsdl/internal/provider"
)

const defaultBase = "https://www.thechessworld.com"

var pgnURIRE = regexp.MustCompile(`(?i)pgn_uri:.*'([^']+)'`)

type Provider struct {
	// BaseURL 覆盖 https://www.thechessworld.com，主要用于测试。
	BaseURL string
}

func (Provider) Identity() domain.Identity {
	return domain.Identity{Name: "TheChessWorld.com", Family: domain.Chess, Strategy: domain.DownloadLink}
}

func (Provider) Identify(u *url.URL) (domain.Match, bool) {
	if !provider.HostIs(u, "thechessworld.com") {
		return domain.Match{}, false
	}
	return domain.Match{ID: u.RequestURI(), Type: domain.TypeGame, URL: u.String()}, true
}

func (p Provider) Retrieve(ctx context.Context, m domain.Match, c *fetch.Client) (string, error) {
	base := defaultBase
	if b := strings.TrimSpace(p.BaseURL); b != "" {
		base = strings.TrimRight(b, "/")
	}
	var links []string
	if strings.HasSuffix(strings.ToLower(m.ID), ".pgn") {
		links = append(links, base+m.ID)
	} else {
		page, err := c.Get(ctx, base+m.ID)
		if err != nil {
			return "", err
		}
		for _, line := range strings.Split(page, "\n") {
			if sm := pgnURIRE.FindStringSubmatch(line); sm != nil {
				links = append(links, base+sm[1])
			}
		}
	}
	if len(links) == 0 {
		return "", provider.Parsef("页面中没有 PGN 引用")
	}
	return c.DownloadList(ctx, links, false)
}

func (Provider) TestLinks() []domain.TestLink {
	return []domain.TestLink{
		{URL: "https://thechessworld.com/articles/middle-game/typical-sacrifices-in-the-middlegame-sacrifice-on-e6/", Expect: true},
		{URL: "https://THECHESSWORLD.com/pgngames/middlegames/sacrifice-on-e6/Ivanchuk-Karjakin.pgn", Expect: true},
		{URL: "https://thechessworld.com/help/about/", Expect: false},
	}
}
