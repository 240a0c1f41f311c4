// Package europeechecs 收集 Europe-Echecs.com 文章中嵌入的 PGN。
package europeechecs

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/John-Robertt/boardsdl/internal/domain"
	"github.com/John-Robertt/boardsdl/internal/fetch"
	"github.com/John-Robertt/boardsdl/internal/provider"
)

const defaultBase = "https://www.europe-echecs.com"

var widgetRE = regexp.MustCompile(`(?i)class="cbwidget"\s+id="([0-9a-f]+)_container"`)

type Provider struct {
	// BaseURL 覆盖 https://www.europe-echecs.com，主要用于测试。
	BaseURL string
}

func (Provider) Identity() domain.Identity {
	return domain.Identity{Name: "Europe-Echecs.com", Family: domain.Chess, Strategy: domain.DownloadLink}
}

func (Provider) Identify(u *url.URL) (domain.Match, bool) {
	if !provider.HostIs(u, "europe-echecs.com") {
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
			if sm := widgetRE.FindStringSubmatch(line); sm != nil {
				links = append(links, base+"/embed/doc_"+sm[1]+".pgn")
			}
		}
	}
	if len(links) == 0 {
		return "", provider.Parsef("页面中没有棋谱控件")
	}
	return c.DownloadList(ctx, links, false)
}

func (Provider) TestLinks() []domain.TestLink {
	return []domain.TestLink{
		{URL: "https://www.europe-echecs.com/art/championnat-d-europe-f-minin-2019-7822.html", Expect: true},
		{URL: "https://www.EUROPE-ECHECS.com/embed/doc_a2d179a4a201406d4ce6138b0b1c86d7.pgn", Expect: true},
		{URL: "https://www.europe-echecs.com", Expect: false},
	}
}
