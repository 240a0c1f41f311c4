// Package ficgs 下载 FICGS.com 的通信赛对局。
package ficgs

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/John-Robertt/boardsdl/internal/domain"
	"github.com/John-Robertt/boardsdl/internal/fetch"
	"github.com/John-Robertt/boardsdl/internal/provider"
)

const defaultBase = "http://www.ficgs.com"

var urlRE = regexp.MustCompile(`(?i)^https?://(\S+\.)?ficgs\.com/game_(\d+)\.html`)

type Provider struct {
	// BaseURL 覆盖 http://www.ficgs.com，主要用于测试。
	BaseURL string
}

func (Provider) Identity() domain.Identity {
	return domain.Identity{Name: "Ficgs.com", Family: domain.Chess, Strategy: domain.DownloadLink}
}

func (Provider) Identify(u *url.URL) (domain.Match, bool) {
	s := u.String()
	if m := urlRE.FindStringSubmatch(s); m != nil && provider.NumericID(m[2]) {
		return domain.Match{ID: m[2], Type: domain.TypeGame, URL: s}, true
	}
	return domain.Match{}, false
}

func (p Provider) Retrieve(ctx context.Context, m domain.Match, c *fetch.Client) (string, error) {
	base := defaultBase
	if b := strings.TrimSpace(p.BaseURL); b != "" {
		base = strings.TrimRight(b, "/")
	}
	return c.Get(ctx, base+"/game_"+m.ID+".pgn")
}

func (Provider) TestLinks() []domain.TestLink {
	return []domain.TestLink{
		{URL: "http://FICGS.com/game_95671.html", Expect: true},
		{URL: "http://www.ficgs.com/game_1234567890.html", Expect: false},
		{URL: "http://www.ficgs.com/view_95671.html", Expect: false},
		{URL: "http://www.ficgs.com", Expect: false},
	}
}
