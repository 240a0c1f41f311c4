// Package chesssamara 下载 Chess-Samara.ru 的对局 PGN。
package chesssamara

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/John-Robertt/boardsdl/internal/domain"
	"github.com/John-Robertt/boardsdl/internal/fetch"
	"github.com/John-Robertt/boardsdl/internal/provider"
)

const defaultBase = "https://chess-samara.ru"

var urlRE = regexp.MustCompile(`(?i)^https?://(\S+\.)?chess-samara\.ru/(\d+)-`)

type Provider struct {
	// BaseURL 覆盖 https://chess-samara.ru，主要用于测试。
	BaseURL string
}

func (Provider) Identity() domain.Identity {
	return domain.Identity{Name: "Chess-Samara.ru", Family: domain.Chess, Strategy: domain.DownloadLink}
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
	return c.Get(ctx, base+"/view/pgn.html?gameid="+m.ID)
}

func (Provider) TestLinks() []domain.TestLink {
	return []domain.TestLink{
		{URL: "https://chess-SAMARA.ru/68373335-igra-Firudin1888-vs-Pizyk", Expect: true},
		{URL: "https://chess-samara.ru/view/pgn.html?gameid=68373335", Expect: false},
		{URL: "https://chess-samara.ru/1234567890123-pychess-vs-pychess", Expect: false},
		{URL: "https://chess-samara.ru", Expect: false},
	}
}
