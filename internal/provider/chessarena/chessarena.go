// Package chessarena 通过 WorldChess 的接口下载 ChessArena.com 的对局。
package chessarena

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/John-Robertt/boardsdl/internal/domain"
	"github.com/John-Robertt/boardsdl/internal/fetch"
	"github.com/John-Robertt/boardsdl/internal/provider"
)

const defaultAPI = "https://api.worldchess.com"

var idRE = regexp.MustCompile(`(?i)([0-9a-f-]{36})`)

type Provider struct {
	// APIURL 覆盖 https://api.worldchess.com，主要用于测试。
	APIURL string
}

func (Provider) Identity() domain.Identity {
	return domain.Identity{Name: "ChessArena.com", Family: domain.Chess, Strategy: domain.DownloadLink}
}

func (Provider) Identify(u *url.URL) (domain.Match, bool) {
	if !provider.HostIs(u, "chessarena.com") {
		return domain.Match{}, false
	}
	s := u.String()
	if m := idRE.FindStringSubmatch(s); m != nil {
		return domain.Match{ID: m[1], Type: domain.TypeGame, URL: s}, true
	}
	return domain.Match{}, false
}

func (p Provider) Retrieve(ctx context.Context, m domain.Match, c *fetch.Client) (string, error) {
	api := defaultAPI
	if a := strings.TrimSpace(p.APIURL); a != "" {
		api = strings.TrimRight(a, "/")
	}
	return c.Get(ctx, api+"/api/online/gaming/"+m.ID+"/pgn/")
}

func (Provider) TestLinks() []domain.TestLink {
	return []domain.TestLink{
		{URL: "https://chessarena.com/v2/tournament_game/17fb7e7f-24e0-4b71-8d7a-8a0fc7b7fa6c", Expect: true},
		{URL: "https://chessarena.com/v2/tournament_game/4c98cdf3-cae4-4ceb-b117-723b2ef2572e", Expect: false},
		{URL: "https://chessarena.com", Expect: false},
	}
}
