// Package schemingmind 下载 SchemingMind.com 的对局，包括各种变体。
package schemingmind

import (
	"context"
	"net/url"
	"strings"

	"github.com/John-Robertt/boardsdl/internal/domain"
	"github.com/John-Robertt/boardsdl/internal/fetch"
	"github.com/John-Robertt/boardsdl/internal/provider"
)

const defaultBase = "https://www.schemingmind.com"

type Provider struct {
	// BaseURL 覆盖 https://www.schemingmind.com，主要用于测试。
	BaseURL string
}

func (Provider) Identity() domain.Identity {
	return domain.Identity{Name: "SchemingMind.com", Family: domain.Chess, Strategy: domain.DownloadLink}
}

// Identify 不看目录，只要求路径里有 game.aspx 且带 game_id。
func (Provider) Identify(u *url.URL) (domain.Match, bool) {
	if !provider.HostIs(u, "schemingmind.com") || !strings.Contains(u.Path, "game.aspx") {
		return domain.Match{}, false
	}
	gid := u.Query().Get("game_id")
	if !provider.NumericID(gid) {
		return domain.Match{}, false
	}
	return domain.Match{ID: gid, Type: domain.TypeGame, URL: u.String()}, true
}

// Retrieve 请求 view=3，站点以纯文本返回 PGN。
func (p Provider) Retrieve(ctx context.Context, m domain.Match, c *fetch.Client) (string, error) {
	base := defaultBase
	if b := strings.TrimSpace(p.BaseURL); b != "" {
		base = strings.TrimRight(b, "/")
	}
	return c.Get(ctx, base+"/home/game.aspx?game_id="+m.ID+"&view=3")
}

func (Provider) TestLinks() []domain.TestLink {
	return []domain.TestLink{
		{URL: "https://www.schemingmind.com/home/game.aspx?game_id=457237", Expect: true},
		{URL: "https://www.schemingmind.com/home/game.aspx?game_id=722914&view=3", Expect: true},
		{URL: "https://www.schemingmind.com/game.aspx?game_id=35343", Expect: true},
		{URL: "https://www.schemingmind.com/invalid-path/game.aspx?game_id=715718", Expect: true},
		{URL: "https://www.schemingmind.com/game.aspx?game_id=9876543210", Expect: false},
		{URL: "https://www.schemingmind.com", Expect: false},
	}
}
