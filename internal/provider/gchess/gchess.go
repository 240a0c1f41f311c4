// Package gchess 通过接口下载 GChess.com 的名局。
package gchess

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/John-Robertt/boardsdl/internal/domain"
	"github.com/John-Robertt/boardsdl/internal/fetch"
	"github.com/John-Robertt/boardsdl/internal/jsonx"
	"github.com/John-Robertt/boardsdl/internal/provider"
)

const defaultBase = "https://gchess.com"

// 接口返回的标签值有时缺少右引号。
var unquotedTagRE = regexp.MustCompile(`([^"])\]\n`)

type Provider struct {
	// BaseURL 覆盖 https://gchess.com，主要用于测试。
	BaseURL string
}

func (Provider) Identity() domain.Identity {
	return domain.Identity{Name: "GChess.com", Family: domain.Chess, Strategy: domain.API}
}

// Identify 读取 game 参数；单页应用的参数位于 "#/" 之后。
func (Provider) Identify(u *url.URL) (domain.Match, bool) {
	if !provider.HostIs(u, "gchess.com") {
		return domain.Match{}, false
	}
	s := u.String()
	v, err := url.Parse(strings.Replace(s, "/#/", "/", 1))
	if err != nil {
		return domain.Match{}, false
	}
	gid := strings.TrimPrefix(v.Query().Get("game"), "top-games-")
	if !provider.NumericID(gid) {
		return domain.Match{}, false
	}
	return domain.Match{ID: gid, Type: domain.TypeGame, URL: s}, true
}

func (p Provider) Retrieve(ctx context.Context, m domain.Match, c *fetch.Client) (string, error) {
	base := defaultBase
	if b := strings.TrimSpace(p.BaseURL); b != "" {
		base = strings.TrimRight(b, "/")
	}
	body, err := c.GetHeaders(ctx, base+"/api/game.php?id="+m.ID, map[string]string{"X-Requested-With": "XMLHttpRequest"})
	if err != nil {
		return "", err
	}
	doc, ok := jsonx.Parse(body)
	if !ok {
		return "", provider.Parsef("接口返回的不是 JSON")
	}
	text := strings.ReplaceAll(doc.Field("pgn"), "\r", "")
	if strings.TrimSpace(text) == "" {
		return "", provider.Parsef("接口没有返回 PGN")
	}
	return unquotedTagRE.ReplaceAllString(text, `$1"]`+"\n"), nil
}

func (Provider) TestLinks() []domain.TestLink {
	return []domain.TestLink{
		{URL: "https://gchess.com/#/games/top-games?game=top-games-9961486&orientation=white", Expect: true},
		{URL: "https://gchess.com/dummy?game=top-games-566682", Expect: true},
		{URL: "https://gchess.com/dummy?id=566682", Expect: false},
		{URL: "https://gchess.com", Expect: false},
	}
}
