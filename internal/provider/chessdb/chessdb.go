// Package chessdb 读取 Chess-DB.com 对局页表单里的 PGN。站点已停止服务，默认停用。
package chessdb

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/John-Robertt/boardsdl/internal/domain"
	"github.com/John-Robertt/boardsdl/internal/fetch"
	"github.com/John-Robertt/boardsdl/internal/provider"
)

const defaultBase = "https://chess-db.com"

var idRE = regexp.MustCompile(`^[0-9.]+$`)

type Provider struct {
	// BaseURL 覆盖 https://chess-db.com，主要用于测试。
	BaseURL string
}

func (Provider) Identity() domain.Identity {
	return domain.Identity{Name: "Chess-DB.com", Family: domain.Chess, Strategy: domain.HTMLParsing}
}

// Enabled 始终返回 false：服务器已下线。
func (Provider) Enabled() bool { return false }

func (Provider) Identify(u *url.URL) (domain.Match, bool) {
	if !provider.HostIs(u, "chess-db.com") || !strings.Contains(strings.ToLower(u.Path), "game.jsp") {
		return domain.Match{}, false
	}
	if id := u.Query().Get("id"); idRE.MatchString(id) {
		return domain.Match{ID: id, Type: domain.TypeGame, URL: u.String()}, true
	}
	return domain.Match{}, false
}

func (p Provider) Retrieve(ctx context.Context, m domain.Match, c *fetch.Client) (string, error) {
	base := defaultBase
	if b := strings.TrimSpace(p.BaseURL); b != "" {
		base = strings.TrimRight(b, "/")
	}
	page, err := c.Get(ctx, base+"/public/game.jsp?id="+url.QueryEscape(m.ID))
	if err != nil {
		return "", err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return "", provider.Parsef("HTML 解析失败：%v", err)
	}
	v, ok := doc.Find(`input[name="pgn"]`).First().Attr("value")
	// 站点没有转义单引号时，值会在中途截断，方括号不再配对。
	if !ok || strings.TrimSpace(v) == "" || strings.Count(v, "[") != strings.Count(v, "]") {
		return "", provider.Parsef("页面中没有完整的 PGN")
	}
	return v, nil
}

func (Provider) TestLinks() []domain.TestLink {
	return []domain.TestLink{
		{URL: "https://CHESS-DB.COM/public/game.jsp?id=623539.1039784.81308416.30442", Expect: true},
		{URL: "https://chess-db.com/public/game.jsp?id=623539.2900084.7718912.30537", Expect: false},
		{URL: "https://chess-db.com/public/game.jsp?id=123456.1234567.1234567.123456789", Expect: false},
		{URL: "https://chess-db.com/public/game.jsp?id=ABC123", Expect: false},
		{URL: "https://chess-db.com/play.jsp?id=623539.1039784.81308416.30442", Expect: false},
		{URL: "https://chess-db.com", Expect: false},
	}
}
