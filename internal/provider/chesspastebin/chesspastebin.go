// Package chesspastebin 读取 ChessPastebin.com 页面中棋盘控件携带的 PGN。
package chesspastebin

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

const defaultBase = "https://www.chesspastebin.com"

var boardRE = regexp.MustCompile(`(?i)<div id="([0-9]+)_board"></div>`)

type Provider struct {
	// BaseURL 覆盖 https://www.chesspastebin.com，主要用于测试。
	BaseURL string
}

func (Provider) Identity() domain.Identity {
	return domain.Identity{Name: "ChessPastebin.com", Family: domain.Chess, Strategy: domain.HTMLParsing}
}

// Identify 认领站点上的任意页面；ID 为页面的路径与查询串。
func (Provider) Identify(u *url.URL) (domain.Match, bool) {
	if !provider.HostIs(u, "chesspastebin.com") {
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
	return parse(page)
}

func parse(page string) (string, error) {
	sm := boardRE.FindStringSubmatch(strings.ReplaceAll(page, "\n", ""))
	if sm == nil {
		return "", provider.Parsef("页面中没有棋盘控件")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return "", provider.Parsef("HTML 解析失败：%v", err)
	}
	text := strings.TrimSpace(doc.Find(`div[id="` + sm[1] + `"]`).First().Text())
	if text == "" {
		return "", provider.Parsef("棋盘控件 %s 没有 PGN", sm[1])
	}
	if !strings.HasPrefix(text, "[") {
		text = "[Annotator \"ChessPastebin.com\"]\n" + text
	}
	return text, nil
}

func (Provider) TestLinks() []domain.TestLink {
	return []domain.TestLink{
		{URL: "https://www.chesspastebin.com/2018/12/29/anonymous-anonymous-by-george-2/", Expect: true},
		{URL: "https://www.CHESSPASTEBIN.com/2019/04/14/unknown-unknown-by-alekhine-sapladi/", Expect: true},
		{URL: "https://www.chesspastebin.com/1515/09/13/marignan/", Expect: false},
		{URL: "https://www.chesspastebin.com", Expect: true},
	}
}
