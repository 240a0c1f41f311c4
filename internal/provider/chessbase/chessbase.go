// Package chessbase 读取 ChessBase 回放控件（.cbreplay）中的棋谱。
//
// 控件可能直接内嵌 PGN，也可能只给出 data-url；Replays 供通用下载复用，
// 以便识别其它网站嵌入的同类控件。
package chessbase

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/John-Robertt/boardsdl/internal/domain"
	"github.com/John-Robertt/boardsdl/internal/fetch"
	"github.com/John-Robertt/boardsdl/internal/provider"
)

type Provider struct {
	// BaseURL 替换请求的协议与主机，主要用于测试。
	BaseURL string
}

func (Provider) Identity() domain.Identity {
	return domain.Identity{Name: "ChessBase.com", Family: domain.Chess, Strategy: domain.HTMLParsing}
}

// Identify 认领 chessbase.com 及其子域名下的网页；直接的 .pgn 文件留给通用下载。
func (Provider) Identify(u *url.URL) (domain.Match, bool) {
	if !provider.HostUnder(u, "chessbase.com") || strings.HasSuffix(strings.ToLower(u.Path), ".pgn") {
		return domain.Match{}, false
	}
	s := u.String()
	return domain.Match{ID: s, Type: domain.TypeGame, URL: s}, true
}

func (p Provider) target(raw string) string {
	b := strings.TrimSpace(p.BaseURL)
	if b == "" {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return strings.TrimRight(b, "/") + u.RequestURI()
}

func (p Provider) Retrieve(ctx context.Context, m domain.Match, c *fetch.Client) (string, error) {
	target := p.target(m.ID)
	page, err := c.Get(ctx, target)
	if err != nil {
		return "", err
	}
	inline, links, err := Replays(page)
	if err != nil {
		return "", err
	}
	if inline != "" {
		return inline, nil
	}
	links = fetch.ExpandLinks(links, target)
	if len(links) == 0 {
		return "", provider.Parsef("页面中没有回放控件")
	}
	return c.DownloadList(ctx, links, false)
}

// Replays 扫描 class="cbreplay" 的 p/div 元素：返回第一个内嵌的 PGN，以及全部 data-url。
func Replays(page string) (inline string, links []string, err error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return "", nil, provider.Parsef("HTML 解析失败：%v", err)
	}
	doc.Find("p.cbreplay, div.cbreplay").Each(func(_ int, s *goquery.Selection) {
		if u := strings.TrimSpace(s.AttrOr("data-url", "")); u != "" {
			links = append(links, u)
		}
		if inline == "" {
			inline = strings.TrimSpace(s.Text())
		}
	})
	return inline, links, nil
}

func (Provider) TestLinks() []domain.TestLink {
	return []domain.TestLink{
		{URL: "http://live.chessbase.com/watch/5th-EKA-IIFL-Investment-2019", Expect: true},
		{URL: "http://live.chessbase.com/replay/5th-eka-iifl-investment-2019/3?anno=False", Expect: true},
		{URL: "http://live.chessbase.com", Expect: false},
	}
}
