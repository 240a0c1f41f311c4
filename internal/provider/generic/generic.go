// Package generic 是兜底的 provider：认领任何 URL，按响应类型直接取回 PGN，
// 或在网页中收集 .pgn 链接与 ChessBase 回放控件逐个下载。它必须排在注册表的最后。
package generic

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/John-Robertt/boardsdl/internal/domain"
	"github.com/John-Robertt/boardsdl/internal/fetch"
	"github.com/John-Robertt/boardsdl/internal/provider"
	"github.com/John-Robertt/boardsdl/internal/provider/chessbase"
)

var pgnTypes = map[string]bool{
	"application/x-chess-pgn": true,
	"application/pgn":         true,
}

type Provider struct{}

func (Provider) Identity() domain.Identity {
	return domain.Identity{Name: "Generic for chess", Family: domain.Chess, Strategy: domain.Misc}
}

func (Provider) Identify(u *url.URL) (domain.Match, bool) {
	s := u.String()
	return domain.Match{ID: s, Type: domain.TypeGame, URL: s}, true
}

func (Provider) Retrieve(ctx context.Context, m domain.Match, c *fetch.Client) (string, error) {
	page, err := c.Do(ctx, fetch.Request{URL: m.ID, WithUA: true})
	if err != nil {
		return "", err
	}
	switch {
	case pgnTypes[page.MIME], c.AllowOctetStream() && page.MIME == "application/octet-stream":
		return page.Text, nil
	case page.MIME == "text/html":
		inline, replays, err := chessbase.Replays(page.Text)
		if err != nil {
			return "", err
		}
		if inline != "" {
			return inline, nil
		}
		links, err := pgnLinks(page.Text)
		if err != nil {
			return "", err
		}
		links = fetch.ExpandLinks(append(replays, links...), m.ID)
		if len(links) == 0 {
			return "", provider.Parsef("页面中没有 .pgn 链接")
		}
		return c.DownloadList(ctx, links, false)
	}
	return "", provider.Parsef("不支持的响应类型：%s", page.MIME)
}

// pgnLinks 返回路径以 .pgn 结尾的超链接（保持页面顺序，去重交给 ExpandLinks）。
func pgnLinks(html string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	var links []string
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		u, err := url.Parse(href)
		if err != nil {
			return
		}
		if strings.HasSuffix(strings.ToLower(u.Path), ".pgn") {
			links = append(links, href)
		}
	})
	return links, nil
}

func (Provider) TestLinks() []domain.TestLink {
	return []domain.TestLink{
		{URL: "https://chess-samara.ru/view/pgn.html?gameid=68373335", Expect: true},
		{URL: "https://liveserver.chessbase.com:6009/pgn/5th-eka-iifl-investment-2019/all.pgn", Expect: true},
		{URL: "https://example.com/", Expect: false},
	}
}
