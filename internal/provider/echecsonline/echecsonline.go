// Package echecsonline 读取 Echecs-Online.eu 分析页里的 PGN 文本框。站点与
// Schach-Spielen.eu 同源，页面结构相同。
package echecsonline

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

const defaultBase = "https://www.echecs-online.eu"

var urlRE = regexp.MustCompile(`(?i)^https?://www\.echecs-online\.eu/(game|analyse)/([a-z0-9]{8})[/?#]?`)

type Provider struct {
	// BaseURL 覆盖 https://www.echecs-online.eu，主要用于测试。
	BaseURL string
}

func (Provider) Identity() domain.Identity {
	return domain.Identity{Name: "Echecs-Online.eu", Family: domain.Chess, Strategy: domain.DownloadLink}
}

func (Provider) Identify(u *url.URL) (domain.Match, bool) {
	s := u.String()
	if m := urlRE.FindStringSubmatch(s); m != nil {
		return domain.Match{ID: m[2], Type: domain.TypeGame, URL: s}, true
	}
	return domain.Match{}, false
}

func (p Provider) Retrieve(ctx context.Context, m domain.Match, c *fetch.Client) (string, error) {
	base := defaultBase
	if b := strings.TrimSpace(p.BaseURL); b != "" {
		base = strings.TrimRight(b, "/")
	}
	page, err := c.Get(ctx, base+"/analyse/"+m.ID)
	if err != nil {
		return "", err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return "", provider.Parsef("HTML 解析失败：%v", err)
	}
	text := strings.TrimSpace(doc.Find("textarea#pgnText").First().Text())
	if text == "" {
		return "", provider.Parsef("页面中没有 PGN")
	}
	return text, nil
}

func (Provider) TestLinks() []domain.TestLink {
	return []domain.TestLink{
		{URL: "https://www.echecs-online.eu/game/07af79f4", Expect: true},
		{URL: "https://www.echecs-online.eu/analyse/07af79f4", Expect: true},
		{URL: "https://www.echecs-online.eu/game/07af79f4/black", Expect: true},
		{URL: "https://www.echecs-online.eu/game/07af79f4/stats", Expect: true},
		{URL: "http://www.echecs-online.eu", Expect: false},
	}
}
