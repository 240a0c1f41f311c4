// Package schachspielen 读取 Schach-Spielen.eu 分析页里的 PGN 文本框。
package schachspielen

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/John-Robertt/boardsdl/internal/domain"
	"github.com/John-Robertt/boardsdl/internal/fetch"
	"github.com/John-Robertt/boardsdl/internal/notation"
	"github.com/John-Robertt/boardsdl/internal/provider"
)

const defaultBase = "https://www.schach-spielen.eu"

var urlRE = regexp.MustCompile(`(?i)^https?://(www\.)?schach-spielen\.eu/(game|analyse)/([a-z0-9]+)[/?#]?`)

type Provider struct {
	// BaseURL 覆盖 https://www.schach-spielen.eu，主要用于测试。
	BaseURL string
}

func (Provider) Identity() domain.Identity {
	return domain.Identity{Name: "Schach-Spielen.eu", Family: domain.Chess, Strategy: domain.HTMLParsing}
}

func (Provider) Identify(u *url.URL) (domain.Match, bool) {
	s := u.String()
	if m := urlRE.FindStringSubmatch(s); m != nil && len(m[3]) == 8 {
		return domain.Match{ID: m[3], Type: domain.TypeGame, URL: s}, true
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
	return strings.ReplaceAll(text, `[Variant "chess960"]`, `[Variant "`+notation.Chess960+`"]`), nil
}

func (Provider) TestLinks() []domain.TestLink {
	return []domain.TestLink{
		{URL: "https://www.schach-spielen.eu/analyse/2jcpl1vs/black#test", Expect: true},
		{URL: "http://schach-SPIELEN.eu/game/2jcpl1vs?p=1", Expect: true},
		{URL: "https://www.schach-spielen.eu/game/8kcevvdy/white", Expect: true},
		{URL: "https://www.schach-spielen.eu/game/IENSUIEN", Expect: false},
		{URL: "https://www.schach-spielen.eu/about/8kcevvdy", Expect: false},
		{URL: "https://www.schach-SPIELEN.eu", Expect: false},
	}
}
