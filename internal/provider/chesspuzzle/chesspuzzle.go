// Package chesspuzzle 读取 ChessPuzzle.net 解答页脚本里的 PGN。
package chesspuzzle

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

const defaultBase = "https://chesspuzzle.net"

var urlRE = regexp.MustCompile(`(?i)^https?://(\S+\.)?chesspuzzle\.net/(Puzzle|Solution)/([0-9]+)[/?#]?`)

type Provider struct {
	// BaseURL 覆盖 https://chesspuzzle.net，主要用于测试。
	BaseURL string
}

func (Provider) Identity() domain.Identity {
	return domain.Identity{Name: "ChessPuzzle.net", Family: domain.Chess, Strategy: domain.HTMLParsing}
}

func (Provider) Identify(u *url.URL) (domain.Match, bool) {
	s := u.String()
	if m := urlRE.FindStringSubmatch(s); m != nil && provider.NumericID(m[3]) {
		return domain.Match{ID: m[3], Type: domain.TypePuzzle, URL: s}, true
	}
	return domain.Match{}, false
}

func (p Provider) Retrieve(ctx context.Context, m domain.Match, c *fetch.Client) (string, error) {
	base := defaultBase
	if b := strings.TrimSpace(p.BaseURL); b != "" {
		base = strings.TrimRight(b, "/")
	}
	page, err := c.Get(ctx, base+"/Solution/"+m.ID)
	if err != nil {
		return "", err
	}
	return parse(page)
}

// parse 取脚本中 ChessViewer( 之后的第一个单引号字符串，并把标签拆回多行。
func parse(page string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return "", provider.Parsef("HTML 解析失败：%v", err)
	}
	var text string
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src := s.Text()
		i := strings.Index(src, "ChessViewer(")
		if i < 0 {
			return true
		}
		parts := strings.SplitN(src[i:], "'", 3)
		if len(parts) < 3 {
			return true
		}
		text = strings.ReplaceAll(parts[1], "]  ", "]\n\n")
		text = strings.TrimSpace(strings.ReplaceAll(text, "] ", "]\n"))
		return false
	})
	if text == "" {
		return "", provider.Parsef("页面中没有谜题")
	}
	return text, nil
}

func (Provider) TestLinks() []domain.TestLink {
	return []domain.TestLink{
		{URL: "https://chesspuzzle.net/Puzzle/23476", Expect: true},
		{URL: "https://CHESSPUZZLE.net/Solution/32881", Expect: true},
		{URL: "https://chesspuzzle.net/Puzzle", Expect: false},
		{URL: "https://chesspuzzle.net/Puzzle/123456789", Expect: false},
		{URL: "https://chesspuzzle.net", Expect: false},
	}
}
