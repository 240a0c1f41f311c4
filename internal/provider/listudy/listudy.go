// Package listudy 从 Listudy.org 的练习页脚本变量中重建谜题。
package listudy

import (
	"context"
	"net/url"
	"strings"

	"github.com/John-Robertt/boardsdl/internal/domain"
	"github.com/John-Robertt/boardsdl/internal/fetch"
	"github.com/John-Robertt/boardsdl/internal/notation"
	"github.com/John-Robertt/boardsdl/internal/pgn"
	"github.com/John-Robertt/boardsdl/internal/provider"
)

type Provider struct {
	// BaseURL 替换页面地址的协议与主机，主要用于测试。
	BaseURL string
}

func (Provider) Identity() domain.Identity {
	return domain.Identity{Name: "Listudy.org", Family: domain.Chess, Strategy: domain.HTMLParsing}
}

// Identify 要求路径中有一段非零数字；ID 是完整地址。
func (Provider) Identify(u *url.URL) (domain.Match, bool) {
	if !provider.HostIs(u, "listudy.org") {
		return domain.Match{}, false
	}
	for _, seg := range strings.Split(u.Path, "/") {
		if provider.NumericID(seg) {
			s := u.String()
			return domain.Match{ID: s, Type: domain.TypePuzzle, URL: s}, true
		}
	}
	return domain.Match{}, false
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
	page, err := c.Get(ctx, p.target(m.ID))
	if err != nil {
		return "", err
	}
	return build(page, m.URL)
}

// quoted 返回行内第一对双引号之间的文本。
func quoted(line string) string {
	parts := strings.SplitN(line, `"`, 3)
	if len(parts) < 3 {
		return ""
	}
	return parts[1]
}

func build(page, link string) (string, error) {
	rec := pgn.NewRecord()
	rec.Set(pgn.FieldURL, link)
	rec.Set("White", "White")
	rec.Set("Black", "Black")
	var text, moves string
	for _, line := range strings.Split(page, "\n") {
		switch {
		case strings.Contains(line, "let pgn ="):
			text = quoted(line)
		case strings.Contains(line, "let fen ="):
			rec.Set("SetUp", "1")
			rec.Set("FEN", quoted(line))
		case strings.Contains(line, "let solution =") || strings.Contains(line, "let moves ="):
			moves = quoted(line)
		case strings.Contains(line, "i18n.white ="):
			rec.Set("White", quoted(line))
		case strings.Contains(line, "i18n.black ="):
			rec.Set("Black", quoted(line))
		}
	}

	if text != "" {
		rec.Set(pgn.FieldMoves, text)
		return pgn.Assemble(rec)
	}
	if strings.TrimSpace(moves) == "" {
		return "", provider.Parsef("页面中没有着法")
	}
	// 全小写的着法是 UCI，需要在给定局面上换算为 SAN。
	if moves == strings.ToLower(moves) {
		san, err := notation.Reconstruct(notation.Standard, rec.Get("FEN"), notation.Plain(strings.Fields(moves)...), notation.ParseUCI)
		if err != nil {
			return "", err
		}
		moves = san
	}
	list := strings.Fields(moves)
	rec.Set(pgn.FieldMoves, list[0]+" ("+strings.Join(list, " ")+")")
	return pgn.Assemble(rec)
}

func (Provider) TestLinks() []domain.TestLink {
	return []domain.TestLink{
		{URL: "https://listudy.org/en/tactics/382", Expect: true},
		{URL: "https://listudy.org/en/blind-tactics/406", Expect: true},
		{URL: "https://listudy.org/en/pieceless-tactics/1339", Expect: true},
		{URL: "https://listudy.org/en/endgames/basic/queen/2", Expect: false},
		{URL: "https://listudy.org", Expect: false},
	}
}
