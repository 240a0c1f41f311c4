// Package redhotpawn 下载 RedHotPawn.com 的对局与谜题。
package redhotpawn

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/John-Robertt/boardsdl/internal/domain"
	"github.com/John-Robertt/boardsdl/internal/fetch"
	"github.com/John-Robertt/boardsdl/internal/pgn"
	"github.com/John-Robertt/boardsdl/internal/provider"
)

const defaultBase = "https://www.redhotpawn.com"

// paramServe 标记“随机谜题”入口：ID 是页面路径而不是谜题编号。
const paramServe = "serve"

type Provider struct {
	// BaseURL 覆盖 https://www.redhotpawn.com，主要用于测试。
	BaseURL string
}

func (Provider) Identity() domain.Identity {
	return domain.Identity{Name: "RedHotPawn.com", Family: domain.Chess, Strategy: domain.HTMLParsing}
}

func (Provider) Identify(u *url.URL) (domain.Match, bool) {
	if !provider.HostIs(u, "redhotpawn.com") {
		return domain.Match{}, false
	}
	path := strings.ToLower(u.Path)
	var (
		t   domain.URLType
		key string
	)
	switch {
	case strings.Contains(path, "chess-game-"):
		t, key = domain.TypeGame, "gameid"
	case strings.Contains(path, "chess-puzzle-serve"):
		return domain.Match{ID: u.RequestURI(), Type: domain.TypePuzzle, URL: u.String(), Params: map[string]string{paramServe: "1"}}, true
	case strings.Contains(path, "chess-puzzle-"):
		t, key = domain.TypePuzzle, "puzzleid"
	default:
		return domain.Match{}, false
	}
	id := u.Query().Get(key)
	if !provider.NumericID(id) {
		return domain.Match{}, false
	}
	return domain.Match{ID: id, Type: t, URL: u.String()}, true
}

func (p Provider) base() string {
	if b := strings.TrimSpace(p.BaseURL); b != "" {
		return strings.TrimRight(b, "/")
	}
	return defaultBase
}

func (p Provider) Retrieve(ctx context.Context, m domain.Match, c *fetch.Client) (string, error) {
	if m.Type == domain.TypePuzzle {
		return p.puzzle(ctx, m, c)
	}
	page, err := c.Get(ctx, p.base()+"/pagelet/view/game-pgn.php?gameid="+m.ID)
	if err != nil {
		return "", err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return "", provider.Parsef("HTML 解析失败：%v", err)
	}
	text := strings.TrimSpace(doc.Find("textarea").First().Text())
	if text == "" {
		return "", provider.Parsef("页面中没有 PGN")
	}
	return text, nil
}

func (p Provider) puzzle(ctx context.Context, m domain.Match, c *fetch.Client) (string, error) {
	path, event := "/chess-puzzles/chess-puzzle-solve.php?puzzleid="+m.ID, "Puzzle "+m.ID
	if m.Param(paramServe, "") == "1" {
		path, event = m.ID, "Puzzle"
	}
	page, err := c.Get(ctx, p.base()+path)
	if err != nil {
		return "", err
	}
	fen, ok := quoted(page, "var g_startFenStr")
	if !ok {
		return "", provider.Parsef("页面中没有谜题局面")
	}
	rec := pgn.NewRecord()
	rec.Set(pgn.FieldURL, defaultBase+path)
	rec.Set("Event", event)
	rec.Set("White", "White")
	rec.Set("Black", "Black")
	rec.Set("FEN", fen)
	rec.Set("SetUp", "1")
	if i := strings.Index(page, "<h4>"); i >= 0 {
		if j := strings.Index(page[i:], "</h4>"); j > 0 {
			rec.Set(pgn.FieldMoves, "{"+page[i+len("<h4>"):i+j]+"}")
		}
	}
	return pgn.Assemble(rec)
}

// quoted 返回 marker 之后第一对单引号之间的文本。
func quoted(page, marker string) (string, bool) {
	i := strings.Index(page, marker)
	if i < 0 {
		return "", false
	}
	parts := strings.SplitN(page[i:], "'", 3)
	if len(parts) < 3 {
		return "", false
	}
	return parts[1], true
}

func (Provider) TestLinks() []domain.TestLink {
	return []domain.TestLink{
		{URL: "https://www.redhotpawn.com/chess/chess-game-history.php?gameid=13264954", Expect: true},
		{URL: "https://www.redhotpawn.com/chess/chess-game-HISTORY.php?gameid=13261506&arg=0#anchor", Expect: true},
		{URL: "https://www.redhotpawn.com/chess/chess-game-history.php?gameid=13238354", Expect: true},
		{URL: "https://REDHOTPAWN.com/chess/chess-GAME-analysis.php?gameid=13261541&arg=0#anchor", Expect: true},
		{URL: "https://www.redhotpawn.com/chess/chess-game-history.php?gameid=1234567890", Expect: false},
		{URL: "https://www.redhotpawn.com/chess/view-game.php?gameid=13238354", Expect: false},
		{URL: "https://www.redhotpawn.com/chess/chess-game-analysis.php?id=13238354", Expect: false},
		{URL: "https://www.redhotpawn.com", Expect: false},
		{URL: "https://www.redhotpawn.com/chess-puzzles/chess-puzzle-solve.php?puzzleid=7470", Expect: true},
		{URL: "https://www.redhotpawn.com/chess-puzzles/chess-puzzle-serve.php", Expect: true},
		{URL: "https://www.redhotpawn.com/chess-puzzles/chess-puzzle-solve.php?puzzleid=1234567890", Expect: false},
	}
}
