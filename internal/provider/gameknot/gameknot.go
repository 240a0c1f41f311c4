// Package gameknot 从 GameKnot.com 页面脚本中的变量重建对局与谜题。
package gameknot

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

const defaultBase = "https://gameknot.com"

// variable 描述一个脚本变量：quoted 为 true 时取单引号内的文本，否则取 '=' 之后的值。
type variable struct {
	name   string
	quoted bool
	tag    string
}

var (
	puzzleVars = []variable{
		{"puzzle_id", false, "_id"},
		{"puzzle_fen", true, "FEN"},
		{"load_solution(", true, "_solution"},
	}
	gameVars = []variable{
		{"anbd_movelist", true, pgn.FieldMoves},
		{"anbd_result", false, "Result"},
		{"anbd_player_w", true, "White"},
		{"anbd_player_b", true, "Black"},
		{"anbd_rating_w", false, "WhiteElo"},
		{"anbd_rating_b", false, "BlackElo"},
		{"anbd_title", true, "Event"},
		{"anbd_timestamp", true, "Date"},
		{"export_web_input_result_text", true, pgn.FieldReason},
	}
	results = map[string]string{"1": "1-0", "2": "1/2-1/2", "3": "0-1"}
)

type Provider struct {
	// BaseURL 覆盖 https://gameknot.com，主要用于测试。
	BaseURL string
}

func (Provider) Identity() domain.Identity {
	return domain.Identity{Name: "GameKnot.com", Family: domain.Chess, Strategy: domain.HTMLParsing}
}

func (Provider) Identify(u *url.URL) (domain.Match, bool) {
	if !provider.HostIs(u, "gameknot.com") {
		return domain.Match{}, false
	}
	var (
		t   domain.URLType
		key string
	)
	switch strings.ToLower(u.Path) {
	case "/analyze-board.pl":
		t, key = domain.TypeGame, "bd"
	case "/chess-puzzle.pl":
		t, key = domain.TypePuzzle, "pz"
	default:
		return domain.Match{}, false
	}
	id := u.Query().Get(key)
	if !provider.NumericID(id) {
		return domain.Match{}, false
	}
	return domain.Match{ID: id, Type: t, URL: u.String()}, true
}

func (p Provider) Retrieve(ctx context.Context, m domain.Match, c *fetch.Client) (string, error) {
	base := defaultBase
	if b := strings.TrimSpace(p.BaseURL); b != "" {
		base = strings.TrimRight(b, "/")
	}
	path := "/analyze-board.pl?bd=" + m.ID
	if m.Type == domain.TypePuzzle {
		path = "/chess-puzzle.pl?pz=" + m.ID
	}
	page, err := c.GetUA(ctx, base+path)
	if err != nil {
		return "", err
	}
	var text string
	if m.Type == domain.TypePuzzle {
		text, err = puzzle(page)
	} else {
		text, err = game(page)
	}
	if err != nil {
		return "", err
	}
	if s, err := url.PathUnescape(text); err == nil {
		text = s
	}
	return text, nil
}

// extract 按 ';' 切分脚本并读取变量；同名变量以最后一次出现为准。
func extract(page string, vars []variable) *pgn.Record {
	rec := pgn.NewRecord()
	for _, stmt := range strings.Split(page, ";") {
		for _, v := range vars {
			i := strings.Index(stmt, v.name)
			if i < 0 {
				continue
			}
			rest := stmt[i+1:]
			if v.quoted {
				if parts := strings.SplitN(rest, "'", 3); len(parts) == 3 {
					rec.Set(v.tag, parts[1])
				}
				continue
			}
			if _, val, ok := strings.Cut(rest, "="); ok {
				if val = strings.TrimSpace(val); val != "" && val != "0" {
					rec.Set(v.tag, val)
				}
			}
		}
	}
	return rec
}

func puzzle(page string) (string, error) {
	rec := extract(page, puzzleVars)
	rec.Set(pgn.FieldURL, defaultBase+"/chess-puzzle.pl?pz="+rec.Get("_id"))
	rec.Set("White", "White")
	rec.Set("Black", "Black")
	rec.Set("Result", "*")
	if rec.Get("FEN") != "" {
		rec.Set("SetUp", "1")
	}
	if sol := rec.Get("_solution"); sol != "" {
		rec.Set(pgn.FieldMoves, solution(sol))
	}
	return pgn.Assemble(rec)
}

// solution 沿主线展开解答。每项以逗号分隔：0 编号，4 着法，7 下一步编号；只有 4 个字段的项表示主线结束。
func solution(raw string) string {
	var sb strings.Builder
	sb.WriteString("{Solution:")
	next := "0"
	for _, item := range strings.Split(raw, "|") {
		f := strings.Split(item, ",")
		if f[0] != next {
			continue
		}
		if len(f) < 8 {
			break
		}
		next = f[7]
		sb.WriteString(" ")
		sb.WriteString(f[4])
	}
	sb.WriteString("}")
	return sb.String()
}

func game(page string) (string, error) {
	rec := extract(page, gameVars)
	if r, ok := results[rec.Get("Result")]; ok {
		rec.Set("Result", r)
	} else {
		rec.Set("Result", "*")
	}
	var uci []string
	for _, mv := range strings.Split(rec.Get(pgn.FieldMoves), "-") {
		if mv == "" {
			break
		}
		uci = append(uci, mv)
	}
	moves, err := notation.Reconstruct(notation.Standard, "", notation.Plain(uci...), notation.ParseUCI)
	if err != nil {
		return "", err
	}
	rec.Set(pgn.FieldMoves, moves)
	return pgn.Assemble(rec)
}

func (Provider) TestLinks() []domain.TestLink {
	return []domain.TestLink{
		{URL: "https://gameknot.com/analyze-board.pl?bd=22792465#tag", Expect: true},
		{URL: "https://GAMEKNOT.com/chess.pl?bd=22792465&p=1", Expect: false},
		{URL: "https://gameknot.com/analyze-board.pl?bd=1234567890&p=1", Expect: false},
		{URL: "https://gameknot.com/analyze-board.pl?bd=bepofr#tag", Expect: false},
		{URL: "https://gameknot.com", Expect: false},
		{URL: "https://gameknot.com/chess-puzzle.pl?pz=224260", Expect: true},
		{URL: "https://gameknot.com/chess-puzzle.pl?pz=224541&next=2", Expect: true},
		{URL: "https://gameknot.com/chess-puzzle.pl?pz=224571", Expect: true},
		{URL: "https://gameknot.com/chess-puzzle.pl?pz=ABC", Expect: false},
		{URL: "https://gameknot.com/chess-puzzle.pl?pz=0#tag", Expect: false},
	}
}
