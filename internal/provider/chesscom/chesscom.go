// Package chesscom 实现 chess.com 的对局、谜题与局面下载。
//
// 对局数据来自 callback 接口：pgnHeaders 直接作为标签，moveList 是两字符一步的 TCN 编码，
// 需要在虚拟棋盘上重放才能得到 SAN。
package chesscom

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/John-Robertt/boardsdl/internal/domain"
	"github.com/John-Robertt/boardsdl/internal/fetch"
	"github.com/John-Robertt/boardsdl/internal/jsonx"
	"github.com/John-Robertt/boardsdl/internal/notation"
	"github.com/John-Robertt/boardsdl/internal/pgn"
	"github.com/John-Robertt/boardsdl/internal/provider"
)

var (
	gameRE   = regexp.MustCompile(`(?i)^https?://(\S+\.)?chess\.com/([a-z/]+)?(live|daily|computer)/([a-z/]+)?([0-9]+)[/?#]?`)
	puzzleRE = regexp.MustCompile(`(?i)^https?://(\S+\.)?chess\.com/([a-z/]+)?(puzzles)/problem/([0-9]+)[/?#]?`)

	hashForms = strings.NewReplacer("/live#g=", "/live/game/", "/daily#g=", "/daily/game/", "/computer#g=", "/computer/game/")
)

// paramKind 是对局所属的频道：live、daily 或 computer。
const paramKind = "kind"

const defaultBase = "https://www.chess.com"

type Provider struct {
	// BaseURL 覆盖 https://www.chess.com，主要用于测试。
	BaseURL string
}

func (Provider) Identity() domain.Identity {
	return domain.Identity{Name: "Chess.com", Family: domain.Chess, Strategy: domain.Misc}
}

func (Provider) Identify(u *url.URL) (domain.Match, bool) {
	s := u.String()
	if provider.HostIs(u, "chess.com") {
		if fen := u.Query().Get("fen"); fen != "" && provider.IsFEN(fen) {
			return domain.Match{ID: fen, Type: domain.TypePosition, URL: s}, true
		}
	}
	if m := puzzleRE.FindStringSubmatch(s); m != nil {
		return domain.Match{ID: m[4], Type: domain.TypePuzzle, URL: s}, true
	}
	if m := gameRE.FindStringSubmatch(hashForms.Replace(s)); m != nil {
		return domain.Match{
			ID:     m[5],
			Type:   domain.TypeGame,
			URL:    s,
			Params: map[string]string{paramKind: strings.ToLower(m[3])},
		}, true
	}
	return domain.Match{}, false
}

func (p Provider) base() string {
	if b := strings.TrimSpace(p.BaseURL); b != "" {
		return strings.TrimRight(b, "/")
	}
	return defaultBase
}

func (p Provider) Retrieve(ctx context.Context, m domain.Match, c *fetch.Client) (string, error) {
	switch m.Type {
	case domain.TypePosition:
		return Position(m.ID), nil
	case domain.TypePuzzle:
		return p.puzzle(ctx, m, c)
	case domain.TypeGame:
		return p.game(ctx, m, c)
	default:
		return "", provider.Parsef("未知的记录类型 %q", m.Type)
	}
}

// Position 输出只有起始局面、没有着法的记录。
func Position(fen string) string {
	return fmt.Sprintf("[Site \"chess.com\"]\n[White \"White\"]\n[Black \"Black\"]\n[SetUp \"1\"]\n[FEN \"%s\"]\n\n*", fen)
}

var pgnFixes = strings.NewReplacer(`\n`, "\n", `\"`, `"`, "     ", " ", ". ...", "...", `\t`, "    ")

func (p Provider) puzzle(ctx context.Context, m domain.Match, c *fetch.Client) (string, error) {
	page := p.base() + "/puzzles/problem/" + m.ID
	html, err := c.Get(ctx, page)
	if err != nil {
		return "", err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", provider.Parsef("HTML 解析失败：%v", err)
	}
	raw, ok := doc.Find("div[data-puzzle]").First().Attr("data-puzzle")
	if !ok {
		return "", provider.Parsef("页面中没有谜题数据")
	}
	raw = strings.NewReplacer("&quote;", `"`, `\/`, "/").Replace(raw)
	puzzle, ok := jsonx.Parse(raw)
	if !ok {
		return "", provider.Parsef("谜题数据不是 JSON")
	}

	if text := puzzle.Field("pgn"); text != "" {
		return pgnFixes.Replace(text), nil
	}

	rec := pgn.NewRecord()
	rec.Set(pgn.FieldURL, defaultBase+"/puzzles/problem/"+m.ID)
	if id := puzzle.Get("gameLiveId").Int(); id != 0 {
		rec.Set(pgn.FieldURL, fmt.Sprintf("%s/live/game/%d", defaultBase, id))
	} else if id := puzzle.Get("gameId").Int(); id != 0 {
		rec.Set(pgn.FieldURL, fmt.Sprintf("%s/daily/game/%d", defaultBase, id))
	}
	rating := puzzle.Field("rating")
	rec.Set("Event", "Puzzle "+puzzle.Field("id")+", rated "+rating)
	rec.Set("White", "White")
	rec.Set("Black", "Black")
	rec.Set("Result", "*")
	rec.Set("TimeControl", fmt.Sprintf("%d+0", puzzle.Get("averageSeconds").Int()))
	rec.Set("FEN", puzzle.Field("initialFen"))
	rec.Set("SetUp", "1")
	rec.Set("X_ID", puzzle.Field("id"))
	rec.SetIf("X_Rating", rating)
	rec.SetIf("X_Attempts", puzzle.Field("attemptCount"))
	rec.SetIf("X_PassRate", puzzle.Field("passRate"))
	note := strings.TrimSpace(puzzle.Field("internalNote"))
	if note == "" {
		note = "The first move is not provided"
	}
	rec.Set(pgn.FieldMoves, "{"+note+"}")
	return pgn.Assemble(rec)
}

// callbackURL 返回对局接口地址；电脑对局的路径段顺序不同。
func (p Provider) callbackURL(kind, id string) string {
	if kind == "computer" {
		return p.base() + "/computer/callback/game/" + id
	}
	return p.base() + "/callback/" + kind + "/game/" + id
}

func (p Provider) game(ctx context.Context, m domain.Match, c *fetch.Client) (string, error) {
	api := p.callbackURL(m.Param(paramKind, "live"), m.ID)
	body, err := c.PostForm(ctx, api, nil, false)
	if err != nil {
		return "", err
	}
	doc, ok := jsonx.Parse(body)
	if !ok {
		return "", provider.Parsef("接口返回的不是 JSON")
	}
	if !c.AllowExtra() && doc.Get("game/isRated").Bool() && !doc.Get("game/isFinished").Bool() {
		return "", provider.Parsef("计分对局尚未结束")
	}
	game := doc.Get("game")
	if !game.IsObject() {
		return "", provider.Parsef("接口数据缺少 game")
	}

	rec := pgn.NewRecord()
	game.Get("pgnHeaders").ForEach(func(k string, v jsonx.Doc) bool {
		rec.Set(k, v.String())
		return true
	})
	if rec.Get("Variant") == "Chess960" {
		rec.Set("Variant", notation.Chess960)
	}
	rec.Set(pgn.FieldURL, strings.Replace(api, "/callback/", "/", 1))

	list := game.Field("moveList")
	if list == "" {
		return "", provider.Parsef("接口数据缺少 moveList")
	}
	pairs, err := notation.SplitTCN(list)
	if err != nil {
		return "", err
	}
	v := notation.Shuffle
	if rec.Get("Variant") == "Crazyhouse" {
		v = notation.Crazyhouse
	}
	moves, err := notation.Reconstruct(v, rec.Get("FEN"), notation.Plain(pairs...), notation.DecodeTCN)
	if err != nil {
		return "", err
	}
	rec.Set(pgn.FieldMoves, moves)
	return pgn.Assemble(rec)
}

func (Provider) TestLinks() []domain.TestLink {
	return []domain.TestLink{
		{URL: "https://www.CHESS.com/live/game/3638784952#anchor", Expect: true},
		{URL: "3638784952", Expect: false},
		{URL: "https://chess.com/live#g=3638784952", Expect: true},
		{URL: "https://chess.com/de/live/game/3635508736?username=rikikits", Expect: true},
		{URL: "https://www.chess.com/live/game/1936591455", Expect: true},
		{URL: "https://www.chess.com/analysis/game/live/3874372792", Expect: true},
		{URL: "https://www.chess.com/analysis/game/live/4119932192", Expect: true},
		{URL: "https://www.chess.com/daily/game/223897998", Expect: true},
		{URL: "https://www.chess.com/DAILY/game/224478042", Expect: true},
		{URL: "https://www.chess.com/daily/game/225006782", Expect: true},
		{URL: "https://www.chess.com/daily/GAME/205389002", Expect: true},
		{URL: "https://chess.com/live/game/13029832074287114", Expect: false},
		{URL: "https://www.chess.com/game/computer/412513709", Expect: true},
		{URL: "https://www.chess.com/game/computer/12345678", Expect: false},
		{URL: "https://www.chess.com", Expect: false},
		{URL: "https://www.chess.com/puzzles/problem/41839", Expect: true},
		{URL: "https://www.chess.com/analysis?fen=invalidfen", Expect: false},
		{URL: "https://www.chess.com/analysis?fen=r1b1k3%2F2p2pr1%2F1pp4p%2F8%2F2p5%2F2N5%2FPPP2PPP%2F3RR1K1+b+-+-+3+17&flip=false", Expect: true},
	}
}
