// Package chess24 解析 chess24.com 对局页中内嵌的 initGameSession 数据。
package chess24

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/John-Robertt/boardsdl/internal/domain"
	"github.com/John-Robertt/boardsdl/internal/fetch"
	"github.com/John-Robertt/boardsdl/internal/jsonx"
	"github.com/John-Robertt/boardsdl/internal/notation"
	"github.com/John-Robertt/boardsdl/internal/pgn"
	"github.com/John-Robertt/boardsdl/internal/provider"
)

var urlRE = regexp.MustCompile(`(?i)^https?://chess24\.com/[a-z]+/(analysis|game|download-game)/([a-z0-9\-_]+)[/?#]?`)

const (
	defaultBase   = "https://chess24.com"
	sessionMarker = ".initGameSession("
)

type Provider struct {
	// BaseURL 覆盖 https://chess24.com，主要用于测试。
	BaseURL string
}

func (Provider) Identity() domain.Identity {
	return domain.Identity{Name: "Chess24.com", Family: domain.Chess, Strategy: domain.HTMLParsing}
}

func (Provider) Identify(u *url.URL) (domain.Match, bool) {
	s := u.String()
	if m := urlRE.FindStringSubmatch(s); m != nil && len(m[2]) == 22 {
		return domain.Match{ID: m[2], Type: domain.TypeGame, URL: s}, true
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
	page := p.base() + "/en/game/" + m.ID
	// 不带浏览器 UA 时站点返回 403。
	html, err := c.GetUA(ctx, page)
	if err != nil {
		return "", err
	}

	for _, line := range strings.Split(html, "\n") {
		session, ok := jsonx.Embedded(line, sessionMarker)
		if !ok {
			continue
		}
		game := session.Get("chessGame")
		moves := game.Get("moves")
		if !game.IsObject() || !moves.IsArray() {
			continue
		}
		return buildRecord(defaultBase+"/en/game/"+m.ID, game, moves.Array())
	}
	return "", provider.Parsef("页面中没有对局数据")
}

func buildRecord(link string, game jsonx.Doc, knots []jsonx.Doc) (string, error) {
	rec := pgn.NewRecord()
	rec.Set(pgn.FieldURL, link)
	rec.Set("Event", game.Field("meta/Event"))
	rec.Set("Site", game.Field("meta/Site"))
	rec.Set("Date", game.Field("meta/Date"))
	rec.Set("Round", game.Field("meta/Round"))
	rec.Set("White", game.Field("meta/White/Name"))
	rec.SetIf("WhiteElo", game.Field("meta/White/Elo"))
	rec.Set("Black", game.Field("meta/Black/Name"))
	rec.SetIf("BlackElo", game.Field("meta/Black/Elo"))
	rec.Set("Result", game.Field("meta/Result"))

	// 第 0 个节点携带起始局面，之后每个节点是一步 UCI 着法。
	var fen string
	var tokens []notation.Token
	for _, knot := range knots {
		id := knot.Get("knotId")
		if id.Empty() {
			break
		}
		if id.Int() == 0 {
			fen = knot.Field("fen")
			if fen == "" {
				break
			}
			rec.Set("Variant", notation.Chess960)
			rec.Set("SetUp", "1")
			rec.Set("FEN", fen)
			continue
		}
		if fen == "" {
			return "", provider.Parsef("着法出现在起始局面之前")
		}
		mv := knot.Field("move")
		if mv == "" {
			break
		}
		tokens = append(tokens, notation.Token{Raw: mv})
	}

	moves, err := notation.Reconstruct(notation.Shuffle, fen, tokens, notation.ParseUCI)
	if err != nil {
		return "", err
	}
	rec.Set(pgn.FieldMoves, moves)
	return pgn.Assemble(rec)
}

func (Provider) TestLinks() []domain.TestLink {
	return []domain.TestLink{
		{URL: "https://chess24.com/en/game/DQhOOrJaQKS31LOiOmrqPg#anchor", Expect: true},
		{URL: "https://CHESS24.com", Expect: false},
	}
}
