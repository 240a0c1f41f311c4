// Package lidraughts 实现 lidraughts.org 的国际跳棋对局、研究与谜题下载（PDN）。
package lidraughts

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/John-Robertt/boardsdl/internal/domain"
	"github.com/John-Robertt/boardsdl/internal/fetch"
	"github.com/John-Robertt/boardsdl/internal/jsonx"
	"github.com/John-Robertt/boardsdl/internal/pgn"
	"github.com/John-Robertt/boardsdl/internal/provider"
	"github.com/John-Robertt/boardsdl/internal/provider/lichess"
)

var (
	broadcastRE = regexp.MustCompile(`(?i)^https?://lidraughts\.org/broadcast/[a-z0-9\-]+/([a-z0-9]+)[/?#]?`)
	studyRE     = regexp.MustCompile(`(?i)^https?://lidraughts\.org/study/([a-z0-9]+(/[a-z0-9]+)?)(\.pdn)?/?([\S/]+)?$`)
	puzzleRE    = regexp.MustCompile(`(?i)^https?://lidraughts\.org/training/([0-9]+|daily)[/?#]?`)
	gameRE      = regexp.MustCompile(`(?i)^https?://lidraughts\.org/(game/export/|embed/)?([a-z0-9]+)/?([\S/]+)?$`)
)

const defaultBase = "https://lidraughts.org"

type Provider struct {
	// BaseURL 覆盖 https://lidraughts.org，主要用于测试。
	BaseURL string
}

func (Provider) Identity() domain.Identity {
	return domain.Identity{Name: "Lidraughts.org", Family: domain.Draughts, Strategy: domain.DownloadLink}
}

func (Provider) Identify(u *url.URL) (domain.Match, bool) {
	s := u.String()
	if m := broadcastRE.FindStringSubmatch(s); m != nil && len(m[1]) == 8 {
		return domain.Match{ID: m[1], Type: domain.TypeStudy, URL: s}, true
	}
	if m := studyRE.FindStringSubmatch(s); m != nil && (len(m[1]) == 8 || len(m[1]) == 17) {
		return domain.Match{ID: m[1], Type: domain.TypeStudy, URL: s}, true
	}
	if m := puzzleRE.FindStringSubmatch(s); m != nil {
		if id := strings.ToLower(m[1]); id != "0" {
			return domain.Match{ID: id, Type: domain.TypePuzzle, URL: s}, true
		}
	}
	if m := gameRE.FindStringSubmatch(s); m != nil && len(m[2]) == 8 {
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
	switch m.Type {
	case domain.TypeGame:
		return c.Get(ctx, p.base()+"/game/export/"+m.ID+"?literate=1")
	case domain.TypeStudy:
		return c.GetUA(ctx, p.base()+"/study/"+m.ID+".pdn")
	case domain.TypePuzzle:
		return p.puzzle(ctx, m, c)
	default:
		return "", provider.Parsef("未知的记录类型 %q", m.Type)
	}
}

func (p Provider) puzzle(ctx context.Context, m domain.Match, c *fetch.Client) (string, error) {
	page, err := c.Get(ctx, p.base()+"/training/"+m.ID)
	if err != nil {
		return "", err
	}
	doc, ok := jsonx.Embedded(strings.ReplaceAll(page, "\n", ""), "lidraughts.puzzle =")
	if !ok {
		return "", provider.Parsef("页面中没有谜题数据")
	}
	data := doc.Get("data")
	puzzle := data.Get("puzzle")
	if !puzzle.IsObject() {
		return "", provider.Parsef("谜题数据缺少 puzzle")
	}

	rec := pgn.NewRecord()
	rec.Set(pgn.FieldURL, defaultBase+"/"+puzzle.Field("gameId")+"#"+puzzle.Field("initialPly"))
	rec.Set("Site", "lidraughts.org")
	rating := puzzle.Field("rating")
	rec.Set("Event", "Puzzle "+puzzle.Field("id")+", rated "+rating)
	rec.Set("Result", "*")
	rec.SetIf("X_Rating", rating)
	rec.SetIf("X_Attempts", puzzle.Field("attempts"))
	rec.SetIf("X_Vote", puzzle.Field("vote"))
	rec.Set("White", "White")
	rec.Set("Black", "Black")
	rec.Set("SetUp", "1")
	rec.Set("FEN", data.Field("history/fen"))

	moves := strings.TrimSpace(data.Field("history/san"))
	if moves != "" {
		moves += " "
	}
	rec.Set(pgn.FieldMoves, moves+lichess.Solution(puzzle.Get("branch")))
	return pgn.Assemble(rec)
}

func (Provider) TestLinks() []domain.TestLink {
	return []domain.TestLink{
		{URL: "https://lidraughts.org/broadcast/the-big-christmas-show-round-4/JnWAfmOk", Expect: true},
		{URL: "https://lidraughts.org/broadcast/unknown/ABCD1234", Expect: false},
		{URL: "https://LIDRAUGHTS.org/study/3VwAd32E#tag", Expect: true},
		{URL: "https://lidraughts.org/study/ABCD1234", Expect: false},
		{URL: "https://lidraughts.org/study/F88mhTPe/A9uIwROn?arg", Expect: true},
		{URL: "https://lidraughts.org/study/F88mhTPe/ABCD1234?arg", Expect: true},
		{URL: "https://lidraughts.org/study/ABCD1234/abcd1234?arg", Expect: false},
		{URL: "https://lidraughts.ORG/RicO2oy8?arg", Expect: true},
		{URL: "https://lidraughts.ORG/RicO2oy8/black", Expect: true},
		{URL: "https://lidraughts.org/training/3620", Expect: true},
		{URL: "https://lidraughts.org/training/123456789", Expect: true},
		{URL: "https://lidraughts.org/about", Expect: false},
		{URL: "https://lidraughts.org", Expect: false},
	}
}
