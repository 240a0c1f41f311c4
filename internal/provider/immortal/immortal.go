// Package immortal 解析 immortal.game 对局页中的 remix 上下文。
package immortal

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/John-Robertt/boardsdl/internal/domain"
	"github.com/John-Robertt/boardsdl/internal/fetch"
	"github.com/John-Robertt/boardsdl/internal/jsonx"
	"github.com/John-Robertt/boardsdl/internal/notation"
	"github.com/John-Robertt/boardsdl/internal/pgn"
	"github.com/John-Robertt/boardsdl/internal/provider"
)

var urlRE = regexp.MustCompile(`(?i)^https?://immortal\.game/games/([0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12})[/?#]?`)

const (
	defaultBase   = "https://immortal.game"
	contextMarker = "window.__remixContext = "
	routeKey      = "routeData|routes/games/$gameId"
	noMoves       = "{The game ended without any move}"
)

var jsFixes = strings.NewReplacer("'", `"`, ":undefined", ":null")

type Provider struct {
	// BaseURL 覆盖 https://immortal.game，主要用于测试。
	BaseURL string
}

func (Provider) Identity() domain.Identity {
	return domain.Identity{Name: "Immortal.game", Family: domain.Chess, Strategy: domain.HTMLParsing}
}

func (Provider) Identify(u *url.URL) (domain.Match, bool) {
	s := u.String()
	if m := urlRE.FindStringSubmatch(s); m != nil {
		return domain.Match{ID: strings.ToLower(m[1]), Type: domain.TypeGame, URL: s}, true
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
	page, err := c.Get(ctx, p.base()+"/games/"+m.ID)
	if err != nil {
		return "", err
	}
	start := strings.Index(page, contextMarker)
	if start < 0 {
		return "", provider.Parsef("页面中没有 remix 上下文")
	}
	end := strings.Index(page[start:], "};</script>")
	if end < 0 {
		return "", provider.Parsef("remix 上下文不完整")
	}
	raw := page[start+len(contextMarker) : start+end+1]
	doc, ok := jsonx.Parse(jsFixes.Replace(raw))
	if !ok {
		return "", provider.Parsef("remix 上下文不是 JSON")
	}
	game := doc.GetSep(routeKey, "|")
	if !game.IsObject() {
		return "", provider.Parsef("remix 上下文缺少对局")
	}
	return buildRecord(defaultBase+"/games/"+m.ID, game)
}

func buildRecord(link string, game jsonx.Doc) (string, error) {
	rec := pgn.NewRecord()
	rec.Set(pgn.FieldURL, link)
	variant, speed := game.Field("variant"), game.Field("gameSpeed")
	if variant == "immortal" {
		rec.Set("Event", "Immortal game")
	} else {
		rec.Set("Event", "Standard game")
	}
	white := game.Field("players/white/username")
	black := game.Field("players/black/username")
	rec.Set("White", white)
	rec.Set("Black", black)
	perf := "perfs/" + variant + "/" + speed + "/glicko/rating"
	if elo := rating(game.Get("players/white/" + perf)); elo > 0 {
		rec.Set("WhiteElo", strconv.Itoa(elo))
	}
	if elo := rating(game.Get("players/black/" + perf)); elo > 0 {
		rec.Set("BlackElo", strconv.Itoa(elo))
	}
	if tc := strings.SplitN(game.Field("playAgainConfig/speed"), "+", 2); len(tc) == 2 {
		if minutes, err := strconv.Atoi(tc[0]); err == nil {
			rec.Set("TimeControl", fmt.Sprintf("%d+%s", minutes*60, tc[1]))
		}
	}
	switch game.Field("initialWinner/username") {
	case white:
		rec.Set("Result", "1-0")
	case black:
		rec.Set("Result", "0-1")
	default:
		rec.Set("Result", "1/2-1/2")
	}

	history := game.Get("initialHistory").Array()
	if len(history) == 0 {
		rec.Set(pgn.FieldMoves, noMoves)
		return pgn.Assemble(rec)
	}
	var sb strings.Builder
	for _, mv := range history {
		clock := mv.Get("clock/" + mv.Field("color"))
		notation.AppendMove(&sb, mv.Field("san"), notation.Token{
			ClockMS:  clock.Int(),
			HasClock: clock.Exists(),
		})
		rec.Set("PlyCount", mv.Field("ply"))
	}
	rec.Set(pgn.FieldMoves, sb.String())
	return pgn.Assemble(rec)
}

// rating 把浮点等级分四舍五入为整数；无法解析时为 0。
func rating(v jsonx.Doc) int {
	f, err := strconv.ParseFloat(v.String(), 64)
	if err != nil {
		return 0
	}
	return int(math.Round(f))
}

func (Provider) TestLinks() []domain.TestLink {
	return []domain.TestLink{
		{URL: "https://immortal.game/games/fd73b68c-a3d0-4dd7-9530-8e74d1bb52ea", Expect: true},
		{URL: "https://immortal.game/games/18c2c3a0-e24f-4c2a-aaab-1a7ef12b8968", Expect: true},
		{URL: "https://immortal.game/games/244e891b-4a37-46f9-9474-f4f17e741b40", Expect: true},
		{URL: "https://immortal.game/games/6c3af1d6-61f0-45c8-a93f-b0d74be48aeb", Expect: true},
		{URL: "https://immortal.game/games/a4c23fb2-7b4b-4a71-bdbf-63578dff0bba", Expect: true},
		{URL: "https://immortal.game/games/4e135f9a-7f57-43e5-bc32-03564e04a218", Expect: true},
		{URL: "https://immortal.game", Expect: false},
	}
}
