// Package lichess 实现 lichess.org（以及 lichess.dev）的对局、研究、直播、练习与谜题下载。
package lichess

import (
	"context"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/John-Robertt/boardsdl/internal/domain"
	"github.com/John-Robertt/boardsdl/internal/fetch"
	"github.com/John-Robertt/boardsdl/internal/jsonx"
	"github.com/John-Robertt/boardsdl/internal/pgn"
	"github.com/John-Robertt/boardsdl/internal/provider"
)

var (
	broadcastRE = regexp.MustCompile(`(?i)^https?://(\S+\.)?lichess\.(org|dev)/broadcast/[a-z0-9\-]+/([a-z0-9]+)[/?#]?`)
	practiceRE  = regexp.MustCompile(`(?i)^https?://(\S+\.)?lichess\.(org|dev)/practice/[\w\-/]+/([a-z0-9]+/[a-z0-9]+)(\.pgn)?/?([\S/]+)?$`)
	studyRE     = regexp.MustCompile(`(?i)^https?://(\S+\.)?lichess\.(org|dev)/study/([a-z0-9]+(/[a-z0-9]+)?)(\.pgn)?/?([\S/]+)?$`)
	puzzleRE    = regexp.MustCompile(`(?i)^https?://(\S+\.)?lichess\.(org|dev)/training/([0-9]+|daily)[/?#]?`)
	gameRE      = regexp.MustCompile(`(?i)^https?://(\S+\.)?lichess\.(org|dev)/(game/export/|embed/)?([a-z0-9]+)/?([\S/]+)?$`)
)

// paramTLD 保存 URL 的顶级域名（org 或 dev）。
const paramTLD = "tld"

// Provider 下载 lichess 的记录。已结束的对局走官方导出；未结束的对局由接口数据重建。
type Provider struct {
	// BaseURL 覆盖 https://lichess.<tld>，主要用于测试。
	BaseURL string
}

func (Provider) Identity() domain.Identity {
	return domain.Identity{Name: "Lichess.org", Family: domain.Chess, Strategy: domain.DownloadLink}
}

func (Provider) Identify(u *url.URL) (domain.Match, bool) {
	s := u.String()
	match := func(t domain.URLType, id, tld string) (domain.Match, bool) {
		return domain.Match{ID: id, Type: t, URL: s, Params: map[string]string{paramTLD: strings.ToLower(tld)}}, true
	}

	if m := broadcastRE.FindStringSubmatch(s); m != nil && len(m[3]) == 8 {
		return match(domain.TypeStudy, m[3], m[2])
	}
	if m := practiceRE.FindStringSubmatch(s); m != nil && len(m[3]) == 17 {
		return match(domain.TypeStudy, m[3], m[2])
	}
	if m := studyRE.FindStringSubmatch(s); m != nil && (len(m[3]) == 8 || len(m[3]) == 17) {
		return match(domain.TypeStudy, m[3], m[2])
	}
	if m := puzzleRE.FindStringSubmatch(s); m != nil {
		if id := strings.ToLower(m[3]); id != "0" {
			return match(domain.TypePuzzle, id, m[2])
		}
	}
	if m := gameRE.FindStringSubmatch(s); m != nil && len(m[4]) == 8 {
		return match(domain.TypeGame, m[4], m[2])
	}
	return domain.Match{}, false
}

func (p Provider) base(m domain.Match) string {
	if b := strings.TrimSpace(p.BaseURL); b != "" {
		return strings.TrimRight(b, "/")
	}
	return "https://lichess." + m.Param(paramTLD, "org")
}

func (p Provider) Retrieve(ctx context.Context, m domain.Match, c *fetch.Client) (string, error) {
	switch m.Type {
	case domain.TypeGame:
		return p.game(ctx, m, c)
	case domain.TypeStudy:
		return c.GetUA(ctx, p.base(m)+"/study/"+m.ID+".pgn")
	case domain.TypePuzzle:
		return p.puzzle(ctx, m, c)
	default:
		return "", provider.Parsef("未知的记录类型 %q", m.Type)
	}
}

func (p Provider) game(ctx context.Context, m domain.Match, c *fetch.Client) (string, error) {
	return Game(ctx, c, p.base(m), m.ID)
}

// Game 下载 lichess 系站点（base 为站点根地址）的对局：已结束的对局走官方导出，
// 未结束的对局由接口数据重建；计分且未结束的对局只在 AllowExtra 时返回。
func Game(ctx context.Context, c *fetch.Client, base, id string) (string, error) {
	body, err := c.GetHeaders(ctx, base+"/import/master/"+id+"/white", map[string]string{
		"X-Requested-With": "XMLHttpRequest",
		"Accept":           "application/vnd.lichess.v4+json",
	})
	if err != nil {
		return "", err
	}
	api, ok := jsonx.Parse(body)
	if !ok {
		return "", provider.Parsef("接口返回的不是 JSON")
	}
	if api.Get("game/winner").Exists() {
		return c.Get(ctx, base+"/game/export/"+id+"?literate=1")
	}
	if api.Get("game/rated").Bool() && !c.AllowExtra() {
		return "", provider.Parsef("计分对局尚未结束")
	}

	rec := pgn.NewRecord()
	rec.Set(pgn.FieldURL, base+api.Field("url/round"))
	rec.Set("Variant", api.Field("game/variant/name"))
	rec.Set("FEN", api.Field("game/initialFen"))
	rec.Set("SetUp", "1")
	rec.Set("White", api.FieldOr("player/name", api.FieldOr("player/user/username", "Anonymous")))
	rec.SetIf("WhiteElo", api.Field("player/rating"))
	rec.Set("Black", api.FieldOr("opponent/name", api.FieldOr("opponent/user/username", "Anonymous")))
	rec.SetIf("BlackElo", api.Field("opponent/rating"))
	if clock := api.Get("clock"); !clock.Empty() {
		rec.Set("TimeControl", clock.Field("initial")+"+"+clock.Field("increment"))
	} else {
		rec.Set("TimeControl", strconv.FormatInt(api.Get("correspondence/increment").Int()/86400, 10)+"d")
	}
	rec.Set("Result", "*")

	var moves []string
	for _, step := range api.Get("steps").Array() {
		if step.Get("ply").Int() > 0 {
			moves = append(moves, step.Field("san"))
		}
	}
	rec.Set(pgn.FieldMoves, strings.Join(moves, " "))
	return pgn.Assemble(rec)
}

func (p Provider) puzzle(ctx context.Context, m domain.Match, c *fetch.Client) (string, error) {
	page, err := c.Get(ctx, p.base(m)+"/training/"+m.ID)
	if err != nil {
		return "", err
	}
	data, ok := jsonx.Embedded(strings.ReplaceAll(page, "\n", ""), "lichess.puzzle =")
	if !ok {
		return "", provider.Parsef("页面中没有谜题数据")
	}
	puzzle := data.Get("puzzle")
	if !puzzle.IsObject() {
		return "", provider.Parsef("谜题数据缺少 puzzle")
	}

	tld := m.Param(paramTLD, "org")
	rec := pgn.NewRecord()
	rec.Set(pgn.FieldURL, "https://lichess."+tld+"/"+puzzle.Field("gameId")+"#"+puzzle.Field("initialPly"))
	rec.Set("Site", "lichess."+tld)
	rating := puzzle.Field("rating")
	rec.Set("Event", "Puzzle "+puzzle.Field("id")+", rated "+rating)
	rec.Set("Result", "*")
	rec.Set("X_ID", puzzle.Field("id"))
	rec.SetIf("X_TimeControl", data.Field("game/clock"))
	rec.SetIf("X_Rating", rating)
	rec.SetIf("X_Attempts", puzzle.Field("attempts"))
	rec.SetIf("X_Vote", puzzle.Field("vote"))

	players := data.Get("game/players")
	if !players.IsArray() {
		return "", provider.Parsef("谜题数据缺少玩家")
	}
	for _, pl := range players.Array() {
		var tag string
		switch pl.Field("color") {
		case "white":
			tag = "White"
		case "black":
			tag = "Black"
		default:
			return "", provider.Parsef("未知的执子颜色 %q", pl.Field("color"))
		}
		name, elo := splitRated(pl.Field("name"))
		rec.Set(tag, name)
		rec.SetIf(tag+"Elo", elo)
	}

	parts := data.Get("game/treeParts")
	if !parts.IsArray() {
		return "", provider.Parsef("谜题数据缺少着法")
	}
	var sb strings.Builder
	for _, part := range parts.Array() {
		if part.Field("ply") == "0" {
			rec.Set("SetUp", "1")
			rec.Set("FEN", part.Field("fen"))
			continue
		}
		sb.WriteString(part.Field("san"))
		sb.WriteByte(' ')
	}
	sb.WriteString(Solution(puzzle.Get("branch")))
	rec.Set(pgn.FieldMoves, sb.String())
	return pgn.Assemble(rec)
}

// Solution 沿 children[0] 展开解答分支，输出 "{Solution: a b c }"。
func Solution(branch jsonx.Doc) string {
	var sb strings.Builder
	sb.WriteString("{Solution: ")
	for node := branch; node.Exists(); {
		sb.WriteString(node.Field("san"))
		sb.WriteByte(' ')
		node = node.Get("children/[0]")
	}
	sb.WriteString("}")
	return sb.String()
}

// splitRated 把 "name (1500)" 拆成名字与等级分。
func splitRated(s string) (name, elo string) {
	i := strings.Index(s, " (")
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSuffix(s[i+2:], ")")
}

func (Provider) TestLinks() []domain.TestLink {
	return []domain.TestLink{
		{URL: "http://lichess.org/CA4bR2b8/black/analysis#12", Expect: true},
		{URL: "https://lichess.org/CA4bR2b8", Expect: true},
		{URL: "CA4bR2b8", Expect: false},
		{URL: "https://lichess.org/game/export/CA4bR2b8", Expect: true},
		{URL: "https://LICHESS.org/embed/CA4bR2b8/black?theme=brown", Expect: true},
		{URL: "http://fr.lichess.org/@/thibault", Expect: false},
		{URL: "http://lichess.org/blog", Expect: false},
		{URL: "http://lichess.dev/ABCD1234", Expect: false},
		{URL: "https://lichess.org/9y4KpPyG", Expect: true},
		{URL: "https://LICHESS.org/nGhOUXdP?p=0", Expect: true},
		{URL: "https://lichess.org/nGhOUXdP?p=0#3", Expect: true},
		{URL: "https://hu.lichess.org/study/hr4H7sOB?page=1", Expect: true},
		{URL: "https://lichess.org/study/76AirB4Y/C1NcczQl", Expect: true},
		{URL: "https://lichess.org/study/hr4H7sOB/fvtzEXvi.pgn#32", Expect: true},
		{URL: "https://lichess.org/STUDY/hr4H7sOB.pgn", Expect: true},
		{URL: "https://lichess.org/training/daily", Expect: true},
		{URL: "https://lichess.org/training/84969", Expect: true},
		{URL: "https://lichess.org/training/1281301832", Expect: false},
		{URL: "https://lichess.org/broadcast/2019-gct-zagreb-round-4/jQ1dbbX9", Expect: true},
		{URL: "https://lichess.org/broadcast/2019-pychess-round-1/pychess1", Expect: false},
		{URL: "https://lichess.ORG/practice/basic-tactics/the-pin/9ogFv8Ac/BRmScz9t#t", Expect: true},
		{URL: "https://lichess.org/practice/py/chess/12345678/abcdEFGH", Expect: false},
	}
}
