// Package chessbomb 读取 ChessBomb 赛事直播的对局接口（chess.com/events 也由它提供）。
package chessbomb

import (
	"context"
	"math"
	"net/url"
	"strings"

	"github.com/John-Robertt/boardsdl/internal/domain"
	"github.com/John-Robertt/boardsdl/internal/fetch"
	"github.com/John-Robertt/boardsdl/internal/jsonx"
	"github.com/John-Robertt/boardsdl/internal/notation"
	"github.com/John-Robertt/boardsdl/internal/pgn"
	"github.com/John-Robertt/boardsdl/internal/provider"
)

const (
	defaultAPI   = "https://nxt.chessbomb.com/events/api/game"
	eventsPrefix = "/events/"
)

var hosts = map[string]bool{"chess.com": true, "www.chess.com": true, "nxt.chessbomb.com": true}

type Provider struct {
	// APIURL 覆盖 https://nxt.chessbomb.com/events/api/game，主要用于测试。
	APIURL string
}

func (Provider) Identity() domain.Identity {
	return domain.Identity{Name: "ChessBomb.com", Family: domain.Chess, Strategy: domain.API}
}

func (Provider) Identify(u *url.URL) (domain.Match, bool) {
	if !hosts[strings.ToLower(u.Host)] {
		return domain.Match{}, false
	}
	path := strings.Replace(u.Path, "/api/game/", "/", 1)
	if !strings.HasPrefix(path, eventsPrefix) {
		return domain.Match{}, false
	}
	return domain.Match{ID: strings.TrimPrefix(path, eventsPrefix), Type: domain.TypeEvent, URL: u.String()}, true
}

func (p Provider) api() string {
	if a := strings.TrimSpace(p.APIURL); a != "" {
		return strings.TrimRight(a, "/")
	}
	return defaultAPI
}

func (p Provider) Retrieve(ctx context.Context, m domain.Match, c *fetch.Client) (string, error) {
	body, err := c.PostForm(ctx, p.api()+"/"+m.ID, nil, false)
	if err != nil {
		return "", err
	}
	data, ok := jsonx.Parse(body)
	if !ok {
		return "", provider.Parsef("接口返回的不是 JSON")
	}
	return buildRecord("https://www.chess.com"+eventsPrefix+m.ID, data)
}

func buildRecord(link string, data jsonx.Doc) (string, error) {
	rec := pgn.NewRecord()
	rec.Set(pgn.FieldURL, link)
	rec.Set("Event", data.Field("room/name"))
	rec.Set("Site", data.Field("room/officialUrl"))
	date := data.Field("game/startAt")
	if len(date) > 10 {
		date = date[:10]
	}
	rec.Set("Date", date)
	rec.Set("Round", data.FieldOr("game/table", "?")+"."+data.FieldOr("game/board", "?"))
	rec.Set("White", data.Field("game/white/name"))
	rec.SetIf("WhiteElo", data.Field("game/white/elo"))
	rec.SetIf("WhiteTitle", data.Field("game/white/title"))
	rec.Set("Black", data.Field("game/black/name"))
	rec.SetIf("BlackElo", data.Field("game/black/elo"))
	rec.SetIf("BlackTitle", data.Field("game/black/title"))
	rec.Set("Result", data.Field("game/result"))

	// cbn 形如 "1234_e4"：下划线之前是内部编号。
	var sb strings.Builder
	for _, mv := range data.Get("moves").Array() {
		san := mv.Field("cbn")
		if i := strings.IndexByte(san, '_'); i >= 0 {
			san = san[i+1:]
		}
		tok := notation.Token{}
		if clock := mv.Get("clock"); !clock.Empty() {
			tok.HasClock = true
			tok.ClockMS = roundClock(clock.Float())
		}
		notation.AppendMove(&sb, san, tok)
	}
	rec.Set(pgn.FieldMoves, sb.String())
	return pgn.Assemble(rec)
}

// roundClock 把毫秒时钟四舍五入到整秒。ChessBomb 页面显示的就是四舍五入后的值，
// 这里不用 FormatClock 默认的向下取整。
func roundClock(ms float64) int64 {
	return int64(math.Round(ms/1000)) * 1000
}

func (Provider) TestLinks() []domain.TestLink {
	return []domain.TestLink{
		{URL: "https://nxt.chessbomb.com/events/2022-2023-4ncl-division-1/01/Bobras_Piotr-Wall_Gavin", Expect: true},
		{URL: "https://www.chess.com/events/2019-katowice-chess-festival-im/04/Kubicka_Anna-Sliwicka_Alicja", Expect: true},
		{URL: "https://www.chess.com/events/2018-catalan-chess-team-league", Expect: true},
		{URL: "https://nxt.chessbomb.com/page/about/01/nothing", Expect: false},
	}
}
