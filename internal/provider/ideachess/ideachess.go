// Package ideachess 通过 IdeaChess.com 的 ajax 接口下载战术题与将杀题。
package ideachess

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
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

const defaultBase = "http://www.ideachess.com"

var urlRE = regexp.MustCompile(`(?i)^https?://(\S+\.)?ideachess\.com/.*/.*/([0-9]+)[/?#]?`)

// paramKind 是题目类型：m 为将杀题，t 为战术题。
const paramKind = "kind"

// kinds 把各语言版本的路径映射到题目类型。
var kinds = []struct{ path, kind string }{
	{"/chess_tactics_puzzles/checkmate_n/", "m"},
	{"/echecs_tactiques/mat_n/", "m"},
	{"/scacchi_tattica/scacco_matto_n/", "m"},
	{"/chess_tactics_puzzles/tactics_n/", "t"},
	{"/echecs_tactiques/tactiques_n/", "t"},
	{"/scacchi_tattica/tattica_n/", "t"},
}

type Provider struct {
	// BaseURL 覆盖 http://www.ideachess.com，主要用于测试。
	BaseURL string
}

func (Provider) Identity() domain.Identity {
	return domain.Identity{Name: "IdeaChess.com", Family: domain.Chess, Strategy: domain.API}
}

func (Provider) Identify(u *url.URL) (domain.Match, bool) {
	s := u.String()
	m := urlRE.FindStringSubmatch(s)
	if m == nil || !provider.NumericID(m[2]) {
		return domain.Match{}, false
	}
	lower := strings.ToLower(s)
	for _, k := range kinds {
		if strings.Contains(lower, k.path) {
			return domain.Match{ID: m[2], Type: domain.TypePuzzle, URL: s, Params: map[string]string{paramKind: k.kind}}, true
		}
	}
	return domain.Match{}, false
}

type request struct {
	Action int         `json:"action"`
	Data   requestData `json:"data"`
}

type requestData struct {
	ProblemNumber int64  `json:"problemNumber"`
	Kind          string `json:"kind"`
}

func (p Provider) Retrieve(ctx context.Context, m domain.Match, c *fetch.Client) (string, error) {
	base := defaultBase
	if b := strings.TrimSpace(p.BaseURL); b != "" {
		base = strings.TrimRight(b, "/")
	}
	n, err := strconv.ParseInt(m.ID, 10, 64)
	if err != nil {
		return "", provider.Parsef("题目编号不是整数：%q", m.ID)
	}
	kind := m.Param(paramKind, "m")
	msg, err := json.Marshal(request{Action: 100, Data: requestData{ProblemNumber: n, Kind: kind}})
	if err != nil {
		return "", err
	}
	page, err := c.Do(ctx, fetch.Request{
		Method:  http.MethodPost,
		URL:     base + "/com/ajax2",
		Form:    map[string]string{"message": string(msg)},
		Headers: map[string]string{"X-Requested-With": "XMLHttpRequest"},
	})
	if err != nil {
		return "", err
	}
	api, ok := jsonx.Parse(page.Text)
	if !ok || api.Get("action").Int() != 200 {
		return "", provider.Parsef("题目 %s 不存在", m.ID)
	}
	return build(api.Get("data"), kind, m.ID)
}

func build(data jsonx.Doc, kind, id string) (string, error) {
	fen, err := base64.StdEncoding.DecodeString(data.Field("FEN"))
	if err != nil {
		return "", provider.Parsef("FEN 不是合法的 base64：%v", err)
	}
	rec := pgn.NewRecord()
	if kind == "t" {
		rec.Set(pgn.FieldURL, defaultBase+"/chess_tactics_puzzles/tactics_n/"+id)
	} else {
		rec.Set(pgn.FieldURL, defaultBase+"/chess_tactics_puzzles/checkmate_n/"+id)
	}
	rec.Set("FEN", strings.TrimSpace(string(fen)))
	rec.Set("SetUp", "1")
	rec.Set(pgn.FieldMoves, data.Field("PGN"))
	if n := data.Get("requiredMoves").Int(); n > 0 {
		rec.Set("Site", fmt.Sprintf("%d moves to find", n))
	}

	// extraInfo 形如 "<编号> <赛事>|<日期>|<白方> - <黑方>|<结果>"。
	parts := strings.Split(data.Field("extraInfo"), "|")
	if len(parts) != 4 {
		rec.Set("Result", "*")
		return pgn.Assemble(rec)
	}
	event := parts[0]
	if i := strings.IndexByte(event, ' '); i >= 0 {
		event = event[i+1:]
	}
	rec.Set("Event", strings.TrimSpace(event))
	rec.Set("Date", strings.TrimSpace(parts[1]))
	if players := strings.Split(parts[2], " - "); len(players) == 2 {
		rec.Set("White", strings.TrimSpace(players[0]))
		rec.Set("Black", strings.TrimSpace(players[1]))
	}
	rec.Set("Result", strings.TrimSpace(parts[3]))
	return pgn.Assemble(rec)
}

func (Provider) TestLinks() []domain.TestLink {
	return []domain.TestLink{
		{URL: "http://www.ideachess.com/chess_tactics_puzzles/checkmate_n/37431", Expect: true},
		{URL: "http://fr.ideachess.com/echecs_tactiques/mat_n/37431", Expect: true},
		{URL: "http://it.ideachess.com/scacchi_tattica/scacco_matto_n/37431", Expect: true},
		{URL: "http://de.ideachess.com/chess_tactics_puzzles/checkmate_n/37431", Expect: true},
		{URL: "http://www.ideachess.com/chess_tactics_puzzles/tactics_n/32603", Expect: true},
		{URL: "http://fr.ideachess.com/echecs_tactiques/tactiques_n/32603", Expect: true},
		{URL: "http://it.ideachess.com/scacchi_tattica/tattica_n/32603", Expect: true},
		{URL: "http://ru.ideachess.com/chess_tactics_puzzles/tactics_n/32603", Expect: true},
		{URL: "http://www.ideachess.com/chess_tactics_puzzles/checkmate_n/123457890", Expect: false},
		{URL: "http://www.ideachess.com/chess_tactics_puzzles/tactics_n/123457890", Expect: false},
		{URL: "http://www.ideachess.com", Expect: false},
	}
}
