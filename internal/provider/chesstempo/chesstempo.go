// Package chesstempo 下载 ChessTempo.com 的对局（HTTP）与战术题（WebSocket）。
package chesstempo

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/John-Robertt/boardsdl/internal/domain"
	"github.com/John-Robertt/boardsdl/internal/fetch"
	"github.com/John-Robertt/boardsdl/internal/jsonx"
	"github.com/John-Robertt/boardsdl/internal/pgn"
	"github.com/John-Robertt/boardsdl/internal/provider"
)

var (
	puzzleRE = regexp.MustCompile(`(?i)^https?://(\S+\.)?chesstempo\.com/chess-tactics/(\d+)`)
	gameRE   = regexp.MustCompile(`(?i)^https?://(\S+\.)?chesstempo\.com/gamedb/game/(\d+)`)
)

const (
	defaultBase   = "http://chesstempo.com"
	defaultSocket = "wss://chesstempo.com:443/ws"
	origin        = "https://chesstempo.com"
	// minGameSize 以下的响应不是对局：站点对未知编号返回一段很短的空记录。
	minGameSize = 128
	// maxFrames 是发出请求后最多读取的帧数。
	maxFrames = 3
)

// sessionSetup 是请求题目之前必须发送的两条会话消息。
var sessionSetup = []string{
	`{"eventName":"get-problem-session-data","data":{"problemSetId":1,"sessionSize":20}}`,
	`{"eventName":"set-problem-difficulty","data":{"difficulty":"","problemSetId":1}}`,
}

type Provider struct {
	// BaseURL 覆盖 http://chesstempo.com，主要用于测试。
	BaseURL string
	// SocketURL 覆盖 wss://chesstempo.com:443/ws，主要用于测试。
	SocketURL string
}

func (Provider) Identity() domain.Identity {
	return domain.Identity{Name: "ChessTempo.com", Family: domain.Chess, Strategy: domain.WebSocket}
}

func (Provider) Identify(u *url.URL) (domain.Match, bool) {
	s := u.String()
	if m := puzzleRE.FindStringSubmatch(s); m != nil && provider.NumericID(m[2]) {
		return domain.Match{ID: m[2], Type: domain.TypePuzzle, URL: s}, true
	}
	if m := gameRE.FindStringSubmatch(s); m != nil && provider.NumericID(m[2]) {
		return domain.Match{ID: m[2], Type: domain.TypeGame, URL: s}, true
	}
	return domain.Match{}, false
}

func (p Provider) Retrieve(ctx context.Context, m domain.Match, c *fetch.Client) (string, error) {
	if m.Type == domain.TypePuzzle {
		return p.puzzle(ctx, m, c)
	}
	base := defaultBase
	if b := strings.TrimSpace(p.BaseURL); b != "" {
		base = strings.TrimRight(b, "/")
	}
	// 不带 UA 时站点会返回一局随机对局。
	text, err := c.GetUA(ctx, base+"/requests/download_game_pgn.php?gameids="+m.ID)
	if err != nil {
		return "", err
	}
	if len(text) <= minGameSize {
		return "", provider.Parsef("对局 %s 不存在", m.ID)
	}
	return text, nil
}

func (p Provider) puzzle(ctx context.Context, m domain.Match, c *fetch.Client) (string, error) {
	socket := strings.TrimSpace(p.SocketURL)
	if socket == "" {
		socket = defaultSocket
	}
	h := http.Header{}
	h.Set("Origin", origin)
	s, err := c.Dial(ctx, socket, h)
	if err != nil {
		return "", err
	}
	defer s.Close()

	welcome, err := s.Receive(ctx)
	if err != nil {
		return "", err
	}
	if doc, ok := jsonx.Parse(welcome); !ok || doc.Field("eventName") != "connectionStarted" || doc.Field("data") != "started" {
		return "", provider.Parsef("意外的欢迎消息")
	}
	for _, msg := range append(sessionSetup, `{"eventName":"get-tactic","data":{"problemId":`+m.ID+`,"vo":false}}`) {
		if err := s.Send(ctx, msg); err != nil {
			return "", err
		}
	}

	for i := 0; i < maxFrames; i++ {
		frame, err := s.Receive(ctx)
		if err != nil {
			return "", err
		}
		doc, ok := jsonx.Parse(frame)
		if !ok || doc.Field("eventName") != "get-tactic-result" {
			continue
		}
		payload := doc.Field("data")
		if doc.Get("enc").Bool() {
			if payload, err = decodePayload(payload); err != nil {
				return "", err
			}
		}
		return build(m.ID, payload)
	}
	return "", provider.Parsef("%d 帧内未收到题目", maxFrames)
}

// decodePayload 还原加密的题目数据：每个数字减一（模 10）后按 base64 解码。
func decodePayload(s string) (string, error) {
	b := []byte(s)
	for i, ch := range b {
		if ch >= '0' && ch <= '9' {
			b[i] = '0' + (ch-'0'+9)%10
		}
	}
	raw, err := base64.StdEncoding.DecodeString(string(b))
	if err != nil {
		return "", provider.Parsef("题目数据解码失败：%v", err)
	}
	return string(raw), nil
}

func build(id, payload string) (string, error) {
	puzzle, ok := jsonx.Parse(strings.TrimSpace(payload))
	if !ok {
		return "", provider.Parsef("题目数据不是 JSON")
	}
	info := puzzle.Get("tacticInfo")
	rec := pgn.NewRecord()
	rec.Set(pgn.FieldURL, origin+"/chess-tactics/"+id)
	rec.Set("Event", "Puzzle "+info.Field("problem_id"))
	rec.Set("White", "White")
	rec.Set("Black", "Black")
	rec.Set("Result", "*")
	rec.Set("FEN", info.Field("startPosition"))
	rec.Set("SetUp", "1")
	if moves := strings.TrimSpace(info.Field("moves")); moves != "" {
		rec.Set(pgn.FieldMoves, "{"+info.Field("prevmove")+"} "+moves)
	}
	return pgn.Assemble(rec)
}

func (Provider) TestLinks() []domain.TestLink {
	return []domain.TestLink{
		{URL: "https://chesstempo.com/gamedb/game/2046457", Expect: true},
		{URL: "https://CHESSTEMPO.com/gamedb/game/2046457/foo/bar/123", Expect: true},
		{URL: "https://www.chesstempo.com/gamedb/game/2046457?p=0#tag", Expect: true},
		{URL: "https://en.chesstempo.com/chess-tactics/71360", Expect: true},
		{URL: "http://chesstempo.com/faq.html", Expect: false},
	}
}
