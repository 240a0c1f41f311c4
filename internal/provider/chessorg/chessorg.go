// Package chessorg 通过 chess.org 的 SockJS 通道读取对局。
//
// 流程：对局页取出加密用户名 → 连接 /play-sockjs/<n>/<session>/websocket →
// 等待 "o" → 发送 ["<用户名> <对局 ID>"] → 读取第一帧 "a[...]" 中的对局 JSON。
package chessorg

import (
	"context"
	"fmt"
	"math/rand"
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

var urlRE = regexp.MustCompile(`(?i)^https?://chess\.org/play/([a-f0-9\-]+)[/?#]?`)

const defaultBase = "https://chess.org"

type outcome struct {
	result string
	reason string
}

// outcomes 以对局状态码为下标。
var outcomes = []outcome{
	{"*", "Game started"},
	{"1-0", "White checkmated"},
	{"0-1", "Black checkmated"},
	{"1/2-1/2", "White stalemated"},
	{"1/2-1/2", "Black stalemated"},
	{"1/2-1/2", "Insufficient material"},
	{"1/2-1/2", "50-move rule"},
	{"1/2-1/2", "Threefold repetition"},
	{"1/2-1/2", "Mutual agreement"},
	{"0-1", "White resigned"},
	{"1-0", "Black resigned"},
	{"0-1", "White canceled"},
	{"1-0", "Black canceled"},
	{"1-0", "White out of time"},
	{"0-1", "Black out of time"},
	{"*", "Not started"},
}

type Provider struct {
	// BaseURL 覆盖 https://chess.org（WebSocket 地址随之推导），主要用于测试。
	BaseURL string
}

func (Provider) Identity() domain.Identity {
	return domain.Identity{Name: "Chess.org", Family: domain.Chess, Strategy: domain.WebSocket}
}

func (Provider) Identify(u *url.URL) (domain.Match, bool) {
	s := u.String()
	if m := urlRE.FindStringSubmatch(s); m != nil && len(m[1]) == 36 {
		return domain.Match{ID: m[1], Type: domain.TypeGame, URL: s}, true
	}
	return domain.Match{}, false
}

func (p Provider) base() string {
	if b := strings.TrimSpace(p.BaseURL); b != "" {
		return strings.TrimRight(b, "/")
	}
	return defaultBase
}

// socketURL 生成一次性的 SockJS 地址：服务器编号 1..1000 与 8 个小写字母的会话名。
func (p Provider) socketURL() string {
	const letters = "abcdefghijklmnopqrstuvwxyz"
	session := make([]byte, 8)
	for i := range session {
		session[i] = letters[rand.Intn(len(letters))]
	}
	base := p.base()
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return fmt.Sprintf("%s/play-sockjs/%d/%s/websocket", base, 1+rand.Intn(1000), session)
}

func (p Provider) Retrieve(ctx context.Context, m domain.Match, c *fetch.Client) (string, error) {
	page := p.base() + "/play/" + m.ID
	html, err := c.Get(ctx, page)
	if err != nil {
		return "", err
	}
	name := encryptedUsername(html)
	if name == "" {
		return "", provider.Parsef("页面中没有加密用户名")
	}

	payload, err := p.exchange(ctx, c, name+" "+m.ID)
	if err != nil {
		return "", err
	}
	game, ok := jsonx.Parse(payload)
	if !ok {
		return "", provider.Parsef("对局数据不是 JSON")
	}
	return buildRecord(defaultBase+"/play/"+m.ID, game)
}

func (p Provider) exchange(ctx context.Context, c *fetch.Client, hello string) (string, error) {
	s, err := c.Dial(ctx, p.socketURL(), nil)
	if err != nil {
		return "", err
	}
	defer s.Close()

	frame, err := s.Receive(ctx)
	if err != nil {
		return "", err
	}
	if frame != "o" {
		return "", provider.Parsef("SockJS 握手帧不符：%q", frame)
	}
	if err := s.Send(ctx, fmt.Sprintf(`["%s"]`, hello)); err != nil {
		return "", err
	}
	frame, err = s.Receive(ctx)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(frame, "a") {
		return "", provider.Parsef("SockJS 数据帧不符：%q", frame)
	}
	arr, ok := jsonx.Parse(frame[1:])
	if !ok || arr.Get("[0]").Empty() {
		return "", provider.Parsef("SockJS 数据帧为空")
	}
	return arr.Get("[0]").String(), nil
}

func encryptedUsername(html string) string {
	for _, line := range strings.Split(html, "\n") {
		pos := strings.Index(line, "encryptedUsername")
		if pos < 0 {
			continue
		}
		rest := line[pos:]
		i := strings.IndexByte(rest, '\'')
		if i < 0 {
			continue
		}
		j := strings.IndexByte(rest[i+1:], '\'')
		if j > 0 {
			return rest[i+1 : i+1+j]
		}
	}
	return ""
}

// fixFEN 交换易位字段的第 2、3 个字符；站点按 KkQq 的顺序书写。
func fixFEN(fen string) string {
	f := strings.Fields(fen)
	if len(f) < 3 || len(f[2]) != 4 {
		return fen
	}
	t := f[2]
	f[2] = string([]byte{t[0], t[2], t[1], t[3]})
	return strings.Join(f, " ")
}

func buildRecord(link string, game jsonx.Doc) (string, error) {
	rec := pgn.NewRecord()
	rec.Set(pgn.FieldURL, link)

	creator, opponent := "Black", "White"
	if game.Field("creatorColor") == "1" {
		creator, opponent = "White", "Black"
	}
	rec.Set(creator, game.Field("creatorId"))
	if elo := game.Field("creatorPoint"); elo != "" && elo != "0" {
		rec.Set(creator+"Elo", elo)
	}
	rec.Set(opponent, game.Field("opponentId"))
	if elo := game.Field("opponentPoint"); elo != "" && elo != "0" {
		rec.Set(opponent+"Elo", elo)
	}

	var fen string
	if start := game.Field("startPos"); start != "" && start != "startpos" {
		fen = fixFEN(start)
		rec.Set("SetUp", "1")
		rec.Set("FEN", fen)
		rec.Set("Variant", notation.Chess960)
	}
	limit, bonus := game.Field("timeLimitSecs"), game.Field("timeBonusSecs")
	if limit != "" && bonus != "" {
		rec.Set("TimeControl", limit+"+"+bonus)
	}

	state := game.Get("state").Int()
	rec.Set("Result", "*")
	rec.Set(pgn.FieldReason, fmt.Sprintf("Unknown reason %d", state))
	if state >= 0 && state < int64(len(outcomes)) {
		rec.Set("Result", outcomes[state].result)
		rec.Set(pgn.FieldReason, outcomes[state].reason)
	}

	lans := game.Field("lans")
	if lans == "" {
		return "", provider.Parsef("对局数据缺少着法")
	}
	moves, err := notation.Reconstruct(notation.Shuffle, fen, notation.Plain(strings.Split(lans, " ")...), notation.ParseUCI)
	if err != nil {
		return "", err
	}
	rec.Set(pgn.FieldMoves, moves)
	return pgn.Assemble(rec)
}

func (Provider) TestLinks() []domain.TestLink {
	return []domain.TestLink{
		{URL: "https://chess.org/play/19a8ffe8-b543-4a41-be02-e84e0f4d6f3a", Expect: true},
		{URL: "https://CHESS.org/play/c28f1b76-aee0-4577-b8a5-eeda6a0e14af", Expect: true},
		{URL: "https://chess.org/play/c28fffe8-ae43-4541-b802-eeda6a4d6f3a", Expect: false},
		{URL: "https://chess.org", Expect: false},
	}
}
