package chesscom

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/John-Robertt/boardsdl/internal/domain"
	"github.com/John-Robertt/boardsdl/internal/fetch"
	"github.com/John-Robertt/boardsdl/internal/notation"
)

func TestIdentify(t *testing.T) {
	cases := []struct {
		in   string
		ok   bool
		typ  domain.URLType
		id   string
		kind string
	}{
		{"https://www.CHESS.com/live/game/3638784952#anchor", true, domain.TypeGame, "3638784952", "live"},
		{"https://chess.com/live#g=3638784952", true, domain.TypeGame, "3638784952", "live"},
		{"https://chess.com/de/live/game/3635508736?username=rikikits", true, domain.TypeGame, "3635508736", "live"},
		{"https://www.chess.com/analysis/game/live/3874372792", true, domain.TypeGame, "3874372792", "live"},
		{"https://www.chess.com/DAILY/game/224478042", true, domain.TypeGame, "224478042", "daily"},
		{"https://www.chess.com/game/computer/412513709", true, domain.TypeGame, "412513709", "computer"},
		{"https://www.chess.com/puzzles/problem/41839", true, domain.TypePuzzle, "41839", ""},
		{"https://www.chess.com/analysis?fen=r1b1k3%2F2p2pr1%2F1pp4p%2F8%2F2p5%2F2N5%2FPPP2PPP%2F3RR1K1+b+-+-+3+17&flip=false", true,
			domain.TypePosition, "r1b1k3/2p2pr1/1pp4p/8/2p5/2N5/PPP2PPP/3RR1K1 b - - 3 17", ""},
		{"https://www.chess.com/analysis?fen=invalidfen", false, "", "", ""},
		{"https://www.chess.com", false, "", "", ""},
		{"https://lichess.org/live/game/1", false, "", "", ""},
	}
	for _, c := range cases {
		u, err := url.Parse(c.in)
		require.NoError(t, err)
		m, ok := Provider{}.Identify(u)
		if ok != c.ok {
			t.Fatalf("%s：期望 ok=%v，实际 %v", c.in, c.ok, ok)
		}
		if ok && (m.Type != c.typ || m.ID != c.id || m.Param(paramKind, "") != c.kind) {
			t.Fatalf("%s：认领结果不符：%+v", c.in, m)
		}
	}
}

func TestPosition(t *testing.T) {
	got, err := Provider{}.Retrieve(context.Background(), domain.Match{ID: "8/8/8/8/8/8/8/K6k w - - 0 1", Type: domain.TypePosition}, nil)
	require.NoError(t, err)
	want := "[Site \"chess.com\"]\n[White \"White\"]\n[Black \"Black\"]\n[SetUp \"1\"]\n[FEN \"8/8/8/8/8/8/8/K6k w - - 0 1\"]\n\n*"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("局面记录不符 (-want +got):\n%s", diff)
	}
}

func newServer(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.Method+" "+r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T, allowExtra bool) *fetch.Client {
	t.Helper()
	c, err := fetch.New(fetch.Options{AllowExtra: allowExtra})
	require.NoError(t, err)
	return c
}

func TestRetrieve_Game(t *testing.T) {
	srv := newServer(t, map[string]string{
		"POST /callback/live/game/1": `{"game":{"isRated":false,"isFinished":true,
			"pgnHeaders":{"Event":"Live Chess","White":"alice","Black":"bob","Result":"*","WhiteElo":1500},
			"moveList":"mC0Kgv"}}`,
		"POST /computer/callback/game/2": `{"game":{"pgnHeaders":{"Event":"vs Computer","Variant":"Chess960",
			"SetUp":"1","FEN":"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"},"moveList":"mC"}}`,
		"POST /callback/daily/game/3": `{"game":{"isRated":true,"isFinished":false,"pgnHeaders":{},"moveList":"mC"}}`,
		"POST /callback/live/game/4":  `{"game":{"pgnHeaders":{},"moveList":"mCmC"}}`,
	})
	p := Provider{BaseURL: srv.URL}
	ctx := context.Background()

	got, err := p.Retrieve(ctx, domain.Match{ID: "1", Type: domain.TypeGame, Params: map[string]string{paramKind: "live"}}, newClient(t, false))
	require.NoError(t, err)
	for _, want := range []string{`[White "alice"]`, `[WhiteElo "1500"]`, "{" + srv.URL + "/live/game/1}", "e4 e5 Nf3 *"} {
		if !strings.Contains(got, want) {
			t.Fatalf("对局结果缺少 %q：\n%s", want, got)
		}
	}

	got, err = p.Retrieve(ctx, domain.Match{ID: "2", Type: domain.TypeGame, Params: map[string]string{paramKind: "computer"}}, newClient(t, false))
	require.NoError(t, err)
	if strings.Contains(got, "Variant") || strings.Contains(got, "FEN") {
		t.Fatalf("经典开局的 Chess960 应还原为普通对局：\n%s", got)
	}
	if !strings.Contains(got, "{"+srv.URL+"/computer/game/2}") {
		t.Fatalf("电脑对局 URL 不符：\n%s", got)
	}

	daily := domain.Match{ID: "3", Type: domain.TypeGame, Params: map[string]string{paramKind: "daily"}}
	if _, err := p.Retrieve(ctx, daily, newClient(t, false)); err == nil {
		t.Fatalf("计分且未结束的对局应失败")
	}
	if _, err := p.Retrieve(ctx, daily, newClient(t, true)); err != nil {
		t.Fatalf("allow_extra 时应返回对局：%v", err)
	}

	_, err = p.Retrieve(ctx, domain.Match{ID: "4", Type: domain.TypeGame, Params: map[string]string{paramKind: "live"}}, newClient(t, false))
	var ime *notation.IllegalMoveError
	if !errors.As(err, &ime) || ime.Ply != 2 {
		t.Fatalf("期望第 2 步非法，实际 %v", err)
	}
}

func TestRetrieve_Puzzle(t *testing.T) {
	srv := newServer(t, map[string]string{
		"GET /puzzles/problem/1": `<html><div id="x" data-puzzle='{"id":1,"rating":1200,"averageSeconds":40,
			"initialFen":"6k1/5ppp/8/8/8/8/5PPP/3R2K1 w - - 0 1","attemptCount":9,"passRate":50,
			"gameLiveId":77,"internalNote":" Back rank "}'></div></html>`,
		"GET /puzzles/problem/2": `<div data-puzzle='{"pgn":"[Event \\\"x\\\"]\\n\\n1. e4 e5 *"}'></div>`,
		"GET /puzzles/problem/3": `<html><body>nothing</body></html>`,
	})
	p := Provider{BaseURL: srv.URL}
	c := newClient(t, false)
	ctx := context.Background()

	got, err := p.Retrieve(ctx, domain.Match{ID: "1", Type: domain.TypePuzzle}, c)
	require.NoError(t, err)
	for _, want := range []string{
		`[Event "Puzzle 1, rated 1200"]`,
		`[TimeControl "40+0"]`,
		`[X_PassRate "50"]`,
		"{https://www.chess.com/live/game/77}",
		"{Back rank} *",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("谜题结果缺少 %q：\n%s", want, got)
		}
	}

	got, err = p.Retrieve(ctx, domain.Match{ID: "2", Type: domain.TypePuzzle}, c)
	require.NoError(t, err)
	require.Equal(t, "[Event \"x\"]\n\n1. e4 e5 *", got)

	if _, err := p.Retrieve(ctx, domain.Match{ID: "3", Type: domain.TypePuzzle}, c); err == nil {
		t.Fatalf("没有谜题数据时应失败")
	}
}
