package chess24

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/John-Robertt/boardsdl/internal/domain"
	"github.com/John-Robertt/boardsdl/internal/fetch"
)

func TestIdentify(t *testing.T) {
	for in, want := range map[string]bool{
		"https://chess24.com/en/game/DQhOOrJaQKS31LOiOmrqPg#anchor":     true,
		"https://chess24.com/de/analysis/DQhOOrJaQKS31LOiOmrqPg":        true,
		"https://chess24.com/en/download-game/DQhOOrJaQKS31LOiOmrqPg?x": true,
		"https://chess24.com/en/game/short":                             false,
		"https://CHESS24.com":                                           false,
	} {
		u, err := url.Parse(in)
		require.NoError(t, err)
		if _, ok := (Provider{}).Identify(u); ok != want {
			t.Fatalf("%s：期望 %v，实际 %v", in, want, ok)
		}
	}
}

const page = "<html>\n<script>var x = 1;</script>\n" +
	`<script>window.app.initGameSession({"chessGame":{"meta":{"Event":"Open","Site":"Berlin","Date":"2020.01.02","Round":"3",` +
	`"White":{"Name":"Alice","Elo":2400},"Black":{"Name":"Bob"},"Result":"1-0"},` +
	`"moves":[{"knotId":0,"fen":"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"},{"knotId":1,"move":"e2e4"},{"knotId":2,"move":"e7e5"}]}});</script>` +
	"\n</html>"

func TestRetrieve(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" || r.URL.Path != "/en/game/DQhOOrJaQKS31LOiOmrqPg" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Write([]byte(page))
	}))
	defer srv.Close()

	c, err := fetch.New(fetch.Options{})
	require.NoError(t, err)
	got, err := Provider{BaseURL: srv.URL}.Retrieve(context.Background(),
		domain.Match{ID: "DQhOOrJaQKS31LOiOmrqPg", Type: domain.TypeGame}, c)
	require.NoError(t, err)
	for _, want := range []string{
		`[Event "Open"]`,
		`[White "Alice"]`,
		`[WhiteElo "2400"]`,
		"{https://chess24.com/en/game/DQhOOrJaQKS31LOiOmrqPg}",
		"e4 e5 1-0",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("结果缺少 %q：\n%s", want, got)
		}
	}
	if strings.Contains(got, "FEN") {
		t.Fatalf("经典开局不应保留 FEN：\n%s", got)
	}
}

func TestRetrieve_NoSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>maintenance</html>"))
	}))
	defer srv.Close()

	c, err := fetch.New(fetch.Options{})
	require.NoError(t, err)
	if _, err := (Provider{BaseURL: srv.URL}).Retrieve(context.Background(), domain.Match{ID: "x"}, c); err == nil {
		t.Fatalf("没有对局数据时应失败")
	}
}
