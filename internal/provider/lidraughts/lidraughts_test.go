package lidraughts

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
	cases := []struct {
		in  string
		ok  bool
		typ domain.URLType
		id  string
	}{
		{"https://lidraughts.org/broadcast/the-big-christmas-show-round-4/JnWAfmOk", true, domain.TypeStudy, "JnWAfmOk"},
		{"https://LIDRAUGHTS.org/study/3VwAd32E#tag", true, domain.TypeStudy, "3VwAd32E"},
		{"https://lidraughts.org/study/F88mhTPe/A9uIwROn?arg", true, domain.TypeStudy, "F88mhTPe/A9uIwROn"},
		{"https://lidraughts.ORG/RicO2oy8/black", true, domain.TypeGame, "RicO2oy8"},
		{"https://lidraughts.org/training/3620", true, domain.TypePuzzle, "3620"},
		{"https://lidraughts.org/training/daily", true, domain.TypePuzzle, "daily"},
		{"https://lidraughts.org/about", false, "", ""},
		{"https://lidraughts.org", false, "", ""},
		{"https://lichess.org/RicO2oy8", false, "", ""},
	}
	for _, c := range cases {
		u, err := url.Parse(c.in)
		require.NoError(t, err)
		m, ok := Provider{}.Identify(u)
		if ok != c.ok {
			t.Fatalf("%s：期望 ok=%v，实际 %v", c.in, c.ok, ok)
		}
		if ok && (m.Type != c.typ || m.ID != c.id) {
			t.Fatalf("%s：认领结果不符：%+v", c.in, m)
		}
	}
}

func TestRetrieve(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/game/export/RicO2oy8", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[Event \"Casual\"]\n\n1. 32-28 *"))
	})
	mux.HandleFunc("/study/3VwAd32E.pdn", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[Event \"Study\"]\n\n*"))
	})
	mux.HandleFunc("/training/3620", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<script>lidraughts.puzzle = {"data":{
		  "puzzle":{"id":3620,"rating":1500,"attempts":4,"vote":1,"gameId":"RicO2oy8","initialPly":20,
		            "branch":{"san":"32x21","children":[]}},
		  "history":{"fen":"W:W31,32:B1,2","san":"28-23"}}};</script>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c, err := fetch.New(fetch.Options{})
	require.NoError(t, err)
	p := Provider{BaseURL: srv.URL}
	ctx := context.Background()

	got, err := p.Retrieve(ctx, domain.Match{ID: "RicO2oy8", Type: domain.TypeGame}, c)
	require.NoError(t, err)
	require.Equal(t, "[Event \"Casual\"]\n\n1. 32-28 *", got)

	got, err = p.Retrieve(ctx, domain.Match{ID: "3VwAd32E", Type: domain.TypeStudy}, c)
	require.NoError(t, err)
	require.Equal(t, "[Event \"Study\"]\n\n*", got)

	got, err = p.Retrieve(ctx, domain.Match{ID: "3620", Type: domain.TypePuzzle}, c)
	require.NoError(t, err)
	for _, want := range []string{
		`[Event "Puzzle 3620, rated 1500"]`,
		`[FEN "W:W31,32:B1,2"]`,
		"{https://lidraughts.org/RicO2oy8#20}",
		"28-23 {Solution: 32x21 } *",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("谜题结果缺少 %q：\n%s", want, got)
		}
	}
}
