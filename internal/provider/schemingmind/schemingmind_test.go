package schemingmind

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/John-Robertt/boardsdl/internal/domain"
	"github.com/John-Robertt/boardsdl/internal/fetch"
)

func TestIdentify(t *testing.T) {
	for in, want := range map[string]string{
		"https://www.schemingmind.com/home/game.aspx?game_id=457237":     "457237",
		"https://SCHEMINGMIND.com/invalid-path/game.aspx?game_id=715718": "715718",
		"https://www.schemingmind.com/game.aspx?game_id=0":               "",
		"https://www.schemingmind.com/game.aspx?id=35343":                "",
		"https://www.schemingmind.com/player.aspx?game_id=35343":         "",
		"https://www.schemingmind.com":                                   "",
	} {
		u, err := url.Parse(in)
		require.NoError(t, err)
		m, ok := Provider{}.Identify(u)
		if ok != (want != "") || m.ID != want {
			t.Fatalf("%s：期望 %q，实际 %+v", in, want, m)
		}
	}
}

func TestRetrieve(t *testing.T) {
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte("[Event \"Alice chess\"]\n[Variant \"Alice\"]\n\n1. e4 *"))
	}))
	defer srv.Close()

	c, err := fetch.New(fetch.Options{})
	require.NoError(t, err)
	p := Provider{BaseURL: srv.URL}
	got, err := p.Retrieve(context.Background(), domain.Match{ID: "457237"}, c)
	require.NoError(t, err)
	require.Contains(t, got, `[Variant "Alice"]`)
	if gotQuery.Get("game_id") != "457237" || gotQuery.Get("view") != "3" {
		t.Fatalf("查询参数不对：%v", gotQuery)
	}
}
