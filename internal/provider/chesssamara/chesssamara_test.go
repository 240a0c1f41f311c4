package chesssamara

import (
	"context"
	"errors"
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
		"https://chess-SAMARA.ru/68373335-igra-Firudin1888-vs-Pizyk": "68373335",
		"https://www.chess-samara.ru/12-x":                           "12",
		"https://chess-samara.ru/view/pgn.html?gameid=68373335":      "",
		"https://chess-samara.ru/0-nothing":                          "",
		"https://chess-samara.ru":                                    "",
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
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/view/pgn.html" && r.URL.Query().Get("gameid") == "68373335" {
			w.Write([]byte("[Event \"Samara\"]\n\n1. e4 *"))
		}
	}))
	defer srv.Close()

	c, err := fetch.New(fetch.Options{})
	require.NoError(t, err)
	p := Provider{BaseURL: srv.URL}
	got, err := p.Retrieve(context.Background(), domain.Match{ID: "68373335"}, c)
	require.NoError(t, err)
	require.Equal(t, "[Event \"Samara\"]\n\n1. e4 *", got)

	// 站点对不存在的对局返回空页面。
	_, err = p.Retrieve(context.Background(), domain.Match{ID: "1"}, c)
	if !errors.Is(err, fetch.ErrEmpty) {
		t.Fatalf("期望 ErrEmpty，实际 %v", err)
	}
}
