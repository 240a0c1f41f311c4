package chessking

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
	cases := []struct {
		in, id, kind string
	}{
		{"https://play.chessking.COM/games/4318271", "4318271", "g"},
		{"https://CHESSKING.com/games/ff/9859108", "9859108", "f"},
		{"https://chessking.com/games/ff/9859108?x=1", "9859108", "f"},
		{"https://play.chessking.com/games/1234567890", "", ""},
		{"https://play.chessking.com/games/0", "", ""},
		{"https://play.chessking.com", "", ""},
	}
	for _, tc := range cases {
		u, err := url.Parse(tc.in)
		require.NoError(t, err)
		m, ok := Provider{}.Identify(u)
		if ok != (tc.id != "") || m.ID != tc.id || (ok && m.Param(paramKind, "") != tc.kind) {
			t.Fatalf("%s：期望 %q/%q，实际 %+v", tc.in, tc.id, tc.kind, m)
		}
	}
}

func TestPGNPath(t *testing.T) {
	require.Equal(t, "/pgn/g/004/318/g004318271.pgn", pgnPath("g", "4318271"))
	require.Equal(t, "/pgn/f/009/859/f009859108.pgn", pgnPath("f", "9859108"))
	require.Equal(t, "/pgn/g/123/456/g123456789.pgn", pgnPath("g", "123456789"))
}

func TestRetrieve(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pgn/f/009/859/f009859108.pgn" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write([]byte("[Event \"ff\"]\n\n1. d4 *"))
	}))
	defer srv.Close()

	c, err := fetch.New(fetch.Options{})
	require.NoError(t, err)
	p := Provider{BaseURL: srv.URL}
	got, err := p.Retrieve(context.Background(), domain.Match{ID: "9859108", Params: map[string]string{paramKind: "f"}}, c)
	require.NoError(t, err)
	require.Equal(t, "[Event \"ff\"]\n\n1. d4 *", got)

	if _, err := p.Retrieve(context.Background(), domain.Match{ID: "9859108"}, c); err == nil {
		t.Fatalf("错误的对局库应返回错误")
	}
}
