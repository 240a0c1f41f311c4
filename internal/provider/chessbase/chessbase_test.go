package chessbase

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/John-Robertt/boardsdl/internal/domain"
	"github.com/John-Robertt/boardsdl/internal/fetch"
	"github.com/John-Robertt/boardsdl/internal/provider"
)

func TestIdentify(t *testing.T) {
	for in, want := range map[string]bool{
		"http://live.chessbase.com/watch/5th-EKA-IIFL-Investment-2019":                   true,
		"https://en.chessbase.com/post/some-report":                                      true,
		"https://liveserver.chessbase.com:6009/pgn/5th-eka-iifl-investment-2019/all.pgn": false,
		"https://example.org/post/some-report":                                           false,
	} {
		u, err := url.Parse(in)
		require.NoError(t, err)
		if _, ok := (Provider{}).Identify(u); ok != want {
			t.Fatalf("%s：期望 %v", in, want)
		}
	}
}

func TestReplays(t *testing.T) {
	inline, links, err := Replays(`<div class="cbreplay" data-url="/pgn/r1.pgn"></div>
<p class="cbreplay">
[Event "Inline"]
1. e4 *
</p>
<div class="other" data-url="/ignored.pgn"></div>`)
	require.NoError(t, err)
	require.Equal(t, "[Event \"Inline\"]\n1. e4 *", inline)
	require.Equal(t, []string{"/pgn/r1.pgn"}, links)
}

func TestRetrieve(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/replay/event/3":
			w.Write([]byte(`<div class="cbreplay" data-url="../../pgn/r3.pgn"></div><div class="cbreplay" data-url="/pgn/r3b.pgn"></div>`))
		case "/pgn/r3.pgn":
			w.Write([]byte("[Round \"3\"]\n\n1. e4 *"))
		case "/pgn/r3b.pgn":
			w.Write([]byte("[Round \"3\"]\n\n1. d4 *"))
		default:
			w.Write([]byte("<html>home</html>"))
		}
	}))
	defer srv.Close()

	c, err := fetch.New(fetch.Options{})
	require.NoError(t, err)
	p := Provider{BaseURL: srv.URL}
	ctx := context.Background()

	got, err := p.Retrieve(ctx, domain.Match{ID: "http://live.chessbase.com/replay/event/3"}, c)
	require.NoError(t, err)
	require.Equal(t, "[Round \"3\"]\n\n1. e4 *\n\n[Round \"3\"]\n\n1. d4 *\n\n", got)

	_, err = p.Retrieve(ctx, domain.Match{ID: "http://live.chessbase.com/"}, c)
	require.ErrorIs(t, err, provider.ErrParse)
}
