package chesspastebin

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
	for in, want := range map[string]string{
		"https://www.chesspastebin.com/2018/12/29/anonymous-anonymous-by-george-2/": "/2018/12/29/anonymous-anonymous-by-george-2/",
		"https://www.CHESSPASTEBIN.com/?p=12":                                       "/?p=12",
		"https://www.chesspastebin.com":                                             "/",
		"https://blog.chesspastebin.com/2018/":                                      "",
		"https://example.org/2018/12/29/x/":                                         "",
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
		switch r.URL.Path {
		case "/with-header/":
			w.Write([]byte(`<div id="42_board"></div>
<div id="42">[Event "Casual"]
1. e4 e5 *</div>`))
		case "/no-header/":
			w.Write([]byte(`<div id="7_board"></div><div id="7">1. d4 d5 *</div>`))
		default:
			w.Write([]byte(`<div>nothing</div>`))
		}
	}))
	defer srv.Close()

	c, err := fetch.New(fetch.Options{})
	require.NoError(t, err)
	p := Provider{BaseURL: srv.URL}
	ctx := context.Background()

	got, err := p.Retrieve(ctx, domain.Match{ID: "/with-header/"}, c)
	require.NoError(t, err)
	require.Equal(t, "[Event \"Casual\"]\n1. e4 e5 *", got)

	got, err = p.Retrieve(ctx, domain.Match{ID: "/no-header/"}, c)
	require.NoError(t, err)
	require.Equal(t, "[Annotator \"ChessPastebin.com\"]\n1. d4 d5 *", got)

	_, err = p.Retrieve(ctx, domain.Match{ID: "/1515/09/13/marignan/"}, c)
	require.ErrorIs(t, err, provider.ErrParse)
}
