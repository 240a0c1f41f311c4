package chessarena

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
		"https://chessarena.com/v2/tournament_game/17fb7e7f-24e0-4b71-8d7a-8a0fc7b7fa6c":     "17fb7e7f-24e0-4b71-8d7a-8a0fc7b7fa6c",
		"https://www.CHESSARENA.com/v2/tournament_game/17FB7E7F-24e0-4b71-8d7a-8a0fc7b7fa6c": "17FB7E7F-24e0-4b71-8d7a-8a0fc7b7fa6c",
		"https://chessarena.com": "",
		"https://example.com/v2/tournament_game/17fb7e7f-24e0-4b71-8d7a-8a0fc7b7fa6c": "",
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
	const id = "17fb7e7f-24e0-4b71-8d7a-8a0fc7b7fa6c"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/online/gaming/"+id+"/pgn/" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("[Event \"Arena\"]\n\n1. e4 e5 *"))
	}))
	defer srv.Close()

	c, err := fetch.New(fetch.Options{})
	require.NoError(t, err)
	p := Provider{APIURL: srv.URL}
	got, err := p.Retrieve(context.Background(), domain.Match{ID: id}, c)
	require.NoError(t, err)
	require.Equal(t, "[Event \"Arena\"]\n\n1. e4 e5 *", got)

	var herr *fetch.HTTPStatusError
	_, err = p.Retrieve(context.Background(), domain.Match{ID: "4c98cdf3-cae4-4ceb-b117-723b2ef2572e"}, c)
	require.ErrorAs(t, err, &herr)
}
