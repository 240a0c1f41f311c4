package goshrine

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
		"http://goshrine.com/g/f8a82242":      "f8a82242",
		"http://goshrine.com/g/f8a82242#tag":  "f8a82242",
		"https://GOSHRINE.com/g/f8a82242?arg": "f8a82242",
		"http://goshrine.com/g/f8a8224":       "",
		"http://goshrine.com":                 "",
		"http://example.org/g/f8a82242":       "",
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
		case "/g/f8a82242.sgf":
			w.Write([]byte("(;GM[1]SZ[19];B[pd])"))
		default:
			w.Write([]byte("Game not found!"))
		}
	}))
	defer srv.Close()

	c, err := fetch.New(fetch.Options{})
	require.NoError(t, err)
	p := Provider{BaseURL: srv.URL}
	got, err := p.Retrieve(context.Background(), domain.Match{ID: "f8a82242"}, c)
	require.NoError(t, err)
	require.Equal(t, "(;GM[1]SZ[19];B[pd])", got)

	_, err = p.Retrieve(context.Background(), domain.Match{ID: "aabbccdd"}, c)
	require.ErrorIs(t, err, provider.ErrParse)
}
