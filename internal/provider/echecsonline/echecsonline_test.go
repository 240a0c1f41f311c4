package echecsonline

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
		"https://www.echecs-online.eu/game/07af79f4/stats": "07af79f4",
		"https://www.ECHECS-ONLINE.eu/analyse/07af79f4#x":  "07af79f4",
		"https://www.echecs-online.eu/game/07af79":         "",
		"https://echecs-online.eu/game/07af79f4":           "",
		"http://www.echecs-online.eu":                      "",
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
		case "/analyse/07af79f4":
			w.Write([]byte(`<html><body><textarea id="pgnText" rows="4">[Event "Partie"]

1. d4 d5 *</textarea></body></html>`))
		default:
			w.Write([]byte(`<html><body><p>introuvable</p></body></html>`))
		}
	}))
	defer srv.Close()

	c, err := fetch.New(fetch.Options{})
	require.NoError(t, err)
	p := Provider{BaseURL: srv.URL}
	got, err := p.Retrieve(context.Background(), domain.Match{ID: "07af79f4"}, c)
	require.NoError(t, err)
	require.Equal(t, "[Event \"Partie\"]\n\n1. d4 d5 *", got)

	_, err = p.Retrieve(context.Background(), domain.Match{ID: "00000000"}, c)
	require.ErrorIs(t, err, provider.ErrParse)
}
