package dragongo

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
		"http://www.dragongoserver.net/game.php?gid=1347414#tag":    "1347414",
		"https://www.dragongoserver.net/sgf.php?gid=1347414&arg":    "1347414",
		"https://www.dragongoserver.NET/manage_sgf.php?gid=1347414": "1347414",
		"https://dragongoserver.net/game.php?gid=0":                 "",
		"https://www.dragongoserver.net/game.php?gid=hello":         "",
		"https://www.dragongoserver.net":                            "",
		"https://example.org/game.php?gid=1347414":                  "",
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
		if r.URL.Path != "/sgf.php" || r.URL.Query().Get("gid") != "7" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/x-go-sgf")
		w.Write([]byte("(;GM[1]SZ[9];B[ee])"))
	}))
	defer srv.Close()

	c, err := fetch.New(fetch.Options{})
	require.NoError(t, err)
	p := Provider{BaseURL: srv.URL}
	got, err := p.Retrieve(context.Background(), domain.Match{ID: "7"}, c)
	require.NoError(t, err)
	require.Equal(t, "(;GM[1]SZ[9];B[ee])", got)

	if _, err := p.Retrieve(context.Background(), domain.Match{ID: "8"}, c); err == nil {
		t.Fatalf("404 应返回错误")
	}
}
