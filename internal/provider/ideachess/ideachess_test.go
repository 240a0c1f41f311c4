package ideachess

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/John-Robertt/boardsdl/internal/domain"
	"github.com/John-Robertt/boardsdl/internal/fetch"
	"github.com/John-Robertt/boardsdl/internal/provider"
)

func TestIdentify(t *testing.T) {
	cases := []struct{ in, id, kind string }{
		{"http://www.ideachess.com/chess_tactics_puzzles/checkmate_n/37431", "37431", "m"},
		{"http://it.ideachess.com/scacchi_tattica/scacco_matto_n/37431", "37431", "m"},
		{"http://fr.ideachess.com/echecs_tactiques/tactiques_n/32603", "32603", "t"},
		{"http://www.ideachess.com/chess_tactics_puzzles/openings_n/32603", "", ""},
		{"http://www.ideachess.com/chess_tactics_puzzles/tactics_n/0", "", ""},
		{"http://www.ideachess.com", "", ""},
	}
	for _, tc := range cases {
		u, err := url.Parse(tc.in)
		require.NoError(t, err)
		m, ok := Provider{}.Identify(u)
		if ok != (tc.id != "") || m.ID != tc.id || (ok && m.Param(paramKind, "") != tc.kind) {
			t.Fatalf("%s：实际 %+v", tc.in, m)
		}
	}
}

func TestRetrieve(t *testing.T) {
	fen := base64.StdEncoding.EncodeToString([]byte("6k1/5ppp/8/8/8/8/5PPP/3R2K1 w - - 0 1 "))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/com/ajax2" || r.Header.Get("X-Requested-With") == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		switch r.FormValue("message") {
		case `{"action":100,"data":{"problemNumber":37431,"kind":"m"}}`:
			w.Write([]byte(`{"action":200,"data":{"FEN":"` + fen + `","PGN":"1. Rd8#","requiredMoves":1,"extraInfo":"#12 Casual game|2001.01.01|Alice - Bob|1-0"}}`))
		default:
			w.Write([]byte(`{"action":500}`))
		}
	}))
	defer srv.Close()

	c, err := fetch.New(fetch.Options{})
	require.NoError(t, err)
	p := Provider{BaseURL: srv.URL}
	got, err := p.Retrieve(context.Background(), domain.Match{ID: "37431", Params: map[string]string{paramKind: "m"}}, c)
	require.NoError(t, err)
	want := `[Event "Casual game"]
[Site "1 moves to find"]
[Date "2001.01.01"]
[Round "?"]
[White "Alice"]
[Black "Bob"]
[Result "1-0"]
[FEN "6k1/5ppp/8/8/8/8/5PPP/3R2K1 w - - 0 1"]
[SetUp "1"]

{http://www.ideachess.com/chess_tactics_puzzles/checkmate_n/37431}
1. Rd8# 1-0`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("PGN 不符 (-want +got):\n%s", diff)
	}

	_, err = p.Retrieve(context.Background(), domain.Match{ID: "37431", Params: map[string]string{paramKind: "t"}}, c)
	require.ErrorIs(t, err, provider.ErrParse)
}
