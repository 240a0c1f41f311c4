package gameknot

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/John-Robertt/boardsdl/internal/domain"
	"github.com/John-Robertt/boardsdl/internal/fetch"
	"github.com/John-Robertt/boardsdl/internal/notation"
)

func TestIdentify(t *testing.T) {
	cases := []struct {
		in, id string
		typ    domain.URLType
	}{
		{"https://gameknot.com/analyze-board.pl?bd=22792465#tag", "22792465", domain.TypeGame},
		{"https://GAMEKNOT.com/Analyze-Board.pl?bd=22792465", "22792465", domain.TypeGame},
		{"https://gameknot.com/chess-puzzle.pl?pz=224541&next=2", "224541", domain.TypePuzzle},
		{"https://GAMEKNOT.com/chess.pl?bd=22792465&p=1", "", ""},
		{"https://gameknot.com/analyze-board.pl?bd=bepofr#tag", "", ""},
		{"https://gameknot.com/chess-puzzle.pl?pz=0#tag", "", ""},
		{"https://gameknot.com", "", ""},
	}
	for _, tc := range cases {
		u, err := url.Parse(tc.in)
		require.NoError(t, err)
		m, ok := Provider{}.Identify(u)
		if ok != (tc.id != "") || m.ID != tc.id || m.Type != tc.typ {
			t.Fatalf("%s：实际 %+v", tc.in, m)
		}
	}
}

func TestSolution(t *testing.T) {
	// 1 号项是支线，从 0 号开始沿 next 走主线，遇到 4 个字段的项结束。
	got := solution("0,w,-1,1,Qh5,d1h5,x,2|1,w,-1,0,Qf3,d1f3,x,9|2,b,0,1,Nc6,b8c6,x,3|3,w,2,0,Qxf7#,h5f7,x,4|4,b,3,0")
	require.Equal(t, "{Solution: Qh5 Nc6 Qxf7#}", got)
}

const gamePage = `<script>var anbd_movelist = 'e2e4-e7e5-g1f3-';
var anbd_result = 3;
var anbd_player_w = 'alice';
var anbd_player_b = 'bob';
var anbd_rating_w = 1500;
var anbd_rating_b = 0;
var anbd_title = 'Friendly%20game';
var anbd_timestamp = '2021.03.04';
var export_web_input_result_text = 'White resigned';</script>`

const puzzlePage = `<script>var puzzle_id = 224260;
var puzzle_fen = '6k1/5ppp/8/8/8/8/5PPP/3R2K1 w - - 0 1';
load_solution('0,w,-1,1,Rd8#,d1d8,x,1|1,b,0,0');</script>`

func TestRetrieve(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/analyze-board.pl":
			if r.URL.Query().Get("bd") == "2" {
				w.Write([]byte(`<script>var anbd_movelist = 'e2e5-';</script>`))
				return
			}
			w.Write([]byte(gamePage))
		case "/chess-puzzle.pl":
			w.Write([]byte(puzzlePage))
		}
	}))
	defer srv.Close()

	c, err := fetch.New(fetch.Options{})
	require.NoError(t, err)
	p := Provider{BaseURL: srv.URL}
	ctx := context.Background()

	got, err := p.Retrieve(ctx, domain.Match{ID: "22792465", Type: domain.TypeGame}, c)
	require.NoError(t, err)
	want := `[Event "Friendly game"]
[Site "?"]
[Date "2021.03.04"]
[Round "?"]
[White "alice"]
[Black "bob"]
[Result "0-1"]
[WhiteElo "1500"]

e4 e5 Nf3 {White resigned} 0-1`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("对局 PGN 不符 (-want +got):\n%s", diff)
	}

	got, err = p.Retrieve(ctx, domain.Match{ID: "224260", Type: domain.TypePuzzle}, c)
	require.NoError(t, err)
	require.Contains(t, got, `[FEN "6k1/5ppp/8/8/8/8/5PPP/3R2K1 w - - 0 1"]`)
	require.Contains(t, got, "{https://gameknot.com/chess-puzzle.pl?pz=224260}\n{Solution: Rd8#} *")

	_, err = p.Retrieve(ctx, domain.Match{ID: "2", Type: domain.TypeGame}, c)
	var ill *notation.IllegalMoveError
	require.ErrorAs(t, err, &ill)
}
