package lichess

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/John-Robertt/boardsdl/internal/domain"
	"github.com/John-Robertt/boardsdl/internal/fetch"
)

func mustURL(t *testing.T, s string) *url.URL {
	t.Helper()
	u, err := url.Parse(s)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	return u
}

func TestIdentify(t *testing.T) {
	cases := []struct {
		in  string
		ok  bool
		typ domain.URLType
		id  string
		tld string
	}{
		{"http://lichess.org/CA4bR2b8/black/analysis#12", true, domain.TypeGame, "CA4bR2b8", "org"},
		{"https://lichess.org/game/export/CA4bR2b8", true, domain.TypeGame, "CA4bR2b8", "org"},
		{"https://LICHESS.org/embed/CA4bR2b8/black?theme=brown", true, domain.TypeGame, "CA4bR2b8", "org"},
		{"http://lichess.dev/ABCD1234", true, domain.TypeGame, "ABCD1234", "dev"},
		{"https://hu.lichess.org/study/hr4H7sOB?page=1", true, domain.TypeStudy, "hr4H7sOB", "org"},
		{"https://lichess.org/study/hr4H7sOB/fvtzEXvi.pgn#32", true, domain.TypeStudy, "hr4H7sOB/fvtzEXvi", "org"},
		{"https://lichess.org/STUDY/hr4H7sOB.pgn", true, domain.TypeStudy, "hr4H7sOB", "org"},
		{"https://lichess.org/training/daily", true, domain.TypePuzzle, "daily", "org"},
		{"https://lichess.org/training/84969", true, domain.TypePuzzle, "84969", "org"},
		{"https://lichess.org/broadcast/2019-gct-zagreb-round-4/jQ1dbbX9", true, domain.TypeStudy, "jQ1dbbX9", "org"},
		{"https://lichess.ORG/practice/basic-tactics/the-pin/9ogFv8Ac/BRmScz9t#t", true, domain.TypeStudy, "9ogFv8Ac/BRmScz9t", "org"},
		{"http://fr.lichess.org/@/thibault", false, "", "", ""},
		{"http://lichess.org/blog", false, "", "", ""},
		{"https://lichess.org", false, "", "", ""},
		{"https://example.org/CA4bR2b8", false, "", "", ""},
	}
	for _, c := range cases {
		m, ok := Provider{}.Identify(mustURL(t, c.in))
		if ok != c.ok {
			t.Fatalf("%s：期望 ok=%v，实际 %v", c.in, c.ok, ok)
		}
		if !ok {
			continue
		}
		if m.Type != c.typ || m.ID != c.id || m.Param(paramTLD, "") != c.tld {
			t.Fatalf("%s：认领结果不符：%+v", c.in, m)
		}
	}
}

func TestTestLinks(t *testing.T) {
	var yes, no int
	for _, l := range (Provider{}).TestLinks() {
		if l.Expect {
			yes++
		} else {
			no++
		}
	}
	if yes == 0 || no == 0 {
		t.Fatalf("测试链接需要同时包含成功与失败样例")
	}
}

func newClient(t *testing.T, allowExtra bool) *fetch.Client {
	t.Helper()
	c, err := fetch.New(fetch.Options{AllowExtra: allowExtra})
	require.NoError(t, err)
	return c
}

const finishedAPI = `{"game":{"id":"CA4bR2b8","rated":true,"winner":"white"}}`

const ongoingAPI = `{
  "game": {"id":"AbCdEfGh","rated":false,"variant":{"name":"Standard"},
           "initialFen":"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"},
  "player": {"user":{"username":"alice"},"rating":1500},
  "opponent": {},
  "clock": {"initial":180,"increment":2},
  "url": {"round":"/AbCdEfGh/white"},
  "steps": [{"ply":0,"san":null},{"ply":1,"san":"e4"},{"ply":2,"san":"c5"}]
}`

func TestRetrieve_Game(t *testing.T) {
	var api string
	mux := http.NewServeMux()
	mux.HandleFunc("/import/master/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "application/vnd.lichess.v4+json" || r.Header.Get("X-Requested-With") != "XMLHttpRequest" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Write([]byte(api))
	})
	mux.HandleFunc("/game/export/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("literate") != "1" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Write([]byte("[Event \"Rated game\"]\n\n1. e4 1-0\n"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	p := Provider{BaseURL: srv.URL}
	ctx := context.Background()
	m := domain.Match{ID: "CA4bR2b8", Type: domain.TypeGame}

	api = finishedAPI
	got, err := p.Retrieve(ctx, m, newClient(t, false))
	require.NoError(t, err)
	require.Equal(t, "[Event \"Rated game\"]\n\n1. e4 1-0", got)

	api = ongoingAPI
	got, err = p.Retrieve(ctx, m, newClient(t, false))
	require.NoError(t, err)
	for _, want := range []string{
		`[White "alice"]`,
		`[Black "Anonymous"]`,
		`[WhiteElo "1500"]`,
		`[TimeControl "180+2"]`,
		"{" + srv.URL + "/AbCdEfGh/white}",
		"e4 c5 *",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("重建结果缺少 %q：\n%s", want, got)
		}
	}
	if strings.Contains(got, "BlackElo") {
		t.Fatalf("空等级分不应输出：\n%s", got)
	}

	api = strings.Replace(ongoingAPI, `"rated":false`, `"rated":true`, 1)
	if _, err := p.Retrieve(ctx, m, newClient(t, false)); err == nil {
		t.Fatalf("计分且未结束的对局应失败")
	}
	if _, err := p.Retrieve(ctx, m, newClient(t, true)); err != nil {
		t.Fatalf("allow_extra 时应返回重建结果：%v", err)
	}
}

func TestRetrieve_StudySendsUA(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/study/hr4H7sOB/fvtzEXvi.pgn" || r.Header.Get("User-Agent") == "" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("[Event \"Study\"]\n\n*"))
	}))
	defer srv.Close()

	got, err := Provider{BaseURL: srv.URL}.Retrieve(context.Background(),
		domain.Match{ID: "hr4H7sOB/fvtzEXvi", Type: domain.TypeStudy}, newClient(t, false))
	require.NoError(t, err)
	require.Equal(t, "[Event \"Study\"]\n\n*", got)
}

const puzzlePage = `<html><script>
lichess.puzzle = {"game":{"clock":"3+0","players":[
  {"color":"white","name":"alice (1850)"},{"color":"black","name":"bob"}],
  "treeParts":[{"ply":0,"fen":"r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3"},{"ply":1,"san":"Bc4"}]},
 "puzzle":{"id":84969,"rating":1600,"attempts":12,"vote":3,"gameId":"XyZ12345","initialPly":4,
  "branch":{"san":"Nd4","children":[{"san":"Nxe5","children":[]}]}}};
</script></html>`

func TestRetrieve_Puzzle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/training/84969" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(puzzlePage))
	}))
	defer srv.Close()

	m := domain.Match{ID: "84969", Type: domain.TypePuzzle, Params: map[string]string{paramTLD: "org"}}
	got, err := Provider{BaseURL: srv.URL}.Retrieve(context.Background(), m, newClient(t, false))
	require.NoError(t, err)
	for _, want := range []string{
		`[Event "Puzzle 84969, rated 1600"]`,
		`[Site "lichess.org"]`,
		`[White "alice"]`,
		`[Black "bob"]`,
		`[WhiteElo "1850"]`,
		`[X_TimeControl "3+0"]`,
		`[SetUp "1"]`,
		"{https://lichess.org/XyZ12345#4}",
		"Bc4 {Solution: Nd4 Nxe5 } *",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("谜题结果缺少 %q：\n%s", want, got)
		}
	}
}

func TestSplitRated(t *testing.T) {
	name, elo := splitRated("alice (1850)")
	if name != "alice" || elo != "1850" {
		t.Fatalf("拆分结果不符：%q %q", name, elo)
	}
	name, elo = splitRated("bob")
	if name != "bob" || elo != "" {
		t.Fatalf("无等级分时拆分结果不符：%q %q", name, elo)
	}
}
