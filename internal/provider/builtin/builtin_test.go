package builtin

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/John-Robertt/boardsdl/internal/domain"
	"github.com/John-Robertt/boardsdl/internal/provider"
	"github.com/John-Robertt/boardsdl/internal/shorthand"
)

func firstClaimant(t *testing.T, reg provider.Registry, raw string) (provider.Provider, domain.Match) {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	for _, p := range reg.All() {
		if m, ok := p.Identify(u); ok {
			return p, m
		}
	}
	t.Fatalf("没有 provider 认领 %s", raw)
	return nil, domain.Match{}
}

func TestRegistry_UniqueNamesAndGenericLast(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)
	all := reg.All()
	require.Equal(t, "Generic for chess", all[len(all)-1].Identity().Name)
	for _, p := range all {
		links := p.TestLinks()
		if len(links) == 0 {
			t.Fatalf("%s 缺少测试链接", p.Identity().Name)
		}
	}
}

// 每个 provider 期望成功的测试链接都必须由它自己最先认领，而不是被更靠前的站点或通用下载抢走。
func TestRegistry_OwnLinksClaimedFirst(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)
	for _, p := range reg.All() {
		for _, l := range p.TestLinks() {
			if !l.Expect {
				continue
			}
			got, _ := firstClaimant(t, reg, l.URL)
			if got.Identity().Name != p.Identity().Name {
				t.Fatalf("%s 被 %s 认领，期望 %s", l.URL, got.Identity().Name, p.Identity().Name)
			}
		}
	}
}

func TestRegistry_Priority(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)

	for raw, want := range map[string]string{
		shorthand.Expand("AbCdEfGh"):                                  "Lichess.org",
		"https://www.chess.com/events/2018-catalan-chess-team-league": "ChessBomb.com",
		"https://www.chess.com/game/live/3638784952":                  "Chess.com",
		"https://www.playok.com/p/?g=gm148862421":                     "PlayOK.com (gomoku)",
		"https://example.org/games/archive.pgn":                       "Generic for chess",
		"https://liveserver.chessbase.com:6009/pgn/round/all.pgn":     "Generic for chess",
		"https://live.chessbase.com/watch/some-event":                 "ChessBase.com",
		"https://mskchess.ru/jvcVna2g":                                "MskChess.ru",
		"https://lichess.org/jvcVna2g":                                "Lichess.org",
	} {
		p, _ := firstClaimant(t, reg, raw)
		if p.Identity().Name != want {
			t.Fatalf("%s：期望 %s，实际 %s", raw, want, p.Identity().Name)
		}
	}
}
