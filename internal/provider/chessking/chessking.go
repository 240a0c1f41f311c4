// Package chessking 下载 ChessKing.com 的 PGN 文件。
package chessking

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/John-Robertt/boardsdl/internal/domain"
	"github.com/John-Robertt/boardsdl/internal/fetch"
	"github.com/John-Robertt/boardsdl/internal/provider"
)

const defaultBase = "https://c1.chessking.com"

var urlRE = regexp.MustCompile(`(?i)^https?://(\S+\.)?chessking\.com/games/(ff/)?([0-9]+)[/?#]?`)

// paramKind 区分对局库：g 为普通对局，f 为 ff/ 下的对局。
const paramKind = "kind"

type Provider struct {
	// BaseURL 覆盖 https://c1.chessking.com，主要用于测试。
	BaseURL string
}

func (Provider) Identity() domain.Identity {
	return domain.Identity{Name: "ChessKing.com", Family: domain.Chess, Strategy: domain.DownloadLink}
}

func (Provider) Identify(u *url.URL) (domain.Match, bool) {
	s := u.String()
	m := urlRE.FindStringSubmatch(s)
	if m == nil || len(m[3]) > 9 || !provider.NumericID(m[3]) {
		return domain.Match{}, false
	}
	kind := "g"
	if strings.EqualFold(m[2], "ff/") {
		kind = "f"
	}
	return domain.Match{ID: m[3], Type: domain.TypeGame, URL: s, Params: map[string]string{paramKind: kind}}, true
}

func (p Provider) Retrieve(ctx context.Context, m domain.Match, c *fetch.Client) (string, error) {
	base := defaultBase
	if b := strings.TrimSpace(p.BaseURL); b != "" {
		base = strings.TrimRight(b, "/")
	}
	return c.Get(ctx, base+pgnPath(m.Param(paramKind, "g"), m.ID))
}

// pgnPath 把编号补零到 9 位，按 3/3 位分目录：/pgn/<k>/<000>/<000>/<k><000000000>.pgn。
func pgnPath(kind, id string) string {
	if len(id) < 9 {
		id = strings.Repeat("0", 9-len(id)) + id
	}
	return fmt.Sprintf("/pgn/%s/%s/%s/%s%s.pgn", kind, id[:3], id[3:6], kind, id)
}

func (Provider) TestLinks() []domain.TestLink {
	return []domain.TestLink{
		{URL: "https://play.chessking.COM/games/4318271", Expect: true},
		{URL: "https://CHESSKING.com/games/ff/9859108", Expect: true},
		{URL: "https://play.chessking.com/games/1234567890", Expect: false},
		{URL: "https://play.chessking.com", Expect: false},
	}
}
