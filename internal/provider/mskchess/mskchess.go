// Package mskchess 下载 MskChess.ru 的记录。该站点基于 lichess 的旧版本，
// 对局接口与 lichess 相同；谜题页面的格式不兼容，不支持下载。
package mskchess

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/John-Robertt/boardsdl/internal/domain"
	"github.com/John-Robertt/boardsdl/internal/fetch"
	"github.com/John-Robertt/boardsdl/internal/provider"
	"github.com/John-Robertt/boardsdl/internal/provider/lichess"
)

const defaultBase = "https://mskchess.ru"

var (
	broadcastRE  = regexp.MustCompile(`(?i)^https?://(\S+\.)?mskchess\.ru/broadcast/[a-z0-9\-]+/([a-z0-9]{8})[/?#]?`)
	practiceRE   = regexp.MustCompile(`(?i)^https?://(\S+\.)?mskchess\.ru/practice/[\w\-/]+/([a-z0-9]{8}/[a-z0-9]{8})(\.pgn)?/?([\S/]+)?$`)
	puzzleRE     = regexp.MustCompile(`(?i)^https?://(\S+\.)?mskchess\.ru/training/([a-z0-9]+/)?([a-z0-9]+)[/?#]?`)
	studyRE      = regexp.MustCompile(`(?i)^https?://(\S+\.)?mskchess\.ru/study/([a-z0-9]{8}(/[a-z0-9]{8})?)(\.pgn)?/?([\S/]+)?$`)
	swissRE      = regexp.MustCompile(`(?i)^https?://(\S+\.)?mskchess\.ru/swiss/([a-z0-9]{8})[/?#]?`)
	tournamentRE = regexp.MustCompile(`(?i)^https?://(\S+\.)?mskchess\.ru/tournament/([a-z0-9]{8})[/?#]?`)
	gameRE       = regexp.MustCompile(`(?i)^https?://(\S+\.)?mskchess\.ru/(game/export/|embed/)?([a-z0-9]{8})/?([\S/]+)?$`)
)

// paramEvent 区分赛事的赛制：swiss 或 arena。
const paramEvent = "event"

type Provider struct {
	// BaseURL 覆盖 https://mskchess.ru，主要用于测试。
	BaseURL string
}

func (Provider) Identity() domain.Identity {
	return domain.Identity{Name: "MskChess.ru", Family: domain.Chess, Strategy: domain.DownloadLink}
}

// Identify 按固定顺序匹配；对局的正则最宽松，必须最后尝试。
func (Provider) Identify(u *url.URL) (domain.Match, bool) {
	s := u.String()
	match := func(t domain.URLType, id string, params map[string]string) (domain.Match, bool) {
		return domain.Match{ID: id, Type: t, URL: s, Params: params}, true
	}
	if m := broadcastRE.FindStringSubmatch(s); m != nil {
		return match(domain.TypeStudy, m[2], nil)
	}
	if m := practiceRE.FindStringSubmatch(s); m != nil {
		return match(domain.TypeStudy, m[2], nil)
	}
	if m := puzzleRE.FindStringSubmatch(s); m != nil {
		return match(domain.TypePuzzle, m[3], nil)
	}
	if m := studyRE.FindStringSubmatch(s); m != nil {
		return match(domain.TypeStudy, m[2], nil)
	}
	if m := swissRE.FindStringSubmatch(s); m != nil {
		return match(domain.TypeEvent, m[2], map[string]string{paramEvent: "swiss"})
	}
	if m := tournamentRE.FindStringSubmatch(s); m != nil {
		return match(domain.TypeEvent, m[2], map[string]string{paramEvent: "arena"})
	}
	if m := gameRE.FindStringSubmatch(s); m != nil {
		return match(domain.TypeGame, m[3], nil)
	}
	return domain.Match{}, false
}

func (p Provider) Retrieve(ctx context.Context, m domain.Match, c *fetch.Client) (string, error) {
	base := defaultBase
	if b := strings.TrimSpace(p.BaseURL); b != "" {
		base = strings.TrimRight(b, "/")
	}
	switch m.Type {
	case domain.TypeStudy:
		return c.GetUA(ctx, base+"/study/"+m.ID+".pgn")
	case domain.TypeEvent:
		if m.Param(paramEvent, "") == "swiss" {
			return c.Get(ctx, base+"/api/swiss/"+m.ID+"/games")
		}
		return c.GetUA(ctx, base+"/api/tournament/"+m.ID+"/games")
	case domain.TypeGame:
		return lichess.Game(ctx, c, base, m.ID)
	case domain.TypePuzzle:
		return "", provider.Parsef("站点的谜题格式不受支持")
	default:
		return "", provider.Parsef("未知的记录类型 %q", m.Type)
	}
}

func (Provider) TestLinks() []domain.TestLink {
	return []domain.TestLink{
		{URL: "https://mskchess.ru/jvcVna2g?arg", Expect: true},
		{URL: "https://MSKCHESS.ru/jvcVna2g/black#tag", Expect: true},
		{URL: "https://mskchess.ru/training/61185", Expect: false},
		{URL: "https://mskchess.ru/tournament/Hv8CH43E", Expect: true},
	}
}
