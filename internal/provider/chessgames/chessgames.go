// Package chessgames 下载 chessgames.com 的对局与棋谱集。
package chessgames

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/John-Robertt/boardsdl/internal/domain"
	"github.com/John-Robertt/boardsdl/internal/fetch"
	"github.com/John-Robertt/boardsdl/internal/provider"
)

const defaultBase = "http://www.chessgames.com"

// paramComputer 标记对局页带有 comp=1（附带引擎分析）。
const paramComputer = "comp"

// gameLinkRE 匹配棋谱集页面中的对局链接。
var gameLinkRE = regexp.MustCompile(`/perl/chessgame\?gid=(\d{4,})`)

type Provider struct {
	// BaseURL 覆盖 http://www.chessgames.com，主要用于测试。
	BaseURL string
}

func (Provider) Identity() domain.Identity {
	return domain.Identity{Name: "ChessGames.com", Family: domain.Chess, Strategy: domain.DownloadLink}
}

func (Provider) Identify(u *url.URL) (domain.Match, bool) {
	if !provider.HostIs(u, "chessgames.com") {
		return domain.Match{}, false
	}
	q := u.Query()
	if strings.Contains(u.Path, "chesscollection") {
		if id := q.Get("cid"); provider.NumericID(id) {
			return domain.Match{ID: id, Type: domain.TypeEvent, URL: u.String()}, true
		}
		return domain.Match{}, false
	}
	id := q.Get("gid")
	if !provider.NumericID(id) {
		return domain.Match{}, false
	}
	m := domain.Match{ID: id, Type: domain.TypeGame, URL: u.String()}
	if q.Get("comp") == "1" {
		m.Params = map[string]string{paramComputer: "1"}
	}
	return m, true
}

func (p Provider) base() string {
	if b := strings.TrimSpace(p.BaseURL); b != "" {
		return strings.TrimRight(b, "/")
	}
	return defaultBase
}

func (p Provider) Retrieve(ctx context.Context, m domain.Match, c *fetch.Client) (string, error) {
	if m.Type == domain.TypeEvent {
		return p.collection(ctx, m, c)
	}
	link := p.base() + "/pgn/chessdl.pgn?gid=" + m.ID
	if m.Param(paramComputer, "") == "1" {
		text, err := c.Get(ctx, link+"&comp=1")
		if err == nil && valid(text) {
			return text, nil
		}
	}
	text, err := c.Get(ctx, link)
	if err != nil {
		return "", err
	}
	if !valid(text) {
		return "", provider.Parsef("对局 %s 不存在", m.ID)
	}
	return text, nil
}

func valid(text string) bool {
	return strings.TrimSpace(text) != "" && !strings.Contains(text, "NO SUCH GAME")
}

// collection 从棋谱集页面收集对局编号，逐个下载 PGN。
func (p Provider) collection(ctx context.Context, m domain.Match, c *fetch.Client) (string, error) {
	page, err := c.GetUA(ctx, p.base()+"/perl/chesscollection?cid="+m.ID)
	if err != nil {
		return "", err
	}
	var links []string
	for _, g := range gameLinkRE.FindAllStringSubmatch(page, -1) {
		links = append(links, p.base()+"/pgn/chessdl.pgn?gid="+g[1])
	}
	links = fetch.ExpandLinks(links, p.base())
	if len(links) == 0 {
		return "", provider.Parsef("棋谱集 %s 中没有对局", m.ID)
	}
	return c.DownloadList(ctx, links, false)
}

func (Provider) TestLinks() []domain.TestLink {
	return []domain.TestLink{
		{URL: "http://www.chessgames.com/perl/chessgame?gid=1075462&comp=1", Expect: true},
		{URL: "http://www.chessgames.com/perl/chessgame?gid=1075463", Expect: true},
		{URL: "http://www.CHESSGAMES.com/perl/chessgame?gid=1075463&comp=1#test", Expect: true},
		{URL: "http://www.chessgames.com/perl/chessgame?gid=1234567890", Expect: false},
		{URL: "https://www.chessgames.com/perl/chesscollection?cid=1014492", Expect: true},
		{URL: "https://www.chessgames.com", Expect: false},
	}
}
