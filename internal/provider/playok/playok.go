// Package playok 下载 PlayOK.com 的对局文本。同一站点按棋种拆成多个 provider。
package playok

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/John-Robertt/boardsdl/internal/domain"
	"github.com/John-Robertt/boardsdl/internal/fetch"
	"github.com/John-Robertt/boardsdl/internal/provider"
)

const (
	defaultBase = "https://www.playok.com"
	// minLength 以下的响应是站点的“对局不存在”占位文本。
	minLength = 16
)

// Game 描述一种棋：g 参数前缀与输出格式。
type Game struct {
	Prefix string
	Label  string
	Family domain.Family
	Raw    bool
}

var (
	Chess      = Game{Prefix: "ch", Label: "chess", Family: domain.Chess}
	Go         = Game{Prefix: "go", Label: "go", Family: domain.Go}
	Gomoku     = Game{Prefix: "gm", Label: "gomoku", Family: domain.Go, Raw: true}
	Draughts8  = Game{Prefix: "ck", Label: "draughts 8x8", Family: domain.Draughts}
	Draughts10 = Game{Prefix: "cp", Label: "draughts 10x10", Family: domain.Draughts}
	Mill       = Game{Prefix: "ml", Label: "mill", Family: domain.Mill}
)

// Games 是全部棋种，按注册顺序排列。
var Games = []Game{Chess, Go, Gomoku, Draughts8, Draughts10, Mill}

type Provider struct {
	Game Game
	// BaseURL 覆盖 https://www.playok.com，主要用于测试。
	BaseURL string
}

func (p Provider) Identity() domain.Identity {
	return domain.Identity{
		Name:      "PlayOK.com (" + p.Game.Label + ")",
		Family:    p.Game.Family,
		Strategy:  domain.DownloadLink,
		RawFormat: p.Game.Raw,
	}
}

func (p Provider) Identify(u *url.URL) (domain.Match, bool) {
	if !provider.HostIs(u, "playok.com") {
		return domain.Match{}, false
	}
	g := u.Query().Get("g")
	if !strings.HasPrefix(g, p.Game.Prefix) {
		return domain.Match{}, false
	}
	id := strings.Replace(g[len(p.Game.Prefix):], ".txt", "", 1)
	if n, err := strconv.ParseUint(id, 10, 64); err != nil || n == 0 {
		return domain.Match{}, false
	}
	return domain.Match{ID: id, Type: domain.TypeGame, URL: u.String()}, true
}

func (p Provider) base() string {
	if b := strings.TrimSpace(p.BaseURL); b != "" {
		return strings.TrimRight(b, "/")
	}
	return defaultBase
}

func (p Provider) Retrieve(ctx context.Context, m domain.Match, c *fetch.Client) (string, error) {
	text, err := c.Get(ctx, p.base()+"/p/?g="+p.Game.Prefix+m.ID+".txt")
	if err != nil {
		return "", err
	}
	if len(text) <= minLength {
		return "", provider.Parsef("对局 %s%s 不存在", p.Game.Prefix, m.ID)
	}
	return text, nil
}

func (p Provider) TestLinks() []domain.TestLink {
	switch p.Game.Prefix {
	case Chess.Prefix:
		return []domain.TestLink{
			{URL: "http://www.playok.com/p/?g=ch532424172", Expect: true},
			{URL: "https://PLAYOK.com/p/?g=ch532424172.txt", Expect: true},
			{URL: "http://www.playok.com/p/?g=ch484680868", Expect: false},
			{URL: "https://PLAYOK.com/p/?g=ch999999999#tag", Expect: false},
			{URL: "http://www.playok.com/p/?g=go15733322#165", Expect: false},
			{URL: "http://www.playok.com", Expect: false},
		}
	case Go.Prefix:
		return []domain.TestLink{
			{URL: "http://www.playok.com/p/?g=go18495831#17", Expect: true},
			{URL: "https://PLAYOK.com/p/?g=go18495831.txt", Expect: true},
			{URL: "https://PLAYOK.com/p/?g=go999999999#tag", Expect: false},
			{URL: "http://www.playok.com/p/?g=ch484680868", Expect: false},
			{URL: "http://www.playok.com", Expect: false},
		}
	case Gomoku.Prefix:
		return []domain.TestLink{
			{URL: "https://www.playok.com/p/?g=gm148862421#38", Expect: true},
			{URL: "https://PLAYOK.com/p/?g=gm148862421.txt", Expect: true},
			{URL: "https://PLAYOK.com/p/?g=gm999999999#tag", Expect: false},
			{URL: "http://www.playok.com/p/?g=ch484680868", Expect: false},
			{URL: "http://www.playok.com", Expect: false},
		}
	case Draughts8.Prefix:
		return []domain.TestLink{
			{URL: "https://www.playok.com/p/?g=ck299815754", Expect: true},
			{URL: "https://www.playok.com/p/?g=ck299814720.txt", Expect: true},
			{URL: "https://PLAYOK.com/p/?g=ck999999999#tag", Expect: false},
			{URL: "http://www.playok.com/p/?g=ch484680868", Expect: false},
			{URL: "http://www.playok.com", Expect: false},
		}
	case Draughts10.Prefix:
		return []domain.TestLink{
			{URL: "https://www.playok.com/p/?g=cp36483883#127", Expect: true},
			{URL: "https://www.playok.com/p/?g=cp36483883.txt", Expect: true},
			{URL: "https://PLAYOK.com/p/?g=cp999999999#tag", Expect: false},
			{URL: "http://www.playok.com/p/?g=ch484680868", Expect: false},
			{URL: "http://www.playok.com", Expect: false},
		}
	case Mill.Prefix:
		return []domain.TestLink{
			{URL: "https://www.playok.com/p/?g=ml10296405", Expect: true},
			{URL: "https://www.playok.com/p/?g=ml10296405.txt", Expect: true},
			{URL: "https://PLAYOK.com/p/?g=ml999999999#tag", Expect: false},
			{URL: "http://www.playok.com/p/?g=ch484680868", Expect: false},
			{URL: "http://www.playok.com", Expect: false},
		}
	}
	return nil
}
