// Package dragongo 下载 DragonGoServer.net 的 SGF。站点上任意带 gid 参数的页面都指向同一对局。
package dragongo

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/John-Robertt/boardsdl/internal/domain"
	"github.com/John-Robertt/boardsdl/internal/fetch"
	"github.com/John-Robertt/boardsdl/internal/provider"
)

const defaultBase = "https://www.dragongoserver.net"

type Provider struct {
	// BaseURL 覆盖 https://www.dragongoserver.net，主要用于测试。
	BaseURL string
}

func (Provider) Identity() domain.Identity {
	return domain.Identity{Name: "DragonGoServer.net", Family: domain.Go, Strategy: domain.DownloadLink}
}

func (Provider) Identify(u *url.URL) (domain.Match, bool) {
	if !provider.HostIs(u, "dragongoserver.net") {
		return domain.Match{}, false
	}
	gid := u.Query().Get("gid")
	if n, err := strconv.ParseUint(gid, 10, 64); err != nil || n == 0 {
		return domain.Match{}, false
	}
	return domain.Match{ID: gid, Type: domain.TypeGame, URL: u.String()}, true
}

func (p Provider) Retrieve(ctx context.Context, m domain.Match, c *fetch.Client) (string, error) {
	base := defaultBase
	if b := strings.TrimSpace(p.BaseURL); b != "" {
		base = strings.TrimRight(b, "/")
	}
	return c.Get(ctx, base+"/sgf.php?gid="+m.ID)
}

func (Provider) TestLinks() []domain.TestLink {
	return []domain.TestLink{
		{URL: "http://www.dragongoserver.net/game.php?gid=1347414#tag", Expect: true},
		{URL: "https://www.dragongoserver.net/sgf.php?gid=1347414&arg", Expect: true},
		{URL: "http://www.DRAGONGOSERVER.net/gameinfo.php?gid=1347414", Expect: true},
		{URL: "https://www.dragongoserver.NET/manage_sgf.php?gid=1347414", Expect: true},
		{URL: "https://www.dragongoserver.net/fakepage.php?gid=1347414#tag", Expect: true},
		{URL: "https://www.dragongoserver.net/game.php?gid=999999999", Expect: false},
		{URL: "https://www.dragongoserver.net/game.php?gid=hello", Expect: false},
		{URL: "https://www.dragongoserver.net", Expect: false},
	}
}
