// Package gokgs 直接下载 files.gokgs.com 归档的 SGF 文件。
package gokgs

import (
	"context"
	"net/url"
	"regexp"

	"github.com/John-Robertt/boardsdl/internal/domain"
	"github.com/John-Robertt/boardsdl/internal/fetch"
)

var urlRE = regexp.MustCompile(`(?i)^(https?://files\.gokgs\.com/games/[0-9]+/[0-9]+/[0-9]+/[^/]+\.sgf)[/?#]?`)

type Provider struct{}

func (Provider) Identity() domain.Identity {
	return domain.Identity{Name: "GoKGS.com", Family: domain.Go, Strategy: domain.DownloadLink}
}

// Identify 以文件地址本身作为 ID。
func (Provider) Identify(u *url.URL) (domain.Match, bool) {
	s := u.String()
	if m := urlRE.FindStringSubmatch(s); m != nil {
		return domain.Match{ID: m[1], Type: domain.TypeGame, URL: s}, true
	}
	return domain.Match{}, false
}

func (Provider) Retrieve(ctx context.Context, m domain.Match, c *fetch.Client) (string, error) {
	return c.Get(ctx, m.ID)
}

func (Provider) TestLinks() []domain.TestLink {
	return []domain.TestLink{
		{URL: "http://files.gokgs.com/games/2020/3/23/patrickb-yasusaka.sgf", Expect: true},
		{URL: "http://files.gokgs.com/games/2019/10/20/mutaku-hellsflame.sgf", Expect: true},
		{URL: "http://files.gokgs.com/games/1970/01/01/incorrect.sgf", Expect: false},
		{URL: "http://www.gokgs.com", Expect: false},
	}
}
