// Package ficsgames 下载 FicsGames.org 的对局。
package ficsgames

import (
	"context"
	"net/url"
	"strings"

	"github.com/John-Robertt/boardsdl/internal/domain"
	"github.com/John-Robertt/boardsdl/internal/fetch"
	"github.com/John-Robertt/boardsdl/internal/provider"
)

const defaultBase = "http://ficsgames.org"

type Provider struct {
	// BaseURL 覆盖 http://ficsgames.org，主要用于测试。
	BaseURL string
}

func (Provider) Identity() domain.Identity {
	return domain.Identity{Name: "FicsGames.org", Family: domain.Chess, Strategy: domain.DownloadLink}
}

func (Provider) Identify(u *url.URL) (domain.Match, bool) {
	if !provider.HostIs(u, "ficsgames.org") || !strings.Contains(strings.ToLower(u.Path), "show") {
		return domain.Match{}, false
	}
	if id := queryParam(u.RawQuery, "ID"); provider.NumericID(id) {
		return domain.Match{ID: id, Type: domain.TypeGame, URL: u.String()}, true
	}
	return domain.Match{}, false
}

// queryParam 读取查询参数。站点用 ';' 与 '&' 混合分隔参数，url.Query 会丢弃含 ';' 的整段，这里手动切分。
func queryParam(raw, key string) string {
	for _, kv := range strings.FieldsFunc(raw, func(r rune) bool { return r == '&' || r == ';' }) {
		k, v, _ := strings.Cut(kv, "=")
		if k != key {
			continue
		}
		if dv, err := url.QueryUnescape(v); err == nil {
			return dv
		}
		return v
	}
	return ""
}

func (p Provider) Retrieve(ctx context.Context, m domain.Match, c *fetch.Client) (string, error) {
	base := defaultBase
	if b := strings.TrimSpace(p.BaseURL); b != "" {
		base = strings.TrimRight(b, "/")
	}
	text, err := c.Get(ctx, base+"/cgi-bin/show.cgi?ID="+m.ID+";action=save")
	if err != nil {
		return "", err
	}
	if strings.Contains(text, "not found in GGbID") {
		return "", provider.Parsef("对局 %s 不存在", m.ID)
	}
	return text, nil
}

func (Provider) TestLinks() []domain.TestLink {
	return []domain.TestLink{
		{URL: "https://www.ficsgames.org/cgi-bin/show.cgi?ID=451813954;action=save", Expect: true},
		{URL: "https://www.ficsgames.org/cgi-bin/show.cgi?ID=qwertz;action=save", Expect: false},
		{URL: "https://www.ficsgames.org/cgi-bin/show.cgi?ID=0#anchor", Expect: false},
		{URL: "https://www.ficsgames.org/about.html", Expect: false},
	}
}
