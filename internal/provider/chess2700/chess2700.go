// Package chess2700 解析 2700chess.com 对局页中内嵌的 PGN。
package chess2700

import (
	"context"
	"net/url"
	"strings"

	"github.com/John-Robertt/boardsdl/internal/domain"
	"github.com/John-Robertt/boardsdl/internal/fetch"
	"github.com/John-Robertt/boardsdl/internal/provider"
)

const defaultBase = "https://2700chess.com"

type Provider struct {
	// BaseURL 覆盖 https://2700chess.com，主要用于测试。
	BaseURL string
}

func (Provider) Identity() domain.Identity {
	return domain.Identity{Name: "2700chess.com", Family: domain.Chess, Strategy: domain.HTMLParsing}
}

// Identify 接受 /games/<slug> 与 /games/download?slug=<slug>；ID 为 slug。
func (Provider) Identify(u *url.URL) (domain.Match, bool) {
	if !provider.HostIs(u, "2700chess.com") {
		return domain.Match{}, false
	}
	var slug string
	if strings.EqualFold(u.Path, "/games/download") {
		slug = u.Query().Get("slug")
	} else if rest, ok := strings.CutPrefix(u.Path, "/games/"); ok {
		slug = strings.Trim(rest, "/")
	}
	if slug == "" {
		return domain.Match{}, false
	}
	return domain.Match{ID: slug, Type: domain.TypeGame, URL: defaultBase + "/games/" + slug}, true
}

func (p Provider) Retrieve(ctx context.Context, m domain.Match, c *fetch.Client) (string, error) {
	base := defaultBase
	if b := strings.TrimSpace(p.BaseURL); b != "" {
		base = strings.TrimRight(b, "/")
	}
	page, err := c.Get(ctx, base+"/games/"+m.ID)
	if err != nil {
		return "", err
	}
	text, ok := extract(page)
	if !ok {
		return "", provider.Parsef("页面中没有 analysis.setPgn")
	}
	return text, nil
}

// extract 取出 analysis.setPgn("...") 的第一个字符串参数并还原转义。
func extract(page string) (string, bool) {
	for _, stmt := range strings.Split(page, ";") {
		i := strings.Index(stmt, "analysis.setPgn(")
		if i < 0 {
			continue
		}
		s := stmt[i:]
		start := strings.IndexByte(s, '"')
		if start < 0 {
			continue
		}
		for j := start + 1; j < len(s); j++ {
			if s[j] == '"' && s[j-1] != '\\' {
				r := strings.NewReplacer(`\"`, `"`, `\/`, `/`, `\n`, "\n")
				return strings.TrimSpace(r.Replace(s[start+1 : j])), true
			}
		}
	}
	return "", false
}

func (Provider) TestLinks() []domain.TestLink {
	return []domain.TestLink{
		{URL: "https://2700CHESS.com/games/dominguez-perez-yu-yangyi-r19.6-hengshui-chn-2019-05-18", Expect: true},
		{URL: "https://2700chess.com/games/download?slug=dominguez-perez-yu-yangyi-r19.6-hengshui-chn-2019-05-18#tag", Expect: true},
		{URL: "https://2700chess.COM/games/pychess-r1.1-paris-fra-2019-12-25", Expect: false},
		{URL: "https://2700chess.com", Expect: false},
	}
}
