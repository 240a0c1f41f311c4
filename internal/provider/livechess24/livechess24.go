// Package livechess24 下载 LiveChess24.com 整个赛事的 PGN。
package livechess24

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/John-Robertt/boardsdl/internal/domain"
	"github.com/John-Robertt/boardsdl/internal/fetch"
)

const defaultBase = "http://livechess24.com"

var urlRE = regexp.MustCompile(`(?i)^https?://livechess24\.com/Tournaments/(\w+)[/?#]?`)

type Provider struct {
	// BaseURL 覆盖 http://livechess24.com，主要用于测试。
	BaseURL string
}

func (Provider) Identity() domain.Identity {
	return domain.Identity{Name: "LiveChess24.com", Family: domain.Chess, Strategy: domain.DownloadLink}
}

// Identify 只认赛事页；单局视图同样下载整个赛事。
func (Provider) Identify(u *url.URL) (domain.Match, bool) {
	s := u.String()
	if m := urlRE.FindStringSubmatch(s); m != nil {
		return domain.Match{ID: m[1], Type: domain.TypeEvent, URL: s}, true
	}
	return domain.Match{}, false
}

func (p Provider) Retrieve(ctx context.Context, m domain.Match, c *fetch.Client) (string, error) {
	base := defaultBase
	if b := strings.TrimSpace(p.BaseURL); b != "" {
		base = strings.TrimRight(b, "/")
	}
	return c.Get(ctx, base+"/downloadPgn?tourn="+url.QueryEscape(m.ID))
}

func (Provider) TestLinks() []domain.TestLink {
	return []domain.TestLink{
		{URL: "http://livechess24.com/Tournaments/V_stg_ta_Open_2023?round=6", Expect: true},
		{URL: "http://livechess24.com/Tournaments/Elite_Hotels_Open_2023?round=8&singleViewMode=true", Expect: true},
		{URL: "http://livechess24.com/Tournaments/Elite_Hotels_Open_2012", Expect: false},
		{URL: "http://livechess24.com/downloadPgn?tourn=Elite_Hotels_Open_2023", Expect: false},
		{URL: "http://livechess24.com", Expect: false},
	}
}
