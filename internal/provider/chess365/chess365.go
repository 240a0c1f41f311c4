// Package chess365 从 365chess.com 的对局页重建 PGN。
package chess365

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/John-Robertt/boardsdl/internal/domain"
	"github.com/John-Robertt/boardsdl/internal/fetch"
	"github.com/John-Robertt/boardsdl/internal/pgn"
	"github.com/John-Robertt/boardsdl/internal/provider"
)

const defaultBase = "https://www.365chess.com"

var playersRE = regexp.MustCompile(`(?i)^([\w\-,\s]+)(\(([0-9]+)\))? vs\. ([\w\-,\s]+)(\(([0-9]+)\))?$`)

var results = map[string]bool{"1-0": true, "0-1": true, "1/2-1/2": true, "*": true}

type Provider struct {
	// BaseURL 覆盖 https://www.365chess.com，主要用于测试。
	BaseURL string
}

func (Provider) Identity() domain.Identity {
	return domain.Identity{Name: "365chess.com", Family: domain.Chess, Strategy: domain.HTMLParsing}
}

func (Provider) Identify(u *url.URL) (domain.Match, bool) {
	if !provider.HostIs(u, "365chess.com") {
		return domain.Match{}, false
	}
	var key string
	switch strings.ToLower(u.Path) {
	case "/game.php":
		key = "gid"
	case "/view_game.php":
		key = "g"
	default:
		return domain.Match{}, false
	}
	id := u.Query().Get(key)
	if !provider.NumericID(id) {
		return domain.Match{}, false
	}
	return domain.Match{ID: id, Type: domain.TypeGame, URL: u.String()}, true
}

func (p Provider) Retrieve(ctx context.Context, m domain.Match, c *fetch.Client) (string, error) {
	base := defaultBase
	if b := strings.TrimSpace(p.BaseURL); b != "" {
		base = strings.TrimRight(b, "/")
	}
	page, err := c.Get(ctx, base+"/game.php?gid="+m.ID)
	if err != nil {
		return "", err
	}
	return parse(defaultBase+"/game.php?gid="+m.ID, page)
}

func parse(link, page string) (string, error) {
	i := strings.Index(page, "chess_game.Init({")
	if i < 0 {
		return "", provider.Parsef("页面中没有对局数据")
	}
	j := strings.Index(page[i:], ",pgn:'")
	if j < 0 {
		return "", provider.Parsef("对局数据缺少着法")
	}
	moves := page[i+j+len(",pgn:'"):]
	end := strings.IndexByte(moves, '\'')
	if end < 0 {
		return "", provider.Parsef("着法字符串未结束")
	}
	moves = moves[:end]

	rec := pgn.NewRecord()
	rec.Set(pgn.FieldURL, link)
	if k := strings.LastIndexByte(moves, ' '); k >= 0 && results[moves[k+1:]] {
		rec.Set("Result", moves[k+1:])
		moves = moves[:k]
	}
	rec.Set(pgn.FieldMoves, moves)
	rec.Set("White", "Unknown")
	rec.Set("Black", "Unknown")

	for _, line := range strings.Split(strings.ReplaceAll(page, "<td", "\n<td"), "\n") {
		line = strings.TrimSpace(line)
		for _, tag := range []string{"Event", "Site", "Date", "Round"} {
			if v, ok := cellValue(line, tag); ok {
				if tag == "Date" {
					v = isoDate(v)
				}
				rec.Set(tag, v)
			}
		}
		if m := playersRE.FindStringSubmatch(strings.TrimSpace(provider.StripHTML(line))); m != nil {
			rec.Set("White", strings.TrimSpace(m[1]))
			rec.SetIf("WhiteElo", m[3])
			rec.Set("Black", strings.TrimSpace(m[4]))
			rec.SetIf("BlackElo", m[6])
		}
	}
	return pgn.Assemble(rec)
}

// cellValue 读取 "Tag: <b>value</b>" 形式中 "Tag:" 后第一个空格到下一个 '<' 之间的文本。
func cellValue(line, tag string) (string, bool) {
	i := strings.Index(line, tag+":")
	if i < 0 {
		return "", false
	}
	sp := strings.IndexByte(line[i:], ' ')
	if sp < 0 {
		return "", false
	}
	rest := line[i+sp+1:]
	lt := strings.IndexByte(rest, '<')
	if lt < 0 {
		return "", false
	}
	return rest[:lt], true
}

// isoDate 把 mm/dd/yyyy 转成 yyyy.mm.dd；其它格式原样返回。
func isoDate(v string) string {
	if len(v) != 10 || v[2] != '/' || v[5] != '/' {
		return v
	}
	return v[6:] + "." + v[:2] + "." + v[3:5]
}

func (Provider) TestLinks() []domain.TestLink {
	return []domain.TestLink{
		{URL: "https://www.365chess.com/view_game.php?g=4187437#anchor", Expect: true},
		{URL: "https://www.365chess.com/view_game.php?g=1234567890", Expect: false},
		{URL: "https://www.365chess.com/game.php?gid=4230834&p=0", Expect: true},
	}
}
