// Package greenchess 解析 greenchess.net 的对局页（含三人对局与童话棋子）。
package greenchess

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/John-Robertt/boardsdl/internal/domain"
	"github.com/John-Robertt/boardsdl/internal/fetch"
	"github.com/John-Robertt/boardsdl/internal/pgn"
	"github.com/John-Robertt/boardsdl/internal/provider"
)

const defaultBase = "https://greenchess.net"

// pieceLetters 把棋子图标的 alt 映射为着法字母；颜色图标没有 alt，映射为空。
var pieceLetters = map[string]string{
	"Rook":             "R",
	"Short rook":       "R",
	"Bishop":           "B",
	"Knight":           "N",
	"Queen":            "Q",
	"King":             "K",
	"Archbishop":       "A",
	"Superqueen":       "Z",
	"Chancellor":       "C",
	"Centaur":          "M",
	"Nightrider":       "N",
	"Grasshopper":      "G",
	"Augmented knight": "N",
}

// glue 暂时标记图标位置，用于去掉图标与坐标之间的空白。
const glue = "\ue000"

type Provider struct {
	// BaseURL 覆盖 https://greenchess.net，主要用于测试。
	BaseURL string
}

func (Provider) Identity() domain.Identity {
	return domain.Identity{Name: "GreenChess.net", Family: domain.Chess, Strategy: domain.HTMLParsing}
}

func (Provider) Identify(u *url.URL) (domain.Match, bool) {
	if !provider.HostIs(u, "greenchess.net") {
		return domain.Match{}, false
	}
	id := u.Query().Get("id")
	if n, err := strconv.ParseUint(id, 10, 64); err == nil && n != 0 {
		return domain.Match{ID: id, Type: domain.TypeGame, URL: u.String()}, true
	}
	return domain.Match{}, false
}

func (p Provider) base() string {
	if b := strings.TrimSpace(p.BaseURL); b != "" {
		return strings.TrimRight(b, "/")
	}
	return defaultBase
}

func (p Provider) Retrieve(ctx context.Context, m domain.Match, c *fetch.Client) (string, error) {
	page, err := c.Get(ctx, p.base()+"/game.php?id="+m.ID)
	if err != nil {
		return "", err
	}
	return parse(defaultBase+"/game.php?id="+m.ID, page)
}

func parse(site, page string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return "", provider.Parsef("HTML 解析失败：%v", err)
	}

	rec := pgn.NewRecord()
	rec.Set("Site", site)

	// 历史记录按时间倒序排列。
	var moves []string
	doc.Find(".history-item").Each(func(_ int, s *goquery.Selection) {
		s.Find("img").Each(func(_ int, img *goquery.Selection) {
			alt, _ := img.Attr("alt")
			img.ReplaceWithHtml(pieceLetters[alt] + glue)
		})
		text := strings.ReplaceAll(strings.ReplaceAll(s.Text(), glue+" ", ""), glue, "")
		if strings.Contains(text, "Start") {
			return
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			return
		}
		moves = append([]string{castling(fields[len(fields)-1])}, moves...)
	})
	if len(moves) == 0 {
		return "", provider.Parsef("页面中没有着法")
	}
	rec.Set(pgn.FieldMoves, strings.Join(moves, " "))

	title := strings.TrimSpace(doc.Find("title").First().Text())
	rec.Set("Event", title)
	if i := strings.Index(title, " – "); i >= 0 {
		rec.Set("Variant", title[:i])
	}

	pos := strings.Index(page, "uweb-commands")
	if pos < 0 {
		return "", provider.Parsef("页面中没有玩家数据")
	}
	names := players(page[pos:])
	if len(names) == 2 {
		rec.Set("White", names[0])
		rec.Set("Black", names[1])
		rec.Set("Result", result(page[pos:]))
	} else {
		for i, n := range names {
			rec.Set(fmt.Sprintf("Player%d", i+1), n)
		}
	}
	return pgn.Assemble(rec)
}

func castling(mv string) string {
	switch mv {
	case "0-0-0":
		return "O-O-O"
	case "0-0":
		return "O-O"
	}
	return mv
}

// players 读取 "player-0".."player-2" 之后第一个 "text" 字段。
func players(cmds string) []string {
	var names []string
	for i := 0; i < 3; i++ {
		p := strings.Index(cmds, fmt.Sprintf(`"player-%d":`, i))
		if p < 0 {
			break
		}
		q := strings.Index(cmds[p:], `"text":"`)
		if q < 0 {
			break
		}
		start := p + q + len(`"text":"`)
		end := strings.IndexByte(cmds[start:], '"')
		if end > 0 {
			names = append(names, cmds[start:start+end])
		}
	}
	return names
}

func result(cmds string) string {
	switch {
	case strings.Contains(cmds, "'draw'"):
		return "1/2-1/2"
	case strings.Index(cmds, "'winner'") > strings.Index(cmds, "'loser'"):
		return "0-1"
	default:
		return "1-0"
	}
}

func (Provider) TestLinks() []domain.TestLink {
	return []domain.TestLink{
		{URL: "https://greenchess.net/game.php?id=6923", Expect: true},
		{URL: "https://greenchess.net/game.php?id=8733", Expect: true},
		{URL: "https://greenchess.net/game.php?id=1001", Expect: true},
		{URL: "https://greenchess.net/game.php?id=88352", Expect: true},
		{URL: "https://greenchess.net/game.php?id=abc123", Expect: false},
		{URL: "https://greenchess.net", Expect: false},
	}
}
