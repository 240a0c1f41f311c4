package pgn

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/John-Robertt/boardsdl/internal/domain"
	"github.com/John-Robertt/boardsdl/internal/notation"
)

var (
	// ErrNoMoves 表示记录缺少着法正文，无法输出。
	ErrNoMoves = errors.New("记录缺少着法")
	// ErrEmpty 表示清洗后内容为空。
	ErrEmpty = errors.New("棋谱内容为空")
	// ErrInvalidFormat 表示内容首字符不符合该棋类的格式约定。
	ErrInvalidFormat = errors.New("棋谱格式不合法")
)

// Annotator 是没有任何标签时补上的注释者名。
const Annotator = "boardsdl"

var rosterTags = []string{"Event", "Site", "Date", "Round", "White", "Black", "Result"}

// NormalizeStart 去掉“经典起始局面”的冗余标签：
// Fischerandom 且 FEN 为经典开局时删除 Variant/SetUp/FEN；无 Variant 且 FEN 为经典开局时删除 SetUp/FEN。
func NormalizeStart(rec *Record) {
	if !notation.IsClassicalStart(rec.Get("FEN")) {
		return
	}
	switch rec.Get("Variant") {
	case notation.Chess960:
		rec.Del("Variant")
	case "":
	default:
		return
	}
	rec.Del("SetUp")
	rec.Del("FEN")
}

// Assemble 按固定的标签顺序与正文结构输出记录。
func Assemble(rec *Record) (string, error) {
	if rec == nil || strings.TrimSpace(rec.Get(FieldMoves)) == "" {
		return "", ErrNoMoves
	}
	NormalizeStart(rec)

	if r := rec.Get("Result"); strings.Contains(r, "½") {
		r = strings.ReplaceAll(r, "Â½", "1/2")
		rec.Set("Result", strings.ReplaceAll(r, "½", "1/2"))
	}

	players := playerKeys(rec)
	multi := rec.Has("Player3") || len(players) >= 3
	emitted := map[string]bool{}
	var sb strings.Builder
	tag := func(k, v string) {
		fmt.Fprintf(&sb, "[%s \"%s\"]\n", k, escape(v))
		emitted[k] = true
	}

	for _, k := range rosterTags {
		if multi && (k == "White" || k == "Black") {
			// 多人对局以 PlayerN 代替，White/Black 不再输出。
			emitted[k] = true
			continue
		}
		if k == "Result" && multi {
			for _, p := range players {
				tag(p, orDefault(rec.Get(p), "?"))
			}
		}
		def := "?"
		if k == "Result" {
			def = "*"
		}
		tag(k, orDefault(rec.Get(k), def))
	}
	for _, k := range rec.Keys() {
		if strings.HasPrefix(k, "_") || emitted[k] {
			continue
		}
		v := rec.Get(k)
		if strings.TrimSpace(v) == "" {
			continue
		}
		tag(k, v)
	}
	if len(emitted) == 0 {
		tag("Annotator", Annotator)
	}

	sb.WriteString("\n")
	if u := strings.TrimSpace(rec.Get(FieldURL)); u != "" {
		fmt.Fprintf(&sb, "{%s}\n", u)
	}
	sb.WriteString(strings.TrimSpace(rec.Get(FieldMoves)))
	sb.WriteString(" ")
	if r := strings.TrimSpace(rec.Get(FieldReason)); r != "" {
		fmt.Fprintf(&sb, "{%s} ", r)
	}
	sb.WriteString(orDefault(rec.Get("Result"), "*"))
	sb.WriteString(" ")
	return strings.TrimSpace(sb.String()), nil
}

// playerKeys 按编号升序返回所有 PlayerN 标签；编号不要求连续。
func playerKeys(rec *Record) []string {
	type player struct {
		key string
		n   int
	}
	var ps []player
	for _, k := range rec.Keys() {
		num, ok := strings.CutPrefix(k, "Player")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(num)
		if err != nil || n <= 0 {
			continue
		}
		ps = append(ps, player{key: k, n: n})
	}
	sort.Slice(ps, func(i, j int) bool { return ps[i].n < ps[j].n })
	keys := make([]string, 0, len(ps))
	for _, p := range ps {
		keys = append(keys, p.key)
	}
	return keys
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func escape(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	return strings.ReplaceAll(v, `"`, `\"`)
}

// Sanitize 统一换行与空行，并按棋类校验首字符（validate=false 时跳过校验）。
//
// 结果满足幂等：Sanitize(Sanitize(x)) == Sanitize(x)。
func Sanitize(text string, fam domain.Family, validate bool) (string, error) {
	s := strings.ReplaceAll(text, "\r", "")
	if fam == domain.Chess {
		s = strings.ReplaceAll(s, "[Variant \"Chess\"]\n", "")
	}
	s = strings.TrimSpace(s)
	for strings.Contains(s, "\n\n\n") {
		s = strings.ReplaceAll(s, "\n\n\n", "\n\n")
	}
	if s == "" {
		return "", ErrEmpty
	}
	if !validate {
		return s, nil
	}
	switch fam {
	case domain.Chess, domain.Draughts:
		if s[0] != '[' {
			return "", fmt.Errorf("%w：期望以 '[' 开头", ErrInvalidFormat)
		}
	case domain.Go:
		if s[0] != '(' {
			return "", fmt.Errorf("%w：期望以 '(' 开头", ErrInvalidFormat)
		}
	}
	return s, nil
}
