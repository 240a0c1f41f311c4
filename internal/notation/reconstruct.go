package notation

import (
	"fmt"
	"strings"
)

// Token 是一步原始着法，可附带该步之后的剩余时间（毫秒）。
type Token struct {
	Raw      string
	ClockMS  int64
	HasClock bool
}

// Plain 把一组无时钟的原始着法包装为 Token。
func Plain(raws ...string) []Token {
	out := make([]Token, 0, len(raws))
	for _, r := range raws {
		out = append(out, Token{Raw: r})
	}
	return out
}

// IllegalMoveError 标记重建在第 Ply 步（从 1 开始）失败。
type IllegalMoveError struct {
	Ply   int
	Token string
	Err   error
}

func (e *IllegalMoveError) Error() string {
	return fmt.Sprintf("第 %d 步 %q：%v", e.Ply, e.Token, e.Err)
}

func (e *IllegalMoveError) Unwrap() error { return e.Err }

// Reconstruct 在虚拟棋盘上依次解码并执行着法，返回以空格结尾的 SAN 序列。
//
// 任一步失败时返回空串与 *IllegalMoveError，不输出部分结果。
func Reconstruct(v Variant, fen string, tokens []Token, dec Decoder) (string, error) {
	b, err := NewBoard(v, fen)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for i, tok := range tokens {
		m, err := dec(tok.Raw)
		if err != nil {
			return "", &IllegalMoveError{Ply: i + 1, Token: tok.Raw, Err: err}
		}
		san, err := b.Apply(m)
		if err != nil {
			return "", &IllegalMoveError{Ply: i + 1, Token: tok.Raw, Err: err}
		}
		AppendMove(&sb, san, tok)
	}
	return sb.String(), nil
}

// AppendMove 追加一步 SAN 与可选的时钟注释；供已经给出 SAN 的站点直接使用。
func AppendMove(sb *strings.Builder, san string, tok Token) {
	sb.WriteString(san)
	sb.WriteByte(' ')
	if tok.HasClock {
		sb.WriteString("{[%clk ")
		sb.WriteString(FormatClock(tok.ClockMS))
		sb.WriteString("]} ")
	}
}

// FormatClock 把毫秒格式化为 H:MM:SS，向下取整到秒；负值按 0 处理。
func FormatClock(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	s := ms / 1000
	return fmt.Sprintf("%d:%02d:%02d", s/3600, (s/60)%60, s%60)
}

// IsClassicalStart 判断 FEN 是否为经典起始局面（KQkq 或 HAha 两种易位写法均可，忽略回合计数）。
func IsClassicalStart(fen string) bool {
	f := strings.Fields(fen)
	if len(f) < 4 {
		return false
	}
	key := strings.Join(f[:4], " ")
	return key == strings.Join(strings.Fields(FENStart)[:4], " ") ||
		key == strings.Join(strings.Fields(FENStart960)[:4], " ")
}
