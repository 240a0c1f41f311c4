// Package shorthand 把常见的短 ID 展开为完整 URL。
package shorthand

import (
	"regexp"
	"strings"
)

var (
	// lichess 对局 ID：8 位字母数字（允许 '-'）。
	lichessGameRE = regexp.MustCompile(`(?i)^[a-z0-9-]{8}$`)
	// lichess 谜题 ID：5 位字母数字。
	lichessPuzzleRE = regexp.MustCompile(`(?i)^[a-z0-9]{5}$`)
	digitsRE        = regexp.MustCompile(`^[0-9]+$`)
)

// Expand 按固定顺序识别短 ID；不是短 ID 的输入原样返回（去掉首尾空白）。
func Expand(raw string) string {
	s := strings.TrimSpace(raw)
	switch {
	case s == "":
		return ""
	case lichessGameRE.MatchString(s):
		return "https://lichess.org/" + s
	case lichessPuzzleRE.MatchString(s):
		return "https://lichess.org/training/" + s
	case digitsRE.MatchString(s):
		return "https://www.chess.com/live/game/" + s
	default:
		return s
	}
}
