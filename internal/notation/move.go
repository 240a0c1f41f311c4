package notation

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrBadToken 表示着法编码无法解码（长度/字符表/取值范围不合法）。
	ErrBadToken = errors.New("着法编码无法解码")
	// ErrIllegalMove 表示着法在当前局面下不合法。
	ErrIllegalMove = errors.New("着法不合法")
	// ErrBadFEN 表示起始局面无法解析。
	ErrBadFEN = errors.New("FEN 无法解析")
)

// PieceType 是不带颜色的棋子类型。
type PieceType int8

const (
	NoPiece PieceType = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

// pieceFromLetter 接受大小写字母（p n b r q k）。
func pieceFromLetter(c byte) PieceType {
	switch c {
	case 'p', 'P':
		return Pawn
	case 'n', 'N':
		return Knight
	case 'b', 'B':
		return Bishop
	case 'r', 'R':
		return Rook
	case 'q', 'Q':
		return Queen
	case 'k', 'K':
		return King
	default:
		return NoPiece
	}
}

// Letter 返回 SAN 使用的大写字母；兵返回 "P"。
func (p PieceType) Letter() string {
	switch p {
	case Pawn:
		return "P"
	case Knight:
		return "N"
	case Bishop:
		return "B"
	case Rook:
		return "R"
	case Queen:
		return "Q"
	case King:
		return "K"
	default:
		return ""
	}
}

// Square 是 0..63 的格子编号：a1=0, b1=1, ..., h8=63。
type Square int8

const NoSquare Square = -1

func newSquare(file, rank int) Square { return Square(rank*8 + file) }

func (s Square) File() int { return int(s) % 8 }
func (s Square) Rank() int { return int(s) / 8 }

func (s Square) String() string {
	if s < 0 || s > 63 {
		return "-"
	}
	return string([]byte{byte('a' + s.File()), byte('1' + s.Rank())})
}

// ParseSquare 解析 "e4" 形式的格子名。
func ParseSquare(s string) (Square, bool) {
	if len(s) != 2 {
		return NoSquare, false
	}
	f := s[0]
	r := s[1]
	if f >= 'A' && f <= 'H' {
		f += 'a' - 'A'
	}
	if f < 'a' || f > 'h' || r < '1' || r > '8' {
		return NoSquare, false
	}
	return newSquare(int(f-'a'), int(r-'1')), true
}

// Move 是与站点编码无关的着法：普通走子（From/To/Promo）或落子（Drop/To）。
type Move struct {
	From  Square
	To    Square
	Promo PieceType
	Drop  PieceType
}

func (m Move) IsDrop() bool { return m.Drop != NoPiece }

// UCI 返回坐标形式，落子写作 "Q@e4"。
func (m Move) UCI() string {
	if m.IsDrop() {
		return m.Drop.Letter() + "@" + m.To.String()
	}
	s := m.From.String() + m.To.String()
	if m.Promo != NoPiece {
		s += strings.ToLower(m.Promo.Letter())
	}
	return s
}

// Decoder 把站点原始着法编码转换为 Move。
type Decoder func(raw string) (Move, error)

// ParseUCI 解析 "e2e4"、"e7e8q" 与落子 "Q@e4"/"P@e4"。
func ParseUCI(raw string) (Move, error) {
	s := strings.TrimSpace(raw)
	if len(s) == 4 && s[1] == '@' {
		p := pieceFromLetter(s[0])
		to, ok := ParseSquare(s[2:])
		if p == NoPiece || p == King || !ok {
			return Move{}, fmt.Errorf("%w：%q", ErrBadToken, raw)
		}
		return Move{From: NoSquare, To: to, Drop: p}, nil
	}
	if len(s) != 4 && len(s) != 5 {
		return Move{}, fmt.Errorf("%w：%q", ErrBadToken, raw)
	}
	from, ok1 := ParseSquare(s[0:2])
	to, ok2 := ParseSquare(s[2:4])
	if !ok1 || !ok2 {
		return Move{}, fmt.Errorf("%w：%q", ErrBadToken, raw)
	}
	m := Move{From: from, To: to}
	if len(s) == 5 {
		m.Promo = pieceFromLetter(s[4])
		if m.Promo == NoPiece || m.Promo == Pawn || m.Promo == King {
			return Move{}, fmt.Errorf("%w：%q", ErrBadToken, raw)
		}
	}
	return m, nil
}

// tcnAlphabet 是 chess.com moveList 的字符表：前 64 个字符是格子，之后是升变与落子区段。
const tcnAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!?{~}(^)[_]@#$,./&-*++="

const tcnPieces = "qnrbkp"

// DecodeTCN 解码 chess.com 的两字符着法。
//
// - 目标码 > 63：升变，棋子为 tcnPieces[(code-64)/3]，横向偏移为 (code-1)%3-1
// - 起点码 79..84：落子，棋子为 tcnPieces[code-79]
func DecodeTCN(pair string) (Move, error) {
	if len(pair) != 2 {
		return Move{}, fmt.Errorf("%w：%q", ErrBadToken, pair)
	}
	from := strings.IndexByte(tcnAlphabet, pair[0])
	to := strings.IndexByte(tcnAlphabet, pair[1])
	if from < 0 || to < 0 {
		return Move{}, fmt.Errorf("%w：%q", ErrBadToken, pair)
	}

	m := Move{From: NoSquare, To: NoSquare}
	if to > 63 {
		i := (to - 64) / 3
		if i >= len(tcnPieces) {
			return Move{}, fmt.Errorf("%w：%q", ErrBadToken, pair)
		}
		m.Promo = pieceFromLetter(tcnPieces[i])
		dir := 8
		if from < 16 {
			dir = -8
		}
		to = from + dir + (to-1)%3 - 1
	}
	if from > 75 {
		i := from - 79
		if i < 0 || i >= len(tcnPieces) {
			return Move{}, fmt.Errorf("%w：%q", ErrBadToken, pair)
		}
		m.Drop = pieceFromLetter(tcnPieces[i])
	} else {
		if from > 63 {
			return Move{}, fmt.Errorf("%w：%q", ErrBadToken, pair)
		}
		m.From = Square(from)
	}
	if to < 0 || to > 63 {
		return Move{}, fmt.Errorf("%w：%q", ErrBadToken, pair)
	}
	m.To = Square(to)
	if m.IsDrop() && m.Promo != NoPiece {
		return Move{}, fmt.Errorf("%w：%q", ErrBadToken, pair)
	}
	return m, nil
}

// SplitTCN 把 moveList 切成两字符一组；长度为奇数时返回错误。
func SplitTCN(list string) ([]string, error) {
	if len(list)%2 != 0 {
		return nil, fmt.Errorf("%w：moveList 长度为奇数", ErrBadToken)
	}
	out := make([]string, 0, len(list)/2)
	for i := 0; i < len(list); i += 2 {
		out = append(out, list[i:i+2])
	}
	return out, nil
}
