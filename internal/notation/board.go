package notation

import (
	"fmt"
	"strings"

	"github.com/notnil/chess"
)

const (
	// FENStart 是经典国际象棋的起始局面。
	FENStart = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
	// FENStart960 是同一布局在 Shredder-FEN（车所在列）写法下的起始局面。
	FENStart960 = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w HAha - 0 1"
	// Chess960 是输出记录中使用的变体名。
	Chess960 = "Fischerandom"
)

// Variant 决定虚拟棋盘的规则集。
type Variant int

const (
	Standard   Variant = iota
	Shuffle            // Chess960：随机起始布局，王车易位按车所在列处理
	Crazyhouse         // 吃子入手，可落子
)

// VariantFromTag 把站点给出的变体名映射为规则集；未知名称按标准规则处理。
func VariantFromTag(name string) Variant {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "chess960", "fischerandom", "fischer random", "chess 960":
		return Shuffle
	case "crazyhouse":
		return Crazyhouse
	default:
		return Standard
	}
}

// Board 是着法合法性判定器：Apply 成功时返回 SAN 并推进局面。
type Board interface {
	Apply(m Move) (san string, err error)
}

// NewBoard 按变体与起始 FEN 构造虚拟棋盘；fen 为空时使用该变体的默认起始局面。
//
// 标准规则使用 notnil/chess；Chess960 与 Crazyhouse 使用本包的 mailbox 棋盘。
func NewBoard(v Variant, fen string) (Board, error) {
	fen = strings.TrimSpace(fen)
	switch v {
	case Shuffle:
		if fen == "" {
			fen = FENStart960
		}
		return parseFEN(fen, v)
	case Crazyhouse:
		if fen == "" {
			fen = FENStart
		}
		return parseFEN(fen, v)
	default:
		if fen == "" {
			fen = FENStart
		}
		return newStdBoard(fen)
	}
}

type stdBoard struct {
	pos *chess.Position
}

func newStdBoard(fen string) (*stdBoard, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("%w：%v", ErrBadFEN, err)
	}
	g := chess.NewGame(opt)
	return &stdBoard{pos: g.Position()}, nil
}

func (b *stdBoard) Apply(m Move) (string, error) {
	if m.IsDrop() {
		return "", fmt.Errorf("%w：标准规则不允许落子 %s", ErrIllegalMove, m.UCI())
	}
	m = b.normalizeCastle(m)
	for _, vm := range b.pos.ValidMoves() {
		if int(vm.S1()) != int(m.From) || int(vm.S2()) != int(m.To) {
			continue
		}
		if vm.Promo() != libPiece(m.Promo) {
			continue
		}
		san := chess.AlgebraicNotation{}.Encode(b.pos, vm)
		b.pos = b.pos.Update(vm)
		return san, nil
	}
	return "", fmt.Errorf("%w：%s", ErrIllegalMove, m.UCI())
}

// normalizeCastle 把“王走到本方车上”的易位写法转换为经典的王走两格。
func (b *stdBoard) normalizeCastle(m Move) Move {
	board := b.pos.Board()
	from := board.Piece(chess.Square(m.From))
	to := board.Piece(chess.Square(m.To))
	if from.Type() != chess.King || to.Type() != chess.Rook || from.Color() != to.Color() {
		return m
	}
	if m.From.Rank() != m.To.Rank() {
		return m
	}
	if m.To.File() > m.From.File() {
		m.To = newSquare(6, m.From.Rank())
	} else {
		m.To = newSquare(2, m.From.Rank())
	}
	return m
}

func libPiece(p PieceType) chess.PieceType {
	switch p {
	case Knight:
		return chess.Knight
	case Bishop:
		return chess.Bishop
	case Rook:
		return chess.Rook
	case Queen:
		return chess.Queen
	case King:
		return chess.King
	case Pawn:
		return chess.Pawn
	default:
		return chess.NoPieceType
	}
}
