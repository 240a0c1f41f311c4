package notation

import (
	"fmt"
	"strings"
)

// varBoard 是覆盖 Chess960 与 Crazyhouse 的 mailbox 棋盘。
//
// 状态全部是值类型数组，`nb := *b` 即得到独立副本，用于合法性过滤。
type varBoard struct {
	variant Variant

	cells    [64]cell
	promoted [64]bool // Crazyhouse：升变而来的棋子被吃后按兵入手

	black bool // 轮到黑方

	// rooks[color][side] 是仍保有易位权的车所在列；-1 表示无权。side: 0=王翼, 1=后翼。
	rooks [2][2]int

	ep Square

	pocket [2][7]int
}

type cell struct {
	t     PieceType
	black bool
}

func (c cell) empty() bool { return c.t == NoPiece }

type vmove struct {
	from, to Square
	promo    PieceType
	drop     PieceType
	castle   int // 0=非易位, 1=王翼, 2=后翼；易位时 to 是车所在格
}

type step struct{ df, dr int }

var (
	knightSteps = []step{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
	kingSteps   = []step{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}}
	orthSteps   = []step{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	diagSteps   = []step{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
)

func colorIdx(black bool) int {
	if black {
		return 1
	}
	return 0
}

func offset(s Square, st step) (Square, bool) {
	f := s.File() + st.df
	r := s.Rank() + st.dr
	if f < 0 || f > 7 || r < 0 || r > 7 {
		return NoSquare, false
	}
	return newSquare(f, r), true
}

func parseFEN(fen string, v Variant) (*varBoard, error) {
	fields := strings.Fields(fen)
	if len(fields) < 2 {
		return nil, fmt.Errorf("%w：%q", ErrBadFEN, fen)
	}
	b := &varBoard{variant: v, ep: NoSquare, rooks: [2][2]int{{-1, -1}, {-1, -1}}}

	placement := fields[0]
	pocket := ""
	if i := strings.IndexByte(placement, '['); i >= 0 {
		if !strings.HasSuffix(placement, "]") {
			return nil, fmt.Errorf("%w：%q", ErrBadFEN, fen)
		}
		pocket = placement[i+1 : len(placement)-1]
		placement = placement[:i]
	}
	rows := strings.Split(placement, "/")
	if len(rows) == 9 {
		pocket = rows[8]
		rows = rows[:8]
	}
	if len(rows) != 8 {
		return nil, fmt.Errorf("%w：%q", ErrBadFEN, fen)
	}
	for i, row := range rows {
		rank := 7 - i
		file := 0
		for j := 0; j < len(row); j++ {
			c := row[j]
			switch {
			case c >= '1' && c <= '8':
				file += int(c - '0')
			case c == '~':
				if file == 0 {
					return nil, fmt.Errorf("%w：%q", ErrBadFEN, fen)
				}
				b.promoted[newSquare(file-1, rank)] = true
			default:
				t := pieceFromLetter(c)
				if t == NoPiece || file > 7 {
					return nil, fmt.Errorf("%w：%q", ErrBadFEN, fen)
				}
				b.cells[newSquare(file, rank)] = cell{t: t, black: c >= 'a' && c <= 'z'}
				file++
			}
		}
		if file != 8 {
			return nil, fmt.Errorf("%w：%q", ErrBadFEN, fen)
		}
	}
	for i := 0; i < len(pocket); i++ {
		t := pieceFromLetter(pocket[i])
		if t == NoPiece || t == King {
			return nil, fmt.Errorf("%w：手中棋子 %q", ErrBadFEN, pocket)
		}
		b.pocket[colorIdx(pocket[i] >= 'a' && pocket[i] <= 'z')][t]++
	}

	switch fields[1] {
	case "w":
	case "b":
		b.black = true
	default:
		return nil, fmt.Errorf("%w：%q", ErrBadFEN, fen)
	}
	if b.king(false) == NoSquare || b.king(true) == NoSquare {
		return nil, fmt.Errorf("%w：缺少王", ErrBadFEN)
	}

	if len(fields) > 2 {
		if err := b.parseCastling(fields[2]); err != nil {
			return nil, err
		}
	}
	if len(fields) > 3 && fields[3] != "-" {
		sq, ok := ParseSquare(fields[3])
		if !ok {
			return nil, fmt.Errorf("%w：%q", ErrBadFEN, fen)
		}
		b.ep = sq
	}
	return b, nil
}

// parseCastling 同时支持 KQkq 与 Shredder 写法（车所在列字母）。
func (b *varBoard) parseCastling(s string) error {
	if s == "-" {
		return nil
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		black := c >= 'a' && c <= 'z'
		up := c
		if black {
			up = c - 'a' + 'A'
		}
		k := b.king(black)
		rank := 0
		if black {
			rank = 7
		}
		if k.Rank() != rank {
			continue
		}
		col := colorIdx(black)
		rook := cell{t: Rook, black: black}
		switch {
		case up == 'K':
			for f := 7; f > k.File(); f-- {
				if b.cells[newSquare(f, rank)] == rook {
					b.rooks[col][0] = f
					break
				}
			}
		case up == 'Q':
			for f := 0; f < k.File(); f++ {
				if b.cells[newSquare(f, rank)] == rook {
					b.rooks[col][1] = f
					break
				}
			}
		case up >= 'A' && up <= 'H':
			f := int(up - 'A')
			if b.cells[newSquare(f, rank)] != rook {
				continue
			}
			if f > k.File() {
				b.rooks[col][0] = f
			} else {
				b.rooks[col][1] = f
			}
		default:
			return fmt.Errorf("%w：易位权 %q", ErrBadFEN, s)
		}
	}
	return nil
}

func (b *varBoard) king(black bool) Square {
	want := cell{t: King, black: black}
	for s := Square(0); s < 64; s++ {
		if b.cells[s] == want {
			return s
		}
	}
	return NoSquare
}

// attacked 判断 s 是否被 byBlack 一方攻击。
func (b *varBoard) attacked(s Square, byBlack bool) bool {
	dir := 1
	if byBlack {
		dir = -1
	}
	for _, df := range []int{-1, 1} {
		if t, ok := offset(s, step{df, -dir}); ok && b.cells[t] == (cell{t: Pawn, black: byBlack}) {
			return true
		}
	}
	for _, st := range knightSteps {
		if t, ok := offset(s, st); ok && b.cells[t] == (cell{t: Knight, black: byBlack}) {
			return true
		}
	}
	for _, st := range kingSteps {
		if t, ok := offset(s, st); ok && b.cells[t] == (cell{t: King, black: byBlack}) {
			return true
		}
	}
	if b.rayHits(s, orthSteps, byBlack, Rook) || b.rayHits(s, diagSteps, byBlack, Bishop) {
		return true
	}
	return false
}

func (b *varBoard) rayHits(s Square, steps []step, byBlack bool, slider PieceType) bool {
	for _, st := range steps {
		t := s
		for {
			var ok bool
			t, ok = offset(t, st)
			if !ok {
				break
			}
			c := b.cells[t]
			if c.empty() {
				continue
			}
			if c.black == byBlack && (c.t == slider || c.t == Queen) {
				return true
			}
			break
		}
	}
	return false
}

func (b *varBoard) pseudo() []vmove {
	var out []vmove
	us := b.black
	for s := Square(0); s < 64; s++ {
		c := b.cells[s]
		if c.empty() || c.black != us {
			continue
		}
		switch c.t {
		case Pawn:
			out = b.pawnMoves(s, out)
		case Knight:
			out = b.leaps(s, knightSteps, out)
		case King:
			out = b.leaps(s, kingSteps, out)
		case Bishop:
			out = b.slides(s, diagSteps, out)
		case Rook:
			out = b.slides(s, orthSteps, out)
		case Queen:
			out = b.slides(s, orthSteps, out)
			out = b.slides(s, diagSteps, out)
		}
	}
	out = b.castles(out)
	out = b.drops(out)
	return out
}

func (b *varBoard) leaps(s Square, steps []step, out []vmove) []vmove {
	for _, st := range steps {
		t, ok := offset(s, st)
		if !ok {
			continue
		}
		if c := b.cells[t]; c.empty() || c.black != b.black {
			out = append(out, vmove{from: s, to: t})
		}
	}
	return out
}

func (b *varBoard) slides(s Square, steps []step, out []vmove) []vmove {
	for _, st := range steps {
		t := s
		for {
			var ok bool
			t, ok = offset(t, st)
			if !ok {
				break
			}
			c := b.cells[t]
			if c.empty() {
				out = append(out, vmove{from: s, to: t})
				continue
			}
			if c.black != b.black {
				out = append(out, vmove{from: s, to: t})
			}
			break
		}
	}
	return out
}

func (b *varBoard) pawnMoves(s Square, out []vmove) []vmove {
	dir, start, last := 1, 1, 7
	if b.black {
		dir, start, last = -1, 6, 0
	}
	add := func(to Square) {
		if to.Rank() == last {
			for _, p := range []PieceType{Queen, Rook, Bishop, Knight} {
				out = append(out, vmove{from: s, to: to, promo: p})
			}
			return
		}
		out = append(out, vmove{from: s, to: to})
	}

	if one, ok := offset(s, step{0, dir}); ok && b.cells[one].empty() {
		add(one)
		if s.Rank() == start {
			if two, ok := offset(one, step{0, dir}); ok && b.cells[two].empty() {
				add(two)
			}
		}
	}
	for _, df := range []int{-1, 1} {
		t, ok := offset(s, step{df, dir})
		if !ok {
			continue
		}
		c := b.cells[t]
		if (!c.empty() && c.black != b.black) || (c.empty() && t == b.ep) {
			add(t)
		}
	}
	return out
}

// castleTargets 返回易位后王与车的目标格。
func castleTargets(side, rank int) (king, rook Square) {
	if side == 0 {
		return newSquare(6, rank), newSquare(5, rank)
	}
	return newSquare(2, rank), newSquare(3, rank)
}

func (b *varBoard) castles(out []vmove) []vmove {
	us := b.black
	k := b.king(us)
	rank := 0
	if us {
		rank = 7
	}
	if k == NoSquare || k.Rank() != rank || b.attacked(k, !us) {
		return out
	}
	col := colorIdx(us)
	for side := 0; side < 2; side++ {
		rf := b.rooks[col][side]
		if rf < 0 {
			continue
		}
		rsq := newSquare(rf, rank)
		if b.cells[rsq] != (cell{t: Rook, black: us}) {
			continue
		}
		kdst, rdst := castleTargets(side, rank)
		if !b.castlePathClear(k, rsq, kdst, rdst) {
			continue
		}

		// 王经过的格子不能被攻击；先把王和车拿掉，避免它们自身遮挡射线。
		nb := *b
		nb.cells[k] = cell{}
		nb.cells[rsq] = cell{}
		safe := true
		lo, hi := minInt(k.File(), kdst.File()), maxInt(k.File(), kdst.File())
		for f := lo; f <= hi; f++ {
			if nb.attacked(newSquare(f, rank), !us) {
				safe = false
				break
			}
		}
		if safe {
			out = append(out, vmove{from: k, to: rsq, castle: side + 1})
		}
	}
	return out
}

func (b *varBoard) castlePathClear(k, rsq, kdst, rdst Square) bool {
	rank := k.Rank()
	check := func(a, c int) bool {
		lo, hi := minInt(a, c), maxInt(a, c)
		for f := lo; f <= hi; f++ {
			s := newSquare(f, rank)
			if s == k || s == rsq {
				continue
			}
			if !b.cells[s].empty() {
				return false
			}
		}
		return true
	}
	return check(k.File(), kdst.File()) && check(rsq.File(), rdst.File())
}

func (b *varBoard) drops(out []vmove) []vmove {
	if b.variant != Crazyhouse {
		return out
	}
	col := colorIdx(b.black)
	for _, t := range []PieceType{Pawn, Knight, Bishop, Rook, Queen} {
		if b.pocket[col][t] == 0 {
			continue
		}
		for s := Square(0); s < 64; s++ {
			if !b.cells[s].empty() {
				continue
			}
			if t == Pawn && (s.Rank() == 0 || s.Rank() == 7) {
				continue
			}
			out = append(out, vmove{from: NoSquare, to: s, drop: t})
		}
	}
	return out
}

func (b *varBoard) play(m vmove) {
	us := b.black
	col := colorIdx(us)
	prevEP := b.ep
	b.ep = NoSquare

	switch {
	case m.drop != NoPiece:
		b.cells[m.to] = cell{t: m.drop, black: us}
		b.promoted[m.to] = false
		b.pocket[col][m.drop]--

	case m.castle != 0:
		king := b.cells[m.from]
		rook := b.cells[m.to]
		b.cells[m.from] = cell{}
		b.cells[m.to] = cell{}
		b.promoted[m.from] = false
		b.promoted[m.to] = false
		kdst, rdst := castleTargets(m.castle-1, m.from.Rank())
		b.cells[kdst] = king
		b.cells[rdst] = rook
		b.rooks[col] = [2]int{-1, -1}

	default:
		mover := b.cells[m.from]
		capSq := m.to
		if mover.t == Pawn && m.to == prevEP && m.from.File() != m.to.File() && b.cells[m.to].empty() {
			capSq = newSquare(m.to.File(), m.from.Rank())
		}
		if captured := b.cells[capSq]; !captured.empty() {
			if b.variant == Crazyhouse {
				t := captured.t
				if b.promoted[capSq] {
					t = Pawn
				}
				b.pocket[col][t]++
			}
			b.cells[capSq] = cell{}
			b.promoted[capSq] = false
			b.loseRight(1-col, capSq)
		}

		wasPromoted := b.promoted[m.from]
		b.cells[m.from] = cell{}
		b.promoted[m.from] = false
		if m.promo != NoPiece {
			mover.t = m.promo
			wasPromoted = true
		}
		b.cells[m.to] = mover
		b.promoted[m.to] = wasPromoted && b.variant == Crazyhouse

		switch mover.t {
		case King:
			b.rooks[col] = [2]int{-1, -1}
		case Rook:
			b.loseRight(col, m.from)
		case Pawn:
			if d := m.to.Rank() - m.from.Rank(); d == 2 || d == -2 {
				b.ep = newSquare(m.from.File(), (m.from.Rank()+m.to.Rank())/2)
			}
		}
	}
	b.black = !us
}

func (b *varBoard) loseRight(col int, s Square) {
	rank := 0
	if col == 1 {
		rank = 7
	}
	if s.Rank() != rank {
		return
	}
	for side := 0; side < 2; side++ {
		if b.rooks[col][side] == s.File() {
			b.rooks[col][side] = -1
		}
	}
}

func (b *varBoard) legal() []vmove {
	var out []vmove
	for _, m := range b.pseudo() {
		nb := *b
		nb.play(m)
		k := nb.king(b.black)
		if k != NoSquare && !nb.attacked(k, !b.black) {
			out = append(out, m)
		}
	}
	return out
}

func (b *varBoard) Apply(m Move) (string, error) {
	legal := b.legal()
	mv, ok := resolve(m, legal)
	if !ok {
		return "", fmt.Errorf("%w：%s", ErrIllegalMove, m.UCI())
	}
	san := b.san(mv, legal)
	b.play(mv)
	if k := b.king(b.black); k != NoSquare && b.attacked(k, !b.black) {
		if len(b.legal()) == 0 {
			san += "#"
		} else {
			san += "+"
		}
	}
	return san, nil
}

// resolve 在合法着法中找到与输入一致的那一步。
// 易位同时接受“王走到车上”和经典的“王横走两格”两种写法。
func resolve(m Move, legal []vmove) (vmove, bool) {
	for _, c := range legal {
		switch {
		case m.IsDrop():
			if c.drop == m.Drop && c.to == m.To {
				return c, true
			}
		case c.castle != 0:
			if m.From != c.from || m.Promo != NoPiece {
				continue
			}
			if m.To == c.to {
				return c, true
			}
			kdst, _ := castleTargets(c.castle-1, c.from.Rank())
			d := m.To.File() - m.From.File()
			if m.To == kdst && (d == 2 || d == -2) {
				return c, true
			}
		default:
			if c.drop == NoPiece && c.from == m.From && c.to == m.To && c.promo == m.Promo {
				return c, true
			}
		}
	}
	return vmove{}, false
}

func (b *varBoard) san(m vmove, legal []vmove) string {
	switch {
	case m.castle == 1:
		return "O-O"
	case m.castle == 2:
		return "O-O-O"
	case m.drop != NoPiece:
		return m.drop.Letter() + "@" + m.to.String()
	}

	mover := b.cells[m.from]
	capture := !b.cells[m.to].empty()
	if mover.t == Pawn {
		s := ""
		if capture || m.from.File() != m.to.File() {
			s = string(rune('a'+m.from.File())) + "x"
		}
		s += m.to.String()
		if m.promo != NoPiece {
			s += "=" + m.promo.Letter()
		}
		return s
	}

	s := mover.t.Letter()
	if mover.t != King {
		s += b.disambiguate(m, mover.t, legal)
	}
	if capture {
		s += "x"
	}
	return s + m.to.String()
}

func (b *varBoard) disambiguate(m vmove, t PieceType, legal []vmove) string {
	var others, sameFile, sameRank bool
	for _, o := range legal {
		if o.drop != NoPiece || o.castle != 0 || o.from == m.from || o.to != m.to {
			continue
		}
		if b.cells[o.from].t != t {
			continue
		}
		others = true
		if o.from.File() == m.from.File() {
			sameFile = true
		}
		if o.from.Rank() == m.from.Rank() {
			sameRank = true
		}
	}
	switch {
	case !others:
		return ""
	case !sameFile:
		return string(rune('a' + m.from.File()))
	case !sameRank:
		return string(rune('1' + m.from.Rank()))
	default:
		return m.from.String()
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
