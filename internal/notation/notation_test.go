package notation

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReconstruct_UCIRoundTrip(t *testing.T) {
	got, err := Reconstruct(Standard, "", Plain("e2e4", "e7e5", "g1f3"), ParseUCI)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if got != "e4 e5 Nf3 " {
		t.Fatalf("期望 %q，实际 %q", "e4 e5 Nf3 ", got)
	}
}

func TestReconstruct_IllegalMoveYieldsNothing(t *testing.T) {
	got, err := Reconstruct(Standard, "", Plain("e2e4", "e7e5", "e1e3", "g8f6"), ParseUCI)
	if got != "" {
		t.Fatalf("失败时不应有部分结果：%q", got)
	}
	var ime *IllegalMoveError
	if !errors.As(err, &ime) {
		t.Fatalf("期望 IllegalMoveError，实际 %v", err)
	}
	if ime.Ply != 3 || ime.Token != "e1e3" {
		t.Fatalf("失败位置不符：%+v", ime)
	}
	if !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("期望可用 errors.Is 识别 ErrIllegalMove")
	}

	_, err = Reconstruct(Standard, "", Plain("e2e4", "zz"), ParseUCI)
	if !errors.Is(err, ErrBadToken) {
		t.Fatalf("期望 ErrBadToken，实际 %v", err)
	}
}

func TestReconstruct_Mate(t *testing.T) {
	moves := Plain("f2f3", "e7e5", "g2g4", "d8h4")
	for _, v := range []Variant{Standard, Shuffle} {
		got, err := Reconstruct(v, "", moves, ParseUCI)
		if err != nil {
			t.Fatalf("variant=%d 不期望错误：%v", v, err)
		}
		if got != "f3 e5 g4 Qh4# " {
			t.Fatalf("variant=%d 实际 %q", v, got)
		}
	}
}

func TestReconstruct_CastlingSpellings(t *testing.T) {
	opening := []string{"e2e4", "e7e5", "g1f3", "b8c6", "f1c4", "g8f6"}
	for _, last := range []string{"e1g1", "e1h1"} {
		for _, v := range []Variant{Standard, Shuffle} {
			got, err := Reconstruct(v, "", Plain(append(append([]string{}, opening...), last)...), ParseUCI)
			if err != nil {
				t.Fatalf("variant=%d %s 不期望错误：%v", v, last, err)
			}
			if !strings.HasSuffix(got, "O-O ") {
				t.Fatalf("variant=%d %s 期望短易位，实际 %q", v, last, got)
			}
		}
	}
}

func TestReconstruct_Chess960Castle(t *testing.T) {
	// 王在 b1，车在 a1 与 g1：后翼易位后王到 c1、车到 d1。
	fen := "rk4rn/pppppppp/8/8/8/8/PPPPPPPP/RK4RN w GAga - 0 1"
	got, err := Reconstruct(Shuffle, fen, Plain("b1a1"), ParseUCI)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if got != "O-O-O " {
		t.Fatalf("期望 O-O-O，实际 %q", got)
	}

	got, err = Reconstruct(Shuffle, fen, Plain("b1g1"), ParseUCI)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if got != "O-O " {
		t.Fatalf("期望 O-O，实际 %q", got)
	}
}

func TestReconstruct_CrazyhouseDrop(t *testing.T) {
	got, err := Reconstruct(Crazyhouse, "", Plain("e2e4", "d7d5", "e4d5", "d8d5", "P@e4", "d5e4"), ParseUCI)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if got != "e4 d5 exd5 Qxd5 P@e4 Qxe4+ " {
		t.Fatalf("实际 %q", got)
	}

	// 手中没有该棋子时落子不合法。
	_, err = Reconstruct(Crazyhouse, "", Plain("e2e4", "N@e5"), ParseUCI)
	require.ErrorIs(t, err, ErrIllegalMove)

	// 标准规则不允许落子。
	_, err = Reconstruct(Standard, "", Plain("P@e4"), ParseUCI)
	require.ErrorIs(t, err, ErrIllegalMove)
}

func TestReconstruct_Clock(t *testing.T) {
	toks := []Token{
		{Raw: "e2e4", ClockMS: 180500, HasClock: true},
		{Raw: "e7e5"},
	}
	got, err := Reconstruct(Standard, "", toks, ParseUCI)
	require.NoError(t, err)
	require.Equal(t, "e4 {[%clk 0:03:00]} e5 ", got)
}

func TestReconstruct_BadFEN(t *testing.T) {
	for _, v := range []Variant{Standard, Shuffle, Crazyhouse} {
		_, err := Reconstruct(v, "not a fen", Plain("e2e4"), ParseUCI)
		if !errors.Is(err, ErrBadFEN) {
			t.Fatalf("variant=%d 期望 ErrBadFEN，实际 %v", v, err)
		}
	}
}

func TestDecodeTCN(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"mC", "e2e4"},
		{"0K", "e7e5"},
		{"gv", "g1f3"},
	}
	for _, c := range cases {
		m, err := DecodeTCN(c.in)
		if err != nil {
			t.Fatalf("%q 不期望错误：%v", c.in, err)
		}
		if m.UCI() != c.want {
			t.Fatalf("%q 期望 %s，实际 %s", c.in, c.want, m.UCI())
		}
	}

	for _, bad := range []string{"", "m", "m\x00", "m" + string(tcnAlphabet[83])} {
		if _, err := DecodeTCN(bad); err == nil {
			t.Fatalf("%q 期望错误", bad)
		}
	}

	pairs, err := SplitTCN("mC0Kgv")
	require.NoError(t, err)
	got, err := Reconstruct(Standard, "", Plain(pairs...), DecodeTCN)
	require.NoError(t, err)
	require.Equal(t, "e4 e5 Nf3 ", got)

	_, err = SplitTCN("mC0")
	require.ErrorIs(t, err, ErrBadToken)
}

func TestDecodeTCN_PromotionAndDrop(t *testing.T) {
	// 从 a7(48) 直进升后：目标码 64 + 0*3 + 1。
	m, err := DecodeTCN(string([]byte{tcnAlphabet[48], tcnAlphabet[65]}))
	require.NoError(t, err)
	require.Equal(t, "a7a8q", m.UCI())

	// 起点码 79+1 表示落马。
	m, err = DecodeTCN(string([]byte{tcnAlphabet[80], tcnAlphabet[28]}))
	require.NoError(t, err)
	require.Equal(t, "N@e4", m.UCI())
}

func TestParseUCI(t *testing.T) {
	m, err := ParseUCI("e7e8q")
	require.NoError(t, err)
	require.Equal(t, Queen, m.Promo)

	m, err = ParseUCI("Q@e4")
	require.NoError(t, err)
	require.True(t, m.IsDrop())

	for _, bad := range []string{"e2", "e2e9", "e7e8k", "K@e4", "x2e4"} {
		if _, err := ParseUCI(bad); !errors.Is(err, ErrBadToken) {
			t.Fatalf("%q 期望 ErrBadToken，实际 %v", bad, err)
		}
	}
}

func TestFormatClock(t *testing.T) {
	cases := map[int64]string{
		0:         "0:00:00",
		-5:        "0:00:00",
		999:       "0:00:00",
		61_000:    "0:01:01",
		3_725_900: "1:02:05",
	}
	for in, want := range cases {
		if got := FormatClock(in); got != want {
			t.Fatalf("%d 期望 %s，实际 %s", in, want, got)
		}
	}
}

func TestIsClassicalStart(t *testing.T) {
	require.True(t, IsClassicalStart(FENStart))
	require.True(t, IsClassicalStart(FENStart960))
	require.True(t, IsClassicalStart("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 3 9"))
	require.False(t, IsClassicalStart("rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1"))
	require.False(t, IsClassicalStart(""))
}

func TestVariantFromTag(t *testing.T) {
	require.Equal(t, Shuffle, VariantFromTag("Chess960"))
	require.Equal(t, Shuffle, VariantFromTag(Chess960))
	require.Equal(t, Crazyhouse, VariantFromTag("crazyhouse"))
	require.Equal(t, Standard, VariantFromTag(""))
}
