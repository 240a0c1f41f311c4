package gokgs

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIdentify(t *testing.T) {
	for in, want := range map[string]string{
		"http://files.gokgs.com/games/2020/3/23/patrickb-yasusaka.sgf":       "http://files.gokgs.com/games/2020/3/23/patrickb-yasusaka.sgf",
		"https://FILES.gokgs.com/games/2019/10/20/mutaku-hellsflame.sgf?x=1": "https://FILES.gokgs.com/games/2019/10/20/mutaku-hellsflame.sgf",
		"http://files.gokgs.com/games/2020/3/patrickb.sgf":                   "",
		"http://files.gokgs.com/games/2020/3/23/patrickb-yasusaka.txt":       "",
		"http://www.gokgs.com": "",
	} {
		u, err := url.Parse(in)
		require.NoError(t, err)
		m, ok := Provider{}.Identify(u)
		if ok != (want != "") || m.ID != want {
			t.Fatalf("%s：期望 %q，实际 %+v", in, want, m)
		}
	}
}
