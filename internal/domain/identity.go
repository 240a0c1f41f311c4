package domain

// Family 是棋类家族，决定输出格式（PGN/SGF）与 sanitize 规则。
type Family int

const (
	Chess Family = iota
	Draughts
	Go
	Mill
)

func (f Family) String() string {
	switch f {
	case Chess:
		return "Chess"
	case Draughts:
		return "Draughts"
	case Go:
		return "Go"
	case Mill:
		return "Mill"
	default:
		return "Unknown"
	}
}

// Strategy 是 provider 获取数据的方式。
type Strategy int

const (
	DownloadLink Strategy = iota
	HTMLParsing
	API
	WebSocket
	Misc
)

func (s Strategy) String() string {
	switch s {
	case DownloadLink:
		return "Download link"
	case HTMLParsing:
		return "HTML parsing"
	case API:
		return "Application programming interface"
	case WebSocket:
		return "Websockets"
	case Misc:
		return "Various techniques"
	default:
		return "Unknown"
	}
}

// Suspending 表示该策略在等待网络消息时会挂起（WebSocket 会话）。
func (s Strategy) Suspending() bool { return s == WebSocket }

// Identity 是 provider 的静态描述。
type Identity struct {
	Name     string
	Family   Family
	Strategy Strategy

	// RawFormat=true 时只做空白规整，不校验首字符（例如五子棋的原生格式）。
	RawFormat bool
}

// Describe 返回 "<Family> - <Name>"，用于 show 命令排序与展示。
func (id Identity) Describe() string {
	return id.Family.String() + " - " + id.Name
}
