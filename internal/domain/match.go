package domain

// URLType 区分同一 provider 下的不同记录类型。
type URLType string

const (
	TypeGame     URLType = "game"
	TypePuzzle   URLType = "puzzle"
	TypeStudy    URLType = "study"
	TypeEvent    URLType = "event"
	TypePosition URLType = "position"
)

// Match 是 Identify 成功后的值对象，作为参数传给 Retrieve。
// provider 本身不保存任何请求级状态。
type Match struct {
	ID   string
	Type URLType

	// URL 是规整后的输入 URL。
	URL string

	// Params 存放 provider 私有的附加信息（例如 lichess 的顶级域名）。
	Params map[string]string
}

// Param 读取附加参数；不存在时返回 def。
func (m Match) Param(key, def string) string {
	if v, ok := m.Params[key]; ok && v != "" {
		return v
	}
	return def
}

// TestLink 是 provider 自带的回归样例。
type TestLink struct {
	URL    string
	Expect bool
}
