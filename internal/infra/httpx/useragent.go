package httpx

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// AnnotatorUA 是 annotator 模式下对站点公开的身份。
const AnnotatorUA = "boardsdl/1.0 (+https://github.com/John-Robertt/boardsdl)"

var (
	uaEngines  = []string{"Mozilla/3.0", "Mozilla/4.0", "Mozilla/5.0", "Opera/4.0", "Opera/5.0"}
	uaSystems  = []string{"compatible", "Linux", "Ubuntu", "SunOS", "Macintosh", "Windows", "Windows 98", "Windows NT 5.0", "Windows NT 5.1", "Windows NT 5.2", "Windows NT 6.0", "Windows NT 6.1", "Windows NT 6.2", "Windows NT 6.3", "Windows NT 10.0", "X11"}
	uaArchs    = []string{"U", "Linux i686", "Intel Mac OS X"}
	uaLangs    = []string{"ar", "bg", "cs", "da", "de", "el", "en", "es", "et", "fa", "fi", "fr", "he", "hi", "hr", "hu", "id", "it", "ja", "ko", "lt", "lv", "nb", "nl", "pl", "pt", "ro", "ru", "sk", "sl", "sr", "sv", "th", "tr", "uk", "vi", "zh"}
	uaProducts = []string{"Gecko", "Firefox", "Chrome"}
)

// UserAgent 生成请求使用的 UA。
//
// annotator 模式固定返回 AnnotatorUA；fake 模式随机拼装一个浏览器 UA，
// 并在未要求 renew 时复用上一次的结果。
type UserAgent struct {
	fake bool

	mu   sync.Mutex
	rnd  *rand.Rand
	last string
}

func NewUserAgent(fake bool) *UserAgent {
	return &UserAgent{
		fake: fake,
		rnd:  rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (u *UserAgent) Fake() bool { return u != nil && u.fake }

// Get 返回当前 UA；renew=true 时在 fake 模式下重新生成。
func (u *UserAgent) Get(renew bool) string {
	if u == nil || !u.fake {
		return AnnotatorUA
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	if !renew && u.last != "" {
		return u.last
	}
	pick := func(xs []string) string { return xs[u.rnd.Intn(len(xs))] }
	rv := fmt.Sprintf("rv:%d.%d.%d.%d", 1+u.rnd.Intn(2), u.rnd.Intn(10), u.rnd.Intn(10), u.rnd.Intn(10))
	u.last = fmt.Sprintf("%s (%s; %s; %s; %s) %s/%d.0",
		pick(uaEngines), pick(uaSystems), pick(uaArchs), pick(uaLangs), rv, pick(uaProducts), 32+u.rnd.Intn(54))
	return u.last
}
