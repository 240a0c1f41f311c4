package httpx

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewClient_ProxyDisablesKeepAlive(t *testing.T) {
	c, err := NewClient(Options{ProxyURL: "http://127.0.0.1:8080"})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	tr, ok := c.Transport.(*Transport)
	if !ok {
		t.Fatalf("期望 *Transport，实际 %T", c.Transport)
	}
	if tr.Base.Proxy == nil {
		t.Fatalf("期望启用代理，但 Proxy=nil")
	}
	if !tr.Base.DisableKeepAlives {
		t.Fatalf("期望禁用 keep-alive，但 Base.DisableKeepAlives=false")
	}
	if !tr.DisableKeepAlives {
		t.Fatalf("期望设置 Request.Close=true，但 DisableKeepAlives=false")
	}
}

func TestNewClient_Defaults(t *testing.T) {
	c, err := NewClient(Options{})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	tr := c.Transport.(*Transport)
	if tr.Base.Proxy != nil {
		t.Fatalf("不期望启用代理，但 Proxy!=nil")
	}
	if tr.Base.DisableKeepAlives {
		t.Fatalf("不期望禁用 keep-alive")
	}
	if tr.Base.TLSClientConfig != nil {
		t.Fatalf("默认不应修改 TLS 配置")
	}
	if c.Timeout != defaultTimeout {
		t.Fatalf("期望默认超时 %s，实际 %s", defaultTimeout, c.Timeout)
	}
	if tr.UA == nil || tr.UA.Fake() {
		t.Fatalf("默认应使用 annotator UA")
	}
}

func TestNewClient_InsecureAndTimeout(t *testing.T) {
	c, err := NewClient(Options{InsecureSkipVerify: true, Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	tr := c.Transport.(*Transport)
	if tr.Base.TLSClientConfig == nil || !tr.Base.TLSClientConfig.InsecureSkipVerify {
		t.Fatalf("期望跳过证书校验")
	}
	if c.Timeout != 5*time.Second {
		t.Fatalf("期望 5s，实际 %s", c.Timeout)
	}
}

func TestNewClient_InvalidProxyURL(t *testing.T) {
	for _, p := range []string{"http://[::1", "127.0.0.1:8080"} {
		if _, err := NewClient(Options{ProxyURL: p}); err == nil {
			t.Fatalf("%q 期望错误，但得到 nil", p)
		}
	}
}

func TestTransport_FillsUserAgent(t *testing.T) {
	var got atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.Store(r.Header.Get("User-Agent"))
	}))
	defer srv.Close()

	c, err := NewClient(Options{})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	resp, err := c.Get(srv.URL)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	resp.Body.Close()
	if got.Load().(string) != AnnotatorUA {
		t.Fatalf("期望 annotator UA，实际 %q", got.Load())
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	req.Header.Set("User-Agent", "custom")
	resp, err = c.Do(req)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	resp.Body.Close()
	if got.Load().(string) != "custom" {
		t.Fatalf("显式 UA 不应被覆盖，实际 %q", got.Load())
	}
}

func TestUserAgent_FakeReuseAndRenew(t *testing.T) {
	ua := NewUserAgent(true)
	a := ua.Get(false)
	if a == AnnotatorUA || !strings.Contains(a, "rv:") {
		t.Fatalf("fake UA 格式不符：%q", a)
	}
	if b := ua.Get(false); b != a {
		t.Fatalf("未要求 renew 时应复用：%q != %q", b, a)
	}
	// renew 后内容大概率不同，但至少仍是合法格式。
	if c := ua.Get(true); !strings.Contains(c, "rv:") {
		t.Fatalf("renew 后格式不符：%q", c)
	}

	if NewUserAgent(false).Get(true) != AnnotatorUA {
		t.Fatalf("annotator 模式应固定返回 AnnotatorUA")
	}
	var nilUA *UserAgent
	if nilUA.Get(false) != AnnotatorUA {
		t.Fatalf("nil 生成器应回退 AnnotatorUA")
	}
}
