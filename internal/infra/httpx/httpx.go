package httpx

import (
	"crypto/tls"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultTimeout  = 30 * time.Second
	defaultRetryMax = 2
)

// Transport 把“UA + 代理 + keep-alive 策略 + 有界重试”固化为统一策略。
//
// provider 只负责“定位数据 + 解析”，不关心网络策略细节。
type Transport struct {
	Base *http.Transport

	// UA 为未显式设置 User-Agent 的请求补上默认值；nil 时不补。
	UA *UserAgent

	// RetryMax 表示最大重试次数（不含首次尝试）。例如 2 表示最多 3 次尝试。
	RetryMax int

	// DisableKeepAlives 决定是否对 Request 设置 Close=true。
	// 真正禁用 keep-alive 依赖 Base.DisableKeepAlives。
	DisableKeepAlives bool
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}
	if t.Base == nil {
		return nil, errors.New("nil base transport")
	}

	// 只对“可重放”的请求做重试：GET/HEAD 且无 body。
	canRetry := (req.Method == http.MethodGet || req.Method == http.MethodHead) && (req.Body == nil || req.Body == http.NoBody)
	max := t.RetryMax
	if max < 0 {
		max = 0
	}
	if !canRetry {
		max = 0
	}

	var lastErr error
	for attempt := 0; attempt <= max; attempt++ {
		r := req.Clone(req.Context())
		if r.Header.Get("User-Agent") == "" && t.UA != nil {
			r.Header.Set("User-Agent", t.UA.Get(false))
		}
		if t.DisableKeepAlives {
			r.Close = true
		}

		resp, err := t.Base.RoundTrip(r)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if req.Context().Err() != nil {
			// ctx 已取消：不再重试，直接返回最后错误。
			return nil, lastErr
		}
	}
	return nil, lastErr
}

// Options 描述一个下载用 HTTP client 的网络策略。
type Options struct {
	// ProxyURL 非空时所有请求走代理，且禁用 keep-alive（每请求新连接）。
	ProxyURL string
	// InsecureSkipVerify 跳过 TLS 证书校验（对应 --unverified-ssl）。
	InsecureSkipVerify bool
	// Timeout 是单个请求的总超时；<=0 时使用默认值。
	Timeout time.Duration
	// UA 为空时使用 annotator 模式的生成器。
	UA *UserAgent
}

// NewClient 构造下载与 WebSocket 握手共用的 HTTP client。
func NewClient(opts Options) (*http.Client, error) {
	base := &http.Transport{
		Proxy:                 nil,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 15 * time.Second,
	}
	if opts.InsecureSkipVerify {
		base.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	disableKeepAlives := false
	if p := strings.TrimSpace(opts.ProxyURL); p != "" {
		u, err := url.Parse(p)
		if err != nil {
			return nil, err
		}
		if u.Scheme == "" || u.Host == "" {
			return nil, errors.New("proxy.url 缺少 scheme 或 host")
		}
		base.Proxy = http.ProxyURL(u)
		base.DisableKeepAlives = true
		disableKeepAlives = true
	}

	ua := opts.UA
	if ua == nil {
		ua = NewUserAgent(false)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{
		Transport: &Transport{
			Base:              base,
			UA:                ua,
			RetryMax:          defaultRetryMax,
			DisableKeepAlives: disableKeepAlives,
		},
		Timeout: timeout,
	}, nil
}
