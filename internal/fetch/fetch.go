// Package fetch 是下载流程的检索客户端：GET、带头 GET、POST 表单、JSON XHR 与 WebSocket。
//
// 它不理解棋谱语义，只负责把站点响应变成解码后的文本或一个失败信号。
package fetch

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/John-Robertt/boardsdl/internal/infra/httpx"
	"github.com/John-Robertt/boardsdl/internal/infra/wsx"
)

// MaxListDownloads 是 DownloadList 在触发上限前允许的下载次数（之后再下载一个即停止）。
const MaxListDownloads = 10

var tracer = otel.Tracer("boardsdl/fetch")

// Options 描述客户端的行为开关。
type Options struct {
	// HTTPClient 为空时使用 httpx.NewClient 的默认策略。
	HTTPClient *http.Client
	// UA 是 WithUA 请求使用的生成器；为空时等同 annotator 模式。
	UA *httpx.UserAgent
	// AllowExtra 允许返回“计分且未结束”的对局。
	AllowExtra bool
	// AllowOctetStream 允许通用下载接受 application/octet-stream。
	AllowOctetStream bool
	Logger           *slog.Logger
}

// Client 是 provider 唯一可用的网络入口。并发安全。
type Client struct {
	hc   *http.Client
	rc   *resty.Client
	ua   *httpx.UserAgent
	log  *slog.Logger
	opts Options
}

func New(opts Options) (*Client, error) {
	hc := opts.HTTPClient
	if hc == nil {
		var err error
		hc, err = httpx.NewClient(httpx.Options{UA: opts.UA})
		if err != nil {
			return nil, err
		}
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		hc:   hc,
		rc:   resty.NewWithClient(hc),
		ua:   opts.UA,
		log:  log,
		opts: opts,
	}, nil
}

func (c *Client) AllowExtra() bool       { return c.opts.AllowExtra }
func (c *Client) AllowOctetStream() bool { return c.opts.AllowOctetStream }

// UserAgent 返回 WithUA 请求使用的 UA。
func (c *Client) UserAgent() string { return c.ua.Get(false) }

// Page 是带 MIME 类型的下载结果。
type Page struct {
	URL  string
	MIME string
	Text string
}

// Request 描述一次 HTTP 调用。
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	// WithUA 为 true 时发送配置的 UA（fake 模式下是伪装的浏览器 UA）。
	WithUA bool
	Form   map[string]string
	JSON   any
}

// Do 执行请求并返回解码后的页面。非 2xx 返回 *HTTPStatusError。
func (c *Client) Do(ctx context.Context, r Request) (Page, error) {
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}
	ctx, span := tracer.Start(ctx, "fetch "+method, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.String("http.url", r.URL))

	req := c.rc.R().SetContext(ctx)
	ua := httpx.AnnotatorUA
	if r.WithUA {
		ua = c.ua.Get(false)
	}
	req.SetHeader("User-Agent", ua)
	if len(r.Headers) > 0 {
		req.SetHeaders(r.Headers)
	}
	switch {
	case r.JSON != nil:
		req.SetHeader("Content-Type", "application/json").SetBody(r.JSON)
	case r.Form != nil:
		req.SetFormData(r.Form)
	}

	c.log.DebugContext(ctx, "下载", "method", method, "url", r.URL)
	res, err := req.Execute(method, r.URL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		c.log.DebugContext(ctx, "下载失败", "url", r.URL, "err", err)
		return Page{}, err
	}
	span.SetAttributes(attribute.Int("http.status_code", res.StatusCode()))
	if res.StatusCode() < 200 || res.StatusCode() > 299 {
		herr := &HTTPStatusError{URL: r.URL, StatusCode: res.StatusCode(), Location: res.Header().Get("Location")}
		span.SetStatus(codes.Error, herr.Error())
		c.log.DebugContext(ctx, "下载失败", "url", r.URL, "err", herr)
		return Page{}, herr
	}

	ct := res.Header().Get("Content-Type")
	text, err := decode(res.Body(), ct)
	if err != nil {
		span.RecordError(err)
		return Page{}, err
	}
	return Page{URL: r.URL, MIME: mediaType(ct), Text: text}, nil
}

// Get 下载 URL（不伪装 UA）。
func (c *Client) Get(ctx context.Context, u string) (string, error) {
	p, err := c.Do(ctx, Request{URL: u})
	return p.Text, err
}

// GetUA 下载 URL，并发送配置的 UA；部分站点据此区分机器人。
func (c *Client) GetUA(ctx context.Context, u string) (string, error) {
	p, err := c.Do(ctx, Request{URL: u, WithUA: true})
	return p.Text, err
}

// GetHeaders 以自定义请求头下载 URL。
func (c *Client) GetHeaders(ctx context.Context, u string, headers map[string]string) (string, error) {
	p, err := c.Do(ctx, Request{URL: u, Headers: headers})
	return p.Text, err
}

// PostForm 以表单提交调用接口；form 可以为空表。
func (c *Client) PostForm(ctx context.Context, u string, form map[string]string, withUA bool) (string, error) {
	if form == nil {
		form = map[string]string{}
	}
	p, err := c.Do(ctx, Request{Method: http.MethodPost, URL: u, Form: form, WithUA: withUA})
	return p.Text, err
}

// PostJSON 以 JSON 请求体调用 XHR 接口。
func (c *Client) PostJSON(ctx context.Context, u string, body any, withUA bool) (string, error) {
	p, err := c.Do(ctx, Request{
		Method:  http.MethodPost,
		URL:     u,
		JSON:    body,
		WithUA:  withUA,
		Headers: map[string]string{"X-Requested-With": "XMLHttpRequest"},
	})
	return p.Text, err
}

// DownloadList 依次下载 links 并以空行拼接成功的结果。
//
// 失败的下载静默丢弃；下载到第 MaxListDownloads+1 个后停止。全部失败时返回 ErrEmpty。
func (c *Client) DownloadList(ctx context.Context, links []string, withUA bool) (string, error) {
	var sb strings.Builder
	for i, link := range links {
		if ctx.Err() != nil {
			break
		}
		p, err := c.Do(ctx, Request{URL: link, WithUA: withUA})
		if err == nil && p.Text != "" {
			sb.WriteString(p.Text)
			sb.WriteString("\n\n")
		}
		if i >= MaxListDownloads {
			c.log.DebugContext(ctx, "批量下载达到上限", "total", len(links))
			break
		}
	}
	if sb.Len() == 0 {
		return "", ErrEmpty
	}
	return sb.String(), nil
}

// Dial 打开 WebSocket 会话；握手共用 HTTP client 的代理与 TLS 策略。
func (c *Client) Dial(ctx context.Context, u string, header http.Header) (*wsx.Session, error) {
	if header == nil {
		header = http.Header{}
	}
	if header.Get("User-Agent") == "" {
		header.Set("User-Agent", c.ua.Get(false))
	}
	c.log.DebugContext(ctx, "websocket 连接", "url", u)
	return wsx.Dial(ctx, u, header, c.hc)
}

// ExpandLinks 把相对链接补全为绝对链接，并按首次出现的顺序去重。
func ExpandLinks(links []string, base string) []string {
	b, err := url.Parse(base)
	if err != nil {
		return nil
	}
	seen := make(map[string]bool, len(links))
	out := make([]string, 0, len(links))
	for _, l := range links {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		ref, err := url.Parse(l)
		if err != nil {
			continue
		}
		abs := b.ResolveReference(ref).String()
		if seen[abs] {
			continue
		}
		seen[abs] = true
		out = append(out, abs)
	}
	return out
}
