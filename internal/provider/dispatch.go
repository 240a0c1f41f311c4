package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/John-Robertt/boardsdl/internal/domain"
	"github.com/John-Robertt/boardsdl/internal/fetch"
	"github.com/John-Robertt/boardsdl/internal/pgn"
	"github.com/John-Robertt/boardsdl/internal/shorthand"
)

// DefaultTimeout 是单次检索的默认超时。
const DefaultTimeout = 30 * time.Second

var tracer = otel.Tracer("boardsdl/provider")

// Options 控制调度行为。
type Options struct {
	// Disabled 是按名称（大小写不敏感）禁用的 provider。
	Disabled []string
	// Timeout 是单次 Retrieve 的超时；<=0 时使用 DefaultTimeout。
	Timeout time.Duration
	Logger  *slog.Logger
}

// Dispatcher 按注册顺序把 URL 分派给第一个认领它的 provider。
type Dispatcher struct {
	reg      Registry
	client   *fetch.Client
	disabled map[string]bool
	timeout  time.Duration
	log      *slog.Logger
}

func NewDispatcher(reg Registry, c *fetch.Client, opts Options) *Dispatcher {
	disabled := make(map[string]bool, len(opts.Disabled))
	for _, n := range opts.Disabled {
		if k := Key(n); k != "" {
			disabled[k] = true
		}
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{reg: reg, client: c, disabled: disabled, timeout: timeout, log: log}
}

// Active 返回未被禁用的 provider（保持优先级顺序）。
func (d *Dispatcher) Active() []Provider {
	out := make([]Provider, 0, d.reg.Len())
	for _, p := range d.reg.All() {
		if d.active(p) {
			out = append(out, p)
		}
	}
	return out
}

func (d *Dispatcher) active(p Provider) bool {
	return Enabled(p) && !d.disabled[Key(p.Identity().Name)]
}

// Result 是一次成功调度的结果。
type Result struct {
	Provider domain.Identity
	URL      string
	Text     string
	Attempts []Attempt
}

// Resolve 把 URL（或短 ID）解析为清洗后的棋谱文本。
//
// 任何失败都返回包装了 ErrNoGame 的错误；第一个认领 URL 的 provider 决定最终结果，不会回退到后续 provider。
func (d *Dispatcher) Resolve(ctx context.Context, raw string) (res Result, err error) {
	ctx, span := tracer.Start(ctx, "provider.Resolve")
	defer span.End()
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "no game found")
		}
	}()

	expanded := shorthand.Expand(raw)
	if expanded == "" {
		return Result{}, fmt.Errorf("%w：输入为空", ErrNoGame)
	}
	u, err := parseURL(expanded)
	if err != nil {
		return Result{}, fmt.Errorf("%w：%w", ErrNoGame, err)
	}
	span.SetAttributes(attribute.String("boardsdl.url", u.String()))
	d.log.DebugContext(ctx, "待解析的 URL", "url", u.String())

	for _, p := range d.reg.All() {
		if !d.active(p) {
			continue
		}
		res, matched, err := d.run(ctx, p, u)
		if !matched {
			continue
		}
		span.SetAttributes(attribute.String("boardsdl.provider", p.Identity().Name))
		return res, err
	}
	return Result{}, fmt.Errorf("%w：%w", ErrNoGame, ErrNoMatch)
}

// run 在单个 provider 上执行 identify → retrieve → sanitize。matched=false 表示未认领。
func (d *Dispatcher) run(ctx context.Context, p Provider, u *url.URL) (res Result, matched bool, err error) {
	id := p.Identity()
	name := Key(id.Name)
	res = Result{Provider: id, URL: u.String()}

	fail := func(stage string, cause error) (Result, bool, error) {
		res.Attempts = append(res.Attempts, Attempt{Provider: name, Stage: stage, Err: cause})
		d.log.DebugContext(ctx, "provider 失败", "provider", name, "stage", stage, "err", cause)
		return res, true, fmt.Errorf("%w：%w", ErrNoGame, &Error{Provider: name, Stage: stage, Err: cause})
	}

	m, ok, perr := safeIdentify(p, cloneURL(u))
	if perr != nil {
		d.log.ErrorContext(ctx, "provider panic", "provider", name, "stage", StageIdentify, "err", perr)
		return fail(StageIdentify, perr)
	}
	if !ok {
		return res, false, nil
	}
	if m.URL == "" {
		m.URL = u.String()
	}
	res.URL = m.URL
	res.Attempts = append(res.Attempts, Attempt{Provider: name, Stage: StageIdentify})
	d.log.DebugContext(ctx, "provider 认领", "provider", name, "id", m.ID, "type", m.Type)

	rctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	started := time.Now()
	text, rerr := safeRetrieve(rctx, p, m, d.client)
	if rerr != nil {
		if errors.Is(rctx.Err(), context.DeadlineExceeded) && !errors.Is(rerr, context.DeadlineExceeded) {
			rerr = fmt.Errorf("%w（%v）", rerr, context.DeadlineExceeded)
		}
		return fail(StageRetrieve, rerr)
	}
	d.log.DebugContext(ctx, "检索完成", "provider", name, "elapsed", time.Since(started))

	out, serr := pgn.Sanitize(text, id.Family, !id.RawFormat)
	if serr != nil {
		return fail(StageSanitize, serr)
	}
	res.Text = out
	res.Attempts = append(res.Attempts, Attempt{Provider: name, Stage: StageOK})
	return res, true, nil
}

func parseURL(s string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("URL 无法解析：%w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("URL 缺少 scheme 或 host：%q", s)
	}
	return u, nil
}

func cloneURL(u *url.URL) *url.URL {
	c := *u
	if u.User != nil {
		user := *u.User
		c.User = &user
	}
	return &c
}

func safeIdentify(p Provider, u *url.URL) (m domain.Match, ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	m, ok = p.Identify(u)
	return m, ok, nil
}

func safeRetrieve(ctx context.Context, p Provider, m domain.Match, c *fetch.Client) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return p.Retrieve(ctx, m, c)
}
