// Package wsx 封装下载流程使用的 WebSocket 会话：连接、发送文本、接收文本、关闭。
package wsx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"nhooyr.io/websocket"
)

// ErrClosed 表示对端已关闭连接（包括提前关闭）。
var ErrClosed = errors.New("websocket 已关闭")

const readLimit = 4 << 20

var tracer = otel.Tracer("boardsdl/wsx")

// Session 是一条已建立的 WebSocket 连接。Close 可重复调用。
type Session struct {
	conn *websocket.Conn
	url  string

	once sync.Once
}

// Dial 建立连接；hc 用于握手（代理与 TLS 策略随之生效），nil 时使用默认 client。
func Dial(ctx context.Context, url string, header http.Header, hc *http.Client) (*Session, error) {
	ctx, span := tracer.Start(ctx, "wsx.Dial", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.String("ws.url", url))

	opts := &websocket.DialOptions{HTTPHeader: header}
	if hc != nil {
		// 握手阶段的超时由 ctx 控制；websocket 库拒绝带 Timeout 的 client。
		c := *hc
		c.Timeout = 0
		opts.HTTPClient = &c
	}
	conn, resp, err := websocket.Dial(ctx, url, opts)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "dial failed")
		return nil, fmt.Errorf("websocket 连接失败：%w", err)
	}
	conn.SetReadLimit(readLimit)
	return &Session{conn: conn, url: url}, nil
}

func (s *Session) URL() string { return s.url }

// Send 发送一帧文本。
func (s *Session) Send(ctx context.Context, text string) error {
	if err := s.conn.Write(ctx, websocket.MessageText, []byte(text)); err != nil {
		return wrapClosed(err)
	}
	return nil
}

// Receive 阻塞等待下一帧；对端关闭时返回 ErrClosed。
func (s *Session) Receive(ctx context.Context) (string, error) {
	_, data, err := s.conn.Read(ctx)
	if err != nil {
		return "", wrapClosed(err)
	}
	return string(data), nil
}

// Close 以正常状态码关闭连接。
func (s *Session) Close() {
	s.once.Do(func() {
		_ = s.conn.Close(websocket.StatusNormalClosure, "")
	})
}

func wrapClosed(err error) error {
	if websocket.CloseStatus(err) != -1 || errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("%w：%v", ErrClosed, err)
	}
	return err
}
