// Package pychess 通过 pychess.org 的 WebSocket 接口读取变体对局的 PGN。
package pychess

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/John-Robertt/boardsdl/internal/domain"
	"github.com/John-Robertt/boardsdl/internal/fetch"
	"github.com/John-Robertt/boardsdl/internal/jsonx"
	"github.com/John-Robertt/boardsdl/internal/provider"
)

var urlRE = regexp.MustCompile(`(?i)^https?://(www\.)?pychess(-variants\.herokuapp\.com|\.org)/([a-z0-9]+)[/?#]?`)

const (
	defaultSocket = "wss://www.pychess.org/wsr"
	origin        = "https://www.pychess.org"
	// maxFrames 是等待目标对局时最多读取的帧数。
	maxFrames = 5
)

type Provider struct {
	// SocketURL 覆盖 wss://www.pychess.org/wsr，主要用于测试。
	SocketURL string
}

func (Provider) Identity() domain.Identity {
	return domain.Identity{Name: "Pychess.org", Family: domain.Chess, Strategy: domain.WebSocket}
}

func (Provider) Identify(u *url.URL) (domain.Match, bool) {
	s := u.String()
	if m := urlRE.FindStringSubmatch(s); m != nil && len(m[3]) == 8 {
		return domain.Match{ID: m[3], Type: domain.TypeGame, URL: s}, true
	}
	return domain.Match{}, false
}

type boardRequest struct {
	Type   string `json:"type"`
	GameID string `json:"gameId"`
}

func (p Provider) Retrieve(ctx context.Context, m domain.Match, c *fetch.Client) (string, error) {
	socket := strings.TrimSpace(p.SocketURL)
	if socket == "" {
		socket = defaultSocket
	}
	h := http.Header{}
	h.Set("Origin", origin)
	s, err := c.Dial(ctx, socket, h)
	if err != nil {
		return "", err
	}
	defer s.Close()

	req, err := json.Marshal(boardRequest{Type: "board", GameID: m.ID})
	if err != nil {
		return "", err
	}
	if err := s.Send(ctx, string(req)); err != nil {
		return "", err
	}
	for i := 0; i < maxFrames; i++ {
		frame, err := s.Receive(ctx)
		if err != nil {
			return "", err
		}
		doc, ok := jsonx.Parse(frame)
		if !ok || doc.Field("type") != "board" || doc.Field("gameId") != m.ID {
			continue
		}
		text := doc.Field("pgn")
		if text == "" {
			return "", provider.Parsef("对局没有 PGN")
		}
		return text, nil
	}
	return "", provider.Parsef("%d 帧内未收到对局", maxFrames)
}

func (Provider) TestLinks() []domain.TestLink {
	return []domain.TestLink{
		{URL: "http://pychess.org/DGN5Ps2k#tag", Expect: true},
		{URL: "http://pychess-variants.herokuapp.com/uWbgRNfw", Expect: true},
		{URL: "http://PYCHESS.org/4XTiOuKB", Expect: true},
		{URL: "http://pychess.ORG/b8aZwvoJ", Expect: true},
		{URL: "https://pychess.org/drtDbEhd#tag", Expect: false},
		{URL: "https://pychess.ORG/tALxtipo", Expect: true},
		{URL: "https://pychess.org/2CKjayxv?param", Expect: true},
		{URL: "https://PYCHESS.ORG/4x0kQ8kY", Expect: true},
		{URL: "https://pychess.org/7cqV5j2N", Expect: true},
		{URL: "http://pychess.org", Expect: false},
	}
}
