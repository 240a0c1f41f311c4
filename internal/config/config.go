// Package config 读取 boards.json5（以及可选的 boards.local.json5 覆盖层），
// 并与命令行参数合并为最终配置。
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

const (
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法。
	ErrCodeInvalid = "config_invalid"
)

const (
	// FileName 是配置文件名；覆盖层为 boards.local.json5。
	FileName      = "boards.json5"
	LocalFileName = "boards.local.json5"

	DefaultTimeout = 30 * time.Second
	minTimeout     = 1 * time.Second
	maxTimeout     = 300 * time.Second
)

// UA 模式。
const (
	UAAnnotator = "annotator"
	UAFake      = "fake"
)

// CLIArgs 是命令行可以覆盖的配置项，并保留“是否显式指定”的信息。
type CLIArgs struct {
	// Dir 为空时使用 cwd。
	Dir string

	UnverifiedSSL    bool
	UnverifiedSSLSet bool

	LogLevel    string
	LogLevelSet bool
}

// FileConfig 对应 boards.json5 的解析结构。
//
// 布尔项使用指针，让覆盖层可以把 true 改回 false。
type FileConfig struct {
	UserAgent         string       `json:"user_agent"`
	TimeoutSeconds    int          `json:"timeout_seconds"`
	Proxy             *ProxyConfig `json:"proxy"`
	UnverifiedSSL     *bool        `json:"unverified_ssl"`
	DisabledProviders []string     `json:"disabled_providers"`
	AllowExtra        *bool        `json:"allow_extra"`
	AllowOctetStream  *bool        `json:"allow_octet_stream"`
	LogLevel          string       `json:"log_level"`
}

type ProxyConfig struct {
	URL string `json:"url"`
}

// EffectiveConfig 是合并并规范化后的最终配置。
type EffectiveConfig struct {
	Dir string
	// Files 是实际读取到的配置文件（按合并顺序）。
	Files []string

	FakeUA            bool
	Timeout           time.Duration
	ProxyURL          string
	UnverifiedSSL     bool
	DisabledProviders []string
	AllowExtra        bool
	AllowOctetStream  bool
	LogLevel          slog.Level
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s：配置文件 %q 无效：%v", e.Code, e.Path, e.Err)
	}
	return fmt.Sprintf("%s：配置文件 %q 无效", e.Code, e.Path)
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// LoadEffective 读取 <dir>/boards.json5 与 <dir>/boards.local.json5（均可选），
// 然后与 CLI 参数合并。
//
// 覆盖优先级：CLI 显式参数 > boards.local.json5 > boards.json5 > 默认值。
func LoadEffective(cwd string, cli CLIArgs) (EffectiveConfig, error) {
	dir := strings.TrimSpace(cli.Dir)
	if dir == "" {
		dir = cwd
	} else if !filepath.IsAbs(dir) {
		dir = filepath.Join(cwd, dir)
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cli.Dir, Err: err}
	}

	var (
		fc    FileConfig
		files []string
	)
	for _, name := range []string{FileName, LocalFileName} {
		p := filepath.Join(dir, name)
		layer, exists, err := readFileConfig(p)
		if err != nil {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: p, Err: err}
		}
		if !exists {
			continue
		}
		if err := mergo.Merge(&fc, layer, mergo.WithOverride, mergo.WithoutDereference); err != nil {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: p, Err: err}
		}
		files = append(files, p)
	}

	cfgPath := filepath.Join(dir, FileName)
	if len(files) > 0 {
		cfgPath = files[len(files)-1]
	}
	eff, err := merge(cli, fc)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}
	eff.Dir = dir
	eff.Files = files
	return eff, nil
}

func merge(cli CLIArgs, fc FileConfig) (EffectiveConfig, error) {
	eff := EffectiveConfig{
		UnverifiedSSL:    deref(fc.UnverifiedSSL),
		AllowExtra:       deref(fc.AllowExtra),
		AllowOctetStream: deref(fc.AllowOctetStream),
	}

	switch strings.ToLower(strings.TrimSpace(fc.UserAgent)) {
	case "", UAAnnotator:
	case UAFake:
		eff.FakeUA = true
	default:
		return EffectiveConfig{}, fmt.Errorf("user_agent 只能是 %s 或 %s，实际是 %q", UAAnnotator, UAFake, fc.UserAgent)
	}

	// 超出范围截断到 [1, 300] 秒。
	eff.Timeout = DefaultTimeout
	if fc.TimeoutSeconds != 0 {
		eff.Timeout = time.Duration(fc.TimeoutSeconds) * time.Second
	}
	if eff.Timeout < minTimeout {
		eff.Timeout = minTimeout
	}
	if eff.Timeout > maxTimeout {
		eff.Timeout = maxTimeout
	}

	if fc.Proxy != nil {
		eff.ProxyURL = strings.TrimSpace(fc.Proxy.URL)
	}
	if eff.ProxyURL != "" {
		u, err := url.Parse(eff.ProxyURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return EffectiveConfig{}, fmt.Errorf("proxy.url 无效：%q", eff.ProxyURL)
		}
	}

	for _, n := range fc.DisabledProviders {
		if n = strings.TrimSpace(n); n != "" {
			eff.DisabledProviders = append(eff.DisabledProviders, n)
		}
	}

	level := fc.LogLevel
	if cli.LogLevelSet {
		level = cli.LogLevel
	}
	lv, err := ParseLevel(level)
	if err != nil {
		return EffectiveConfig{}, err
	}
	eff.LogLevel = lv

	if cli.UnverifiedSSLSet {
		eff.UnverifiedSSL = cli.UnverifiedSSL
	}
	return eff, nil
}

// ParseLevel 解析 debug/info/warn/error；空串为 info。
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("log_level 只能是 debug、info、warn 或 error，实际是 %q", s)
	}
}

func deref(b *bool) bool { return b != nil && *b }

// readFileConfig 读取并解析 JSON5 配置文件。
// 返回值 exists 表示该文件是否存在（不存在不算错误）。
func readFileConfig(path string) (fc FileConfig, exists bool, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, false, nil
		}
		return FileConfig{}, false, err
	}
	if len(strings.TrimSpace(string(b))) == 0 {
		return FileConfig{}, true, nil
	}
	if err := json5.Unmarshal(b, &fc); err != nil {
		return FileConfig{}, true, err
	}
	return fc, true, nil
}
