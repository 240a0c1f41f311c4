package provider

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var (
	fenRE       = regexp.MustCompile(`(?i)^[kqbnrp1-8/]+\s[wb]\s[kq-]+\s[a-h-][1-8]?(\s[0-9]+)?(\s[0-9]+)?$`)
	htmlTagRE   = regexp.MustCompile(`(?i)</?[^>]+>`)
	spaceRunsRE = regexp.MustCompile(`\s+`)
)

// HostIs 判断 URL 的主机是否为 host 或 www.host（大小写不敏感；不接受其它子域名）。
func HostIs(u *url.URL, host string) bool {
	if u == nil {
		return false
	}
	h := strings.ToLower(u.Host)
	host = strings.ToLower(host)
	return h == host || h == "www."+host
}

// HostUnder 判断 URL 的主机是否为 domain 或其任意子域名（大小写不敏感）。
func HostUnder(u *url.URL, domain string) bool {
	if u == nil {
		return false
	}
	h := strings.ToLower(u.Hostname())
	domain = strings.ToLower(domain)
	return h == domain || strings.HasSuffix(h, "."+domain)
}

// IsFEN 粗略判断字符串是否为 FEN 局面。
func IsFEN(s string) bool {
	return fenRE.MatchString(strings.TrimSpace(s))
}

// StripHTML 去掉所有 HTML 标签。
func StripHTML(s string) string {
	return htmlTagRE.ReplaceAllString(s, "")
}

// CollapseSpaces 把连续空白压缩为一个空格并去掉首尾空白。
func CollapseSpaces(s string) string {
	return strings.TrimSpace(spaceRunsRE.ReplaceAllString(s, " "))
}

// NumericID 判断 s 是否为非零的十进制编号。
func NumericID(s string) bool {
	n, err := strconv.ParseUint(s, 10, 64)
	return err == nil && n != 0
}
