package fetch

import (
	"mime"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// decode 把响应体转换为文本：声明的字符集 → UTF-8 → 页面内声明（HTML） → Latin-1。
// 结果去掉 BOM 与 '\r' 并去掉首尾空白；结果为空时返回 ErrEmpty。
func decode(body []byte, contentType string) (string, error) {
	s, err := decodeBytes(body, contentType)
	if err != nil {
		return "", err
	}
	s = strings.ReplaceAll(s, "\ufeff", "")
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrEmpty
	}
	return s, nil
}

func decodeBytes(body []byte, contentType string) (string, error) {
	if enc := declaredEncoding(contentType); enc != nil {
		if s, err := decodeWith(body, enc); err == nil {
			return s, nil
		}
	}
	if utf8.Valid(body) {
		return string(body), nil
	}
	if _, name, _ := charset.DetermineEncoding(body, contentType); name != "" && name != "utf-8" && name != "windows-1252" {
		if enc, err := htmlindex.Get(name); err == nil {
			if s, err := decodeWith(body, enc); err == nil {
				return s, nil
			}
		}
	}
	s, err := decodeWith(body, charmap.ISO8859_1)
	if err != nil {
		return "", ErrDecode
	}
	return s, nil
}

func declaredEncoding(contentType string) encoding.Encoding {
	if contentType == "" {
		return nil
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil
	}
	cs := strings.Trim(params["charset"], `"'`)
	if cs == "" {
		return nil
	}
	enc, err := htmlindex.Get(cs)
	if err != nil {
		return nil
	}
	return enc
}

func decodeWith(body []byte, enc encoding.Encoding) (string, error) {
	out, _, err := transform.Bytes(enc.NewDecoder(), body)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// mediaType 返回小写的 MIME 类型（不含参数）。
func mediaType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	}
	return strings.ToLower(mt)
}
