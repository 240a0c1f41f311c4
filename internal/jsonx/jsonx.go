// Package jsonx 提供容错的 JSON 读取：解析失败或字段缺失一律得到零值，不向上抛 panic。
//
// 路径语法与站点数据的书写习惯一致："game/players/[0]/name"。
// 段之间默认用 '/' 分隔；键本身含 '/' 时可用 GetSep 指定其它分隔符。
package jsonx

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Doc 是一段只读 JSON 值。零值表示“不存在”。
type Doc struct {
	r gjson.Result
}

// Parse 解析 JSON 文本；非法输入返回 ok=false。
func Parse(s string) (Doc, bool) {
	s = strings.TrimSpace(s)
	if s == "" || !gjson.Valid(s) {
		return Doc{}, false
	}
	return Doc{r: gjson.Parse(s)}, true
}

// Exists 表示该值在原文中存在（null 也算存在）。
func (d Doc) Exists() bool { return d.r.Exists() }

// Empty 对应“字段缺失 / null / 空串”。
func (d Doc) Empty() bool {
	if !d.r.Exists() || d.r.Type == gjson.Null {
		return true
	}
	return d.r.Type == gjson.String && d.r.Str == ""
}

func (d Doc) IsArray() bool  { return d.r.IsArray() }
func (d Doc) IsObject() bool { return d.r.IsObject() }
func (d Doc) Raw() string    { return d.r.Raw }

// Get 按 '/' 分隔的路径取子值。
func (d Doc) Get(path string) Doc {
	return d.GetSep(path, "/")
}

// GetSep 与 Get 相同，但使用自定义分隔符。
func (d Doc) GetSep(path, sep string) Doc {
	cur := d.r
	if path == "" {
		return d
	}
	for _, key := range strings.Split(path, sep) {
		if !cur.Exists() {
			return Doc{}
		}
		if strings.HasPrefix(key, "[") && strings.HasSuffix(key, "]") {
			i, err := strconv.Atoi(key[1 : len(key)-1])
			if err != nil || !cur.IsArray() {
				return Doc{}
			}
			arr := cur.Array()
			if i < 0 || i >= len(arr) {
				return Doc{}
			}
			cur = arr[i]
			continue
		}
		if !cur.IsObject() {
			return Doc{}
		}
		cur = child(cur, key)
	}
	return Doc{r: cur}
}

// child 逐项比较键名，避免把站点数据里的 '.'、'*'、'$' 等字符当作 gjson 路径语法。
func child(obj gjson.Result, key string) gjson.Result {
	var out gjson.Result
	obj.ForEach(func(k, v gjson.Result) bool {
		if k.String() == key {
			out = v
			return false
		}
		return true
	})
	return out
}

// Field 读取字符串形式的字段值；缺失时返回空串。
func (d Doc) Field(path string) string {
	return d.Get(path).String()
}

// FieldOr 读取字段；缺失、null 或空串时返回 def。
func (d Doc) FieldOr(path, def string) string {
	v := d.Get(path)
	if v.Empty() {
		return def
	}
	return v.String()
}

// String 把标量转换为文本；对象与数组返回原始 JSON。
func (d Doc) String() string {
	if !d.r.Exists() || d.r.Type == gjson.Null {
		return ""
	}
	return d.r.String()
}

func (d Doc) Int() int64     { return d.r.Int() }
func (d Doc) Float() float64 { return d.r.Float() }
func (d Doc) Bool() bool     { return d.r.Bool() }

// Array 返回数组元素；非数组返回 nil。
func (d Doc) Array() []Doc {
	if !d.r.IsArray() {
		return nil
	}
	items := d.r.Array()
	out := make([]Doc, 0, len(items))
	for _, it := range items {
		out = append(out, Doc{r: it})
	}
	return out
}

// ForEach 按原文顺序遍历对象的键值对；fn 返回 false 时停止。
func (d Doc) ForEach(fn func(key string, v Doc) bool) {
	if !d.r.IsObject() {
		return
	}
	d.r.ForEach(func(k, v gjson.Result) bool {
		return fn(k.String(), Doc{r: v})
	})
}

// Embedded 从一段文本（通常是 HTML/JS）中截取 marker 之后的第一个完整 JSON 对象。
// 花括号计数会跳过字符串字面量内部的括号。找不到完整对象时返回 ok=false。
func Embedded(page, marker string) (Doc, bool) {
	pos := strings.Index(page, marker)
	if pos < 0 {
		return Doc{}, false
	}
	start := strings.IndexByte(page[pos+len(marker):], '{')
	if start < 0 {
		return Doc{}, false
	}
	start += pos + len(marker)

	depth := 0
	inStr := false
	esc := false
	for i := start; i < len(page); i++ {
		c := page[i]
		if inStr {
			switch {
			case esc:
				esc = false
			case c == '\\':
				esc = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return Parse(page[start : i+1])
			}
		}
	}
	return Doc{}, false
}
