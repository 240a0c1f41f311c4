// Package pgn 负责把站点数据装配为 PGN/SGF 文本，并做输出前的统一清洗。
package pgn

import "strings"

// 保留字段：不作为标签输出。
const (
	FieldURL    = "_url"
	FieldMoves  = "_moves"
	FieldReason = "_reason"
)

// Record 是按插入顺序保存的“标签名 → 值”映射。以 '_' 开头的键只在正文中使用。
type Record struct {
	keys []string
	vals map[string]string
}

func NewRecord() *Record {
	return &Record{vals: map[string]string{}}
}

// Set 写入字段；已存在的键保留原位置，只更新值。
func (r *Record) Set(key, val string) {
	if r.vals == nil {
		r.vals = map[string]string{}
	}
	if _, ok := r.vals[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.vals[key] = val
}

// SetIf 仅在 val 非空（去掉首尾空白后）时写入。
func (r *Record) SetIf(key, val string) {
	if strings.TrimSpace(val) == "" {
		return
	}
	r.Set(key, val)
}

func (r *Record) Get(key string) string {
	if r == nil {
		return ""
	}
	return r.vals[key]
}

func (r *Record) Has(key string) bool {
	if r == nil {
		return false
	}
	_, ok := r.vals[key]
	return ok
}

func (r *Record) Del(key string) {
	if r == nil || !r.Has(key) {
		return
	}
	delete(r.vals, key)
	for i, k := range r.keys {
		if k == key {
			r.keys = append(r.keys[:i], r.keys[i+1:]...)
			break
		}
	}
}

// Keys 返回插入顺序的键列表副本。
func (r *Record) Keys() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.keys...)
}

func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}
