package provider

import (
	"fmt"
	"strings"
)

// Registry 是 provider 的只读注册表：保留注册顺序（即调度优先级），并按 name 索引。
type Registry struct {
	list   []Provider
	byName map[string]Provider
}

func NewRegistry(providers ...Provider) (Registry, error) {
	byName := make(map[string]Provider, len(providers))
	list := make([]Provider, 0, len(providers))
	for _, p := range providers {
		if p == nil {
			return Registry{}, fmt.Errorf("provider 不能为空")
		}
		name := Key(p.Identity().Name)
		if name == "" {
			return Registry{}, fmt.Errorf("provider 名称不能为空")
		}
		if _, ok := byName[name]; ok {
			return Registry{}, fmt.Errorf("重复的 provider：%q", name)
		}
		byName[name] = p
		list = append(list, p)
	}
	return Registry{list: list, byName: byName}, nil
}

// Key 是 provider 名称的规范形式（小写、去首尾空白）。
func Key(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (r Registry) Get(name string) (Provider, bool) {
	if r.byName == nil {
		return nil, false
	}
	p, ok := r.byName[Key(name)]
	return p, ok
}

// All 按优先级返回全部 provider（副本）。
func (r Registry) All() []Provider {
	return append([]Provider(nil), r.list...)
}

func (r Registry) Len() int { return len(r.list) }
