package registry

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/taoyao-code/modop-server/internal/mapper"
)

// Binding 将一个功能码绑定到内置动作
type Binding struct {
	Code   uint   `yaml:"code"`
	Action string `yaml:"action"`
}

// Manifest 指令集清单：表容量与启动时装载的静态映射
type Manifest struct {
	Capacity uint      `yaml:"capacity"`
	Bindings []Binding `yaml:"bindings"`
}

// 内置动作集合。动作只依赖 (code, value)，返回值含义由各动作自定。
var builtins = map[string]mapper.Handler{
	"always-true":  func(code byte, value byte) bool { return true },
	"always-false": func(code byte, value byte) bool { return false },
	"even":         func(code byte, value byte) bool { return value%2 == 0 },
	"odd":          func(code byte, value byte) bool { return value%2 == 1 },
	"threshold":    func(code byte, value byte) bool { return value > 99 },
	"high-bit":     func(code byte, value byte) bool { return value&0x80 != 0 },
	"echo-code":    func(code byte, value byte) bool { return value == code },
}

// LookupAction 按名称查找内置动作
func LookupAction(name string) (mapper.Handler, bool) {
	h, ok := builtins[name]
	return h, ok
}

// Load 读取 YAML 清单文件
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return Decode(data)
}

// Decode 解析 YAML 清单内容并校验动作名
func Decode(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}
	for _, b := range m.Bindings {
		if b.Code > 0xFF {
			return nil, fmt.Errorf("binding code 0x%X out of one-byte range", b.Code)
		}
		if _, ok := builtins[b.Action]; !ok {
			return nil, fmt.Errorf("unknown action %q for code 0x%02X", b.Action, b.Code)
		}
	}
	return &m, nil
}

// Entries 将清单展开为跳转表初始项
func (m *Manifest) Entries() []mapper.Entry {
	if len(m.Bindings) == 0 {
		return nil
	}
	entries := make([]mapper.Entry, 0, len(m.Bindings))
	for _, b := range m.Bindings {
		h, _ := LookupAction(b.Action)
		entries = append(entries, mapper.Entry{Code: b.Code, Handler: h})
	}
	return entries
}

// BuildMapper 根据清单构造跳转表
func (m *Manifest) BuildMapper() *mapper.Mapper {
	return mapper.New(m.Entries(), m.Capacity)
}
