package mapper

// Handler 处理函数类型：接收功能码与一字节参数，返回布尔结果。
// 返回值的含义由应用层定义，跳转表只负责透传。
type Handler func(code byte, value byte) bool

// Entry 功能码与处理函数的映射项，用于构造时的静态表
type Entry struct {
	Code    uint
	Handler Handler
}

// slot 内部槽位：用显式 occupied 标记空位，避免保留"非法函数值"作哨兵
type slot struct {
	code     uint
	handler  Handler
	occupied bool
}

// Mapper 固定容量跳转表（code -> handler）。
// 底层为 capacity+1 个槽位的预分配切片，末位是永久空置的终止槽，
// 保证"扫描到第一个空槽即停"的遍历在表满时也不会越界。
// 容量在构造后不再变化；槽位一旦写入不会被清除或复用（无删除操作）。
// 本结构不做任何内部加锁，跨协程使用需由调用方串行化。
type Mapper struct {
	slots []slot
}

// DefaultCapacity 未指定容量且无初始表时的默认容量
const DefaultCapacity = 10

// New 创建跳转表。
// entries 为可选初始表：若某项的 Handler 为 nil，则视为终止项，
// 其之前的项数即初始表长度 initialCount。
// 有效容量规则：
//   - 提供初始表时：max(capacity, initialCount)；
//   - 未提供初始表时：capacity 非零取 capacity，否则取 DefaultCapacity。
//
// 仅传初始表而不传容量会得到一张"恰好装满"的表，后续 Add 必然失败，
// 这是刻意保留的单数组用法。
func New(entries []Entry, capacity uint) *Mapper {
	var initialCount uint
	if entries != nil {
		for int(initialCount) < len(entries) && entries[initialCount].Handler != nil {
			initialCount++
		}
		if capacity < initialCount {
			capacity = initialCount
		}
	} else if capacity == 0 {
		capacity = DefaultCapacity
	}

	m := &Mapper{slots: make([]slot, capacity+1)}
	for i := uint(0); i < initialCount; i++ {
		m.slots[i] = slot{code: entries[i].Code, handler: entries[i].Handler, occupied: true}
	}
	return m
}

// Add 注册一个新映射。
// 扫描全部 capacity 个真实槽位，取扫描到的最后一个空槽作为落点
// （沿用原始实现的行为：扫描不在首个空槽停下，而是记录最后一个；
// 表中存在空洞时新条目会落在尾部而不是洞里）。
// 表满返回 false 且不做任何修改；handler 为 nil 时拒绝并返回 false。
// 不检查 code 是否重复，重复时查找以下标最小者为准。
func (m *Mapper) Add(code byte, handler Handler) bool {
	if handler == nil {
		return false
	}
	free := -1
	for i := 0; i < len(m.slots)-1; i++ {
		if !m.slots[i].occupied {
			free = i
		}
	}
	if free == -1 {
		return false
	}
	m.slots[free] = slot{code: uint(code), handler: handler, occupied: true}
	return true
}

// Validate 检查功能码是否已注册。
// 从下标 0 起顺序扫描，遇到首个空槽即停；若条目不连续（构造表短于
// 容量后又经 Add 落在尾部），空洞之后的条目对扫描不可见。
func (m *Mapper) Validate(code uint) bool {
	for i := 0; m.slots[i].occupied; i++ {
		if m.slots[i].code == code {
			return true
		}
	}
	return false
}

// Process 按功能码分发：与 Validate 相同的扫描，命中首个匹配项时
// 同步调用其 handler(code, value) 并透传返回值；未命中返回 false。
// "未知功能码"与"handler 返回 false"在返回值上不可区分，
// 需要区分时调用方应先 Validate 再 Process。
func (m *Mapper) Process(code uint, value byte) bool {
	for i := 0; m.slots[i].occupied; i++ {
		if m.slots[i].code == code {
			return m.slots[i].handler(byte(code), value)
		}
	}
	return false
}

// Capacity 返回真实槽位数（不含终止槽）
func (m *Mapper) Capacity() uint {
	return uint(len(m.slots) - 1)
}

// Filled 返回已占用的真实槽位数
func (m *Mapper) Filled() uint {
	var n uint
	for i := 0; i < len(m.slots)-1; i++ {
		if m.slots[i].occupied {
			n++
		}
	}
	return n
}

// Codes 按槽位顺序返回所有已占用槽的功能码（含空洞之后的槽，供诊断用）
func (m *Mapper) Codes() []uint {
	codes := make([]uint, 0, len(m.slots)-1)
	for i := 0; i < len(m.slots)-1; i++ {
		if m.slots[i].occupied {
			codes = append(codes, m.slots[i].code)
		}
	}
	return codes
}
