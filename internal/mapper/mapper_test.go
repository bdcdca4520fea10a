package mapper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func alwaysTrue(code byte, value byte) bool { return true }

// TestNew_CapacityDerivation 容量推导：有初始表时取 max(capacity, 表长)
func TestNew_CapacityDerivation(t *testing.T) {
	entries := []Entry{
		{Code: 1, Handler: alwaysTrue},
		{Code: 2, Handler: alwaysTrue},
		{Code: 3, Handler: alwaysTrue},
	}

	tests := []struct {
		name     string
		entries  []Entry
		capacity uint
		want     uint
	}{
		{name: "容量小于表长时取表长", entries: entries, capacity: 1, want: 3},
		{name: "容量等于表长", entries: entries, capacity: 3, want: 3},
		{name: "容量大于表长时取容量", entries: entries, capacity: 8, want: 8},
		{name: "无初始表取指定容量", entries: nil, capacity: 5, want: 5},
		{name: "无初始表且容量为0取默认值", entries: nil, capacity: 0, want: DefaultCapacity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(tt.entries, tt.capacity)
			assert.Equal(t, tt.want, m.Capacity())
		})
	}
}

// TestNew_NilHandlerTerminatesList 初始表以 nil handler 为终止项
func TestNew_NilHandlerTerminatesList(t *testing.T) {
	entries := []Entry{
		{Code: 1, Handler: alwaysTrue},
		{Code: 0, Handler: nil},
		{Code: 9, Handler: alwaysTrue}, // 终止项之后的内容应被忽略
	}
	m := New(entries, 0)
	assert.Equal(t, uint(1), m.Filled())
	assert.True(t, m.Validate(1))
	assert.False(t, m.Validate(9))
}

// TestAdd_FullListLock 仅凭初始表构造的表恰好装满，后续 Add 必败
func TestAdd_FullListLock(t *testing.T) {
	entries := []Entry{
		{Code: 1, Handler: alwaysTrue},
		{Code: 2, Handler: alwaysTrue},
	}
	m := New(entries, 0)
	require.Equal(t, uint(2), m.Capacity())
	assert.False(t, m.Add(3, alwaysTrue))
	assert.False(t, m.Validate(3))
}

// TestAdd_LastFreeSlot Add 落在扫描到的最后一个空槽：
// 容量5、初始表2项时，首次 Add 应落在槽4而非槽2
func TestAdd_LastFreeSlot(t *testing.T) {
	entries := []Entry{
		{Code: 1, Handler: alwaysTrue},
		{Code: 2, Handler: alwaysTrue},
	}
	m := New(entries, 5)
	require.True(t, m.Add(7, alwaysTrue))

	// 槽2仍空，扫描在槽2停下，槽4中的条目不可见
	assert.False(t, m.Validate(7))
	assert.Equal(t, []uint{1, 2, 7}, m.Codes())

	// 继续填洞：依次落在槽3、槽2，之后全部条目可见
	require.True(t, m.Add(8, alwaysTrue))
	require.True(t, m.Add(9, alwaysTrue))
	assert.Equal(t, []uint{1, 2, 9, 8, 7}, m.Codes())
	assert.True(t, m.Validate(7))
	assert.True(t, m.Validate(8))
	assert.True(t, m.Validate(9))
}

// TestAdd_FullTable 表满后 Add 返回 false 且无任何修改
func TestAdd_FullTable(t *testing.T) {
	m := New(nil, 3)
	for i := 0; i < 3; i++ {
		require.True(t, m.Add(byte(i), alwaysTrue))
	}
	assert.False(t, m.Add(99, alwaysTrue))
	assert.Equal(t, uint(3), m.Filled())
	assert.False(t, m.Validate(99))
}

// TestAdd_NilHandlerRejected nil handler 被显式拒绝
func TestAdd_NilHandlerRejected(t *testing.T) {
	m := New(nil, 3)
	assert.False(t, m.Add(1, nil))
	assert.Equal(t, uint(0), m.Filled())
}

// TestScan_TerminationSafety 任意容量填满后查询未知码必须终止并返回 false
func TestScan_TerminationSafety(t *testing.T) {
	for _, capacity := range []uint{1, 3, 10, 64} {
		m := New(nil, capacity)
		for i := uint(0); i < capacity; i++ {
			require.True(t, m.Add(byte(i), alwaysTrue))
		}
		assert.False(t, m.Validate(255))
		assert.False(t, m.Process(255, 0))
	}
}

// TestProcess_Dispatch 分发正确性：命中调用对应 handler，未命中返回 false
func TestProcess_Dispatch(t *testing.T) {
	var gotCode, gotValue byte
	hA := func(code byte, value byte) bool { gotCode, gotValue = code, value; return true }
	hB := func(code byte, value byte) bool { gotCode, gotValue = code, value; return false }

	m := New([]Entry{{Code: 1, Handler: hA}, {Code: 2, Handler: hB}}, 0)

	assert.True(t, m.Process(1, 0x55))
	assert.Equal(t, byte(1), gotCode)
	assert.Equal(t, byte(0x55), gotValue)

	assert.False(t, m.Process(2, 0xAA))
	assert.Equal(t, byte(2), gotCode)
	assert.Equal(t, byte(0xAA), gotValue)

	assert.False(t, m.Process(3, 0))
	assert.True(t, m.Validate(1))
	assert.True(t, m.Validate(2))
	assert.False(t, m.Validate(3))
}

// TestProcess_DuplicateCodes 重复功能码以下标最小者为准
func TestProcess_DuplicateCodes(t *testing.T) {
	first := func(code byte, value byte) bool { return true }
	second := func(code byte, value byte) bool { return false }
	m := New([]Entry{{Code: 5, Handler: first}, {Code: 5, Handler: second}}, 0)

	assert.True(t, m.Process(5, 0))
	assert.True(t, m.Validate(5))
}

// TestIdempotence 无 Add 介入时重复 Validate/Process 结果一致
func TestIdempotence(t *testing.T) {
	calls := 0
	h := func(code byte, value byte) bool { calls++; return value > 99 }
	m := New([]Entry{{Code: 9, Handler: h}}, 4)

	for i := 0; i < 5; i++ {
		assert.True(t, m.Validate(9))
		assert.True(t, m.Process(9, 120))
		assert.False(t, m.Process(9, 3))
		assert.False(t, m.Validate(42))
		assert.False(t, m.Process(42, 0))
	}
	assert.Equal(t, 10, calls)
}

// TestProcess_HandlerReceivesCode handler 收到的是匹配的功能码本身
func TestProcess_HandlerReceivesCode(t *testing.T) {
	m := New(nil, 2)
	require.True(t, m.Add(0x20, func(code byte, value byte) bool { return code == 0x20 }))
	require.True(t, m.Add(0x21, func(code byte, value byte) bool { return code == 0x21 }))
	assert.True(t, m.Process(0x20, 0))
	assert.True(t, m.Process(0x21, 0))
}
