package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleManifest = `
capacity: 8
bindings:
  - code: 0x01
    action: even
  - code: 0x02
    action: odd
  - code: 0x09
    action: threshold
`

func TestDecode_OK(t *testing.T) {
	m, err := Decode([]byte(sampleManifest))
	require.NoError(t, err)
	assert.Equal(t, uint(8), m.Capacity)
	require.Len(t, m.Bindings, 3)
	assert.Equal(t, uint(0x09), m.Bindings[2].Code)
	assert.Equal(t, "threshold", m.Bindings[2].Action)
}

func TestDecode_UnknownAction(t *testing.T) {
	_, err := Decode([]byte("bindings:\n  - code: 1\n    action: frobnicate\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "frobnicate")
}

func TestDecode_CodeOutOfRange(t *testing.T) {
	_, err := Decode([]byte("bindings:\n  - code: 256\n    action: even\n"))
	require.Error(t, err)
}

func TestBuildMapper_FromManifest(t *testing.T) {
	m, err := Decode([]byte(sampleManifest))
	require.NoError(t, err)

	tbl := m.BuildMapper()
	assert.Equal(t, uint(8), tbl.Capacity())
	assert.Equal(t, uint(3), tbl.Filled())

	assert.True(t, tbl.Process(0x01, 4))   // even
	assert.False(t, tbl.Process(0x01, 5))  // even
	assert.True(t, tbl.Process(0x02, 5))   // odd
	assert.True(t, tbl.Process(0x09, 120)) // threshold
	assert.False(t, tbl.Process(0x09, 12))
	assert.False(t, tbl.Process(0x55, 0)) // 未注册
}

// 清单容量为0且有绑定时，表恰好装满（单数组用法）
func TestBuildMapper_ExactFit(t *testing.T) {
	m, err := Decode([]byte("bindings:\n  - code: 1\n    action: always-true\n"))
	require.NoError(t, err)
	tbl := m.BuildMapper()
	assert.Equal(t, uint(1), tbl.Capacity())
	assert.False(t, tbl.Add(2, func(code byte, value byte) bool { return true }))
}

func TestLookupAction(t *testing.T) {
	h, ok := LookupAction("echo-code")
	require.True(t, ok)
	assert.True(t, h(0x10, 0x10))
	assert.False(t, h(0x10, 0x11))

	_, ok = LookupAction("nope")
	assert.False(t, ok)
}
