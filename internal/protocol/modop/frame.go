package modop

// Frame MODOP 帧结构
// 布局：
// magic[2] 'M''O' | lenLE[2] | devLen[1] | devId[devLen] | seqLE[2] | op[1] | code[1] | value[1] | sumLE[2]
// len 字段为整帧总长度（含 magic 与 len 本身）。
type Frame struct {
	DevID string
	Seq   uint16
	Op    uint8
	Code  uint8
	Value uint8
}

// 操作类型
const (
	OpExec     = 0x01 // 执行：按功能码分发 value
	OpQuery    = 0x02 // 查询：功能码是否已注册
	OpRegister = 0x03 // 注册：仅保留给管理面，线上收到一律 NAK

	// RespFlag 应答帧的 op 为请求 op 置最高位
	RespFlag = 0x80
)

// 应答状态字节
const (
	StatusFalse = 0x00 // handler 返回 false / 功能码未注册 / 操作被拒绝
	StatusTrue  = 0x01 // handler 返回 true / 功能码已注册
)

var magic = []byte{0x4D, 0x4F} // 'M''O'

// maxDevIDLen 设备标识长度上限
const maxDevIDLen = 32
