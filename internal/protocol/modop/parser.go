package modop

import (
	"encoding/binary"
	"errors"
)

var (
	ErrInvalidMagic = errors.New("invalid magic")
	ErrShortPacket  = errors.New("short packet")
	ErrBadLength    = errors.New("bad length")
	ErrBadChecksum  = errors.New("bad checksum")
	ErrBadDevID     = errors.New("bad device id")
)

// minFrameLen magic+len+devLen+seq+op+code+value+sum（devId 为空时）
const minFrameLen = 2 + 2 + 1 + 2 + 1 + 1 + 1 + 2

// checksum16 累加校验（低16位），不包含最终的校验字段本身
func checksum16(b []byte) uint16 {
	var sum uint32
	for i := 0; i < len(b); i++ {
		sum += uint32(b[i])
	}
	return uint16(sum & 0xFFFF)
}

// Parse 解析一帧（严格校验：magic、长度、checksum、devLen 上限）
func Parse(raw []byte) (*Frame, error) {
	if len(raw) < minFrameLen {
		return nil, ErrShortPacket
	}
	if raw[0] != magic[0] || raw[1] != magic[1] {
		return nil, ErrInvalidMagic
	}
	totalLen := int(binary.LittleEndian.Uint16(raw[2:4]))
	if totalLen != len(raw) {
		return nil, ErrBadLength
	}
	got := binary.LittleEndian.Uint16(raw[len(raw)-2:])
	want := checksum16(raw[:len(raw)-2])
	if got != want {
		return nil, ErrBadChecksum
	}
	off := 4
	devLen := int(raw[off])
	off++
	if devLen > maxDevIDLen {
		return nil, ErrBadDevID
	}
	if off+devLen+2+1+1+1+2 != len(raw) {
		return nil, ErrBadLength
	}
	dev := string(raw[off : off+devLen])
	off += devLen
	seq := binary.LittleEndian.Uint16(raw[off : off+2])
	off += 2
	return &Frame{
		DevID: dev,
		Seq:   seq,
		Op:    raw[off],
		Code:  raw[off+1],
		Value: raw[off+2],
	}, nil
}

// StreamDecoder 处理半包/粘包的流式解码器
type StreamDecoder struct {
	buf         []byte
	maxFrameLen int // 保护上限，避免畸形数据占用过多内存
}

// NewStreamDecoder 创建流式解码器
func NewStreamDecoder(maxFrameLen int) *StreamDecoder {
	if maxFrameLen <= 0 {
		maxFrameLen = 256 // 协议帧上限远小于此值，放宽一些
	}
	return &StreamDecoder{maxFrameLen: maxFrameLen}
}

// Feed 追加数据并尽可能解出多帧。
// 第二个返回值为本次因失步（垃圾前缀、畸形长度、校验失败）而丢弃的字节数，
// 供调用方区分"半包等待"与"坏数据被丢弃"。
func (d *StreamDecoder) Feed(p []byte) ([]*Frame, int) {
	if len(p) == 0 {
		return nil, 0
	}
	d.buf = append(d.buf, p...)
	var frames []*Frame
	dropped := 0

	for {
		start := indexMagic(d.buf)
		if start < 0 {
			// 无 magic：保留最后1字节以应对跨边界的 magic，其余为垃圾
			if len(d.buf) > 1 {
				dropped += len(d.buf) - 1
				d.buf = d.buf[len(d.buf)-1:]
			}
			return frames, dropped
		}
		if start > 0 {
			// 丢弃无效前缀
			dropped += start
			d.buf = d.buf[start:]
		}
		if len(d.buf) < 4 {
			// 还需要更多字节（magic+len）
			return frames, dropped
		}
		totalLen := int(binary.LittleEndian.Uint16(d.buf[2:4]))
		if totalLen < minFrameLen || totalLen > d.maxFrameLen {
			// 明显异常的长度，滑动1字节后继续同步
			dropped++
			d.buf = d.buf[1:]
			continue
		}
		if len(d.buf) < totalLen {
			// 半包，等待更多
			return frames, dropped
		}

		candidate := d.buf[:totalLen]
		fr, err := Parse(candidate)
		if err != nil {
			// 校验失败，滑动1字节继续寻找同步
			dropped++
			d.buf = d.buf[1:]
			continue
		}
		frames = append(frames, fr)
		d.buf = d.buf[totalLen:]
		if len(d.buf) == 0 {
			return frames, dropped
		}
	}
}

// indexMagic 返回缓冲区中下一个 magic 开始位置
func indexMagic(b []byte) int {
	for i := 0; i+1 < len(b); i++ {
		if b[i] == magic[0] && b[i+1] == magic[1] {
			return i
		}
	}
	return -1
}
