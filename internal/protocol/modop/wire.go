package modop

import "encoding/binary"

// Encode 编码一帧（请求与应答共用同一封包格式）
func Encode(f *Frame) []byte {
	dev := []byte(f.DevID)
	if len(dev) > maxDevIDLen {
		dev = dev[:maxDevIDLen]
	}
	total := minFrameLen + len(dev)
	buf := make([]byte, 0, total)
	buf = append(buf, magic...)
	l := make([]byte, 2)
	binary.LittleEndian.PutUint16(l, uint16(total))
	buf = append(buf, l...)
	buf = append(buf, byte(len(dev)))
	buf = append(buf, dev...)
	s := make([]byte, 2)
	binary.LittleEndian.PutUint16(s, f.Seq)
	buf = append(buf, s...)
	buf = append(buf, f.Op, f.Code, f.Value)
	sum := make([]byte, 2)
	binary.LittleEndian.PutUint16(sum, checksum16(buf))
	buf = append(buf, sum...)
	return buf
}

// EncodeResponse 构造应答帧：op 置 RespFlag，code 回显，value 为状态字节
func EncodeResponse(req *Frame, status byte) []byte {
	return Encode(&Frame{
		DevID: req.DevID,
		Seq:   req.Seq,
		Op:    req.Op | RespFlag,
		Code:  req.Code,
		Value: status,
	})
}
