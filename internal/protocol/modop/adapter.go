package modop

// FrameFunc 帧回调：由网关注入，负责分发并回写应答
type FrameFunc func(f *Frame)

// Adapter MODOP 协议适配器：流式解码 + 帧回调
type Adapter struct {
	decoder *StreamDecoder
	onFrame FrameFunc
}

// NewAdapter 创建适配器
func NewAdapter(onFrame FrameFunc) *Adapter {
	return &Adapter{decoder: NewStreamDecoder(0), onFrame: onFrame}
}

// ProcessBytes 处理上行字节流，返回本次解出的帧数与失步丢弃的字节数
func (a *Adapter) ProcessBytes(p []byte) (int, int) {
	frames, dropped := a.decoder.Feed(p)
	for _, fr := range frames {
		if a.onFrame != nil {
			a.onFrame(fr)
		}
	}
	return len(frames), dropped
}

// Sniff 粗略判断是否为 MODOP 协议（检查 magic 'M''O'）
func (a *Adapter) Sniff(prefix []byte) bool {
	if len(prefix) < 2 {
		return false
	}
	return prefix[0] == magic[0] && prefix[1] == magic[1]
}
