package gateway

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taoyao-code/modop-server/internal/metrics"
	"github.com/taoyao-code/modop-server/internal/protocol/modop"
	"github.com/taoyao-code/modop-server/internal/tcpserver"
)

// NewConnHandler 构建 TCP 连接处理器：为每个连接安装 MODOP 适配器，
// 将解出的帧分发到跳转表并回写应答。
// 分发前先 Validate 再 Process，以便指标区分"未知功能码"与
// "handler 返回 false"（两者在线上应答中同为状态0）。
func NewConnHandler(log *zap.Logger, appm *metrics.AppMetrics, disp *Dispatcher) func(*tcpserver.ConnContext) {
	return func(cc *tcpserver.ConnContext) {
		connID := uuid.NewString()
		clog := log.With(
			zap.String("conn_id", connID),
			zap.Uint64("conn_seq", cc.ID()),
			zap.String("remote_addr", cc.RemoteAddr().String()),
		)
		clog.Info("connection established")

		ad := modop.NewAdapter(func(f *modop.Frame) {
			if appm != nil {
				appm.ParseTotal.WithLabelValues("ok").Inc()
			}
			status := handleFrame(clog, appm, disp, f)
			if err := cc.Write(modop.EncodeResponse(f, status)); err != nil {
				clog.Warn("response write failed", zap.Error(err))
			}
		})

		cc.SetOnRead(func(p []byte) {
			n, dropped := ad.ProcessBytes(p)
			if appm == nil {
				return
			}
			if dropped > 0 {
				// 失步丢弃（校验失败、垃圾前缀等），与半包等待区分开
				appm.ParseTotal.WithLabelValues("error").Inc()
			}
			if n == 0 && dropped == 0 {
				// 本批字节未能解出任何帧（半包），留痕即可
				appm.ParseTotal.WithLabelValues("pending").Inc()
			}
		})

		go func() {
			<-cc.Done()
			clog.Info("connection closed")
		}()
	}
}

// handleFrame 处理单帧并返回应答状态字节
func handleFrame(clog *zap.Logger, appm *metrics.AppMetrics, disp *Dispatcher, f *modop.Frame) byte {
	switch f.Op {
	case modop.OpExec:
		if !disp.Validate(uint(f.Code)) {
			if appm != nil {
				appm.DispatchTotal.WithLabelValues("unknown").Inc()
			}
			clog.Debug("exec unknown code",
				zap.String("dev_id", f.DevID),
				zap.Uint8("code", f.Code),
			)
			return modop.StatusFalse
		}
		ok := disp.Process(uint(f.Code), f.Value)
		if appm != nil {
			if ok {
				appm.DispatchTotal.WithLabelValues("true").Inc()
			} else {
				appm.DispatchTotal.WithLabelValues("false").Inc()
			}
		}
		clog.Debug("exec dispatched",
			zap.String("dev_id", f.DevID),
			zap.Uint8("code", f.Code),
			zap.Uint8("value", f.Value),
			zap.Bool("result", ok),
		)
		if ok {
			return modop.StatusTrue
		}
		return modop.StatusFalse

	case modop.OpQuery:
		exists := disp.Validate(uint(f.Code))
		if appm != nil {
			if exists {
				appm.QueryTotal.WithLabelValues("hit").Inc()
			} else {
				appm.QueryTotal.WithLabelValues("miss").Inc()
			}
		}
		if exists {
			return modop.StatusTrue
		}
		return modop.StatusFalse

	default:
		// 线上不开放注册等其他操作，一律 NAK
		clog.Warn("unsupported op rejected",
			zap.String("dev_id", f.DevID),
			zap.Uint8("op", f.Op),
		)
		return modop.StatusFalse
	}
}
