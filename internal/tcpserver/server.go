package tcpserver

import (
	"context"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/modop-server/internal/config"
)

// Server MODOP TCP 网关：监听、接入限流、连接生命周期管理
type Server struct {
	cfg        cfgpkg.TCPConfig
	ln         net.Listener
	wg         sync.WaitGroup
	stopC      chan struct{}
	logger     *zap.Logger
	nextConnID uint64

	connHandler func(*ConnContext)
	limiter     *ConnectionLimiter
	rateLimiter *RateLimiter

	// 可选指标回调
	onAccept    func()
	onReject    func()
	onRecvBytes func(n int)
}

// New 创建 TCP 网关
func New(cfg cfgpkg.TCPConfig, logger *zap.Logger) *Server {
	return &Server{
		cfg:         cfg,
		stopC:       make(chan struct{}),
		logger:      logger,
		limiter:     NewConnectionLimiter(cfg.MaxConnections, 0),
		rateLimiter: NewRateLimiter(cfg.AcceptRatePerSec, cfg.AcceptBurst),
	}
}

// SetConnHandler 设置连接处理回调（为每个新连接安装 onRead 等）
func (s *Server) SetConnHandler(h func(*ConnContext)) { s.connHandler = h }

// SetMetricsCallbacks 设置指标回调
func (s *Server) SetMetricsCallbacks(onAccept, onReject func(), onRecvBytes func(int)) {
	s.onAccept, s.onReject, s.onRecvBytes = onAccept, onReject, onRecvBytes
}

// Start 监听并接受连接（非阻塞，内部 goroutine）
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	s.ln = ln
	if s.logger != nil {
		s.logger.Info("tcp gateway listening", zap.String("addr", s.cfg.Addr))
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.ln.Accept()
			if err != nil {
				select {
				case <-s.stopC:
					return
				default:
				}
				// 短暂错误等待后重试
				time.Sleep(50 * time.Millisecond)
				continue
			}

			if !s.rateLimiter.Allow() {
				if s.onReject != nil {
					s.onReject()
				}
				_ = conn.Close()
				continue
			}
			if err := s.limiter.Acquire(context.Background()); err != nil {
				if s.onReject != nil {
					s.onReject()
				}
				if s.logger != nil {
					s.logger.Warn("connection rejected", zap.Error(err))
				}
				_ = conn.Close()
				continue
			}
			if s.onAccept != nil {
				s.onAccept()
			}

			cc := newConnContext(s, conn)
			if s.connHandler != nil {
				s.connHandler(cc)
			}

			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				defer s.limiter.Release()
				cc.run()
			}()
		}
	}()
	return nil
}

// Addr 返回实际监听地址（测试中配合 ":0" 使用）
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Shutdown 优雅关闭监听并等待连接退出
func (s *Server) Shutdown(ctx context.Context) error {
	close(s.stopC)
	if s.ln != nil {
		_ = s.ln.Close()
	}
	ch := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(ch)
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-ch:
		return nil
	}
}
