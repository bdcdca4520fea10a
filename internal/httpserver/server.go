package httpserver

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	cfgpkg "github.com/taoyao-code/modop-server/internal/config"
	"github.com/taoyao-code/modop-server/internal/gateway"
	"github.com/taoyao-code/modop-server/internal/metrics"
	"github.com/taoyao-code/modop-server/internal/registry"
)

// Server HTTP 服务封装
type Server struct {
	srv *http.Server
}

// registerRequest 运行期注册请求体
type registerRequest struct {
	Code   uint   `json:"code"`
	Action string `json:"action" binding:"required"`
}

// New 创建并配置 Gin + HTTP Server，注册健康检查、指标与跳转表管理路由
func New(
	cfg cfgpkg.HTTPConfig,
	metricsPath string,
	metricsHandler http.Handler,
	readyFn func() bool,
	disp *gateway.Dispatcher,
	appm *metrics.AppMetrics,
) *Server {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.GET("/readyz", func(c *gin.Context) {
		if readyFn == nil || readyFn() {
			c.String(http.StatusOK, "ready")
			return
		}
		c.String(http.StatusServiceUnavailable, "not-ready")
	})
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	if metricsHandler != nil {
		r.GET(metricsPath, gin.WrapH(metricsHandler))
	}

	if disp != nil {
		v1 := r.Group("/api/v1")

		// 只读：表状态快照
		v1.GET("/dispatch/table", func(c *gin.Context) {
			capacity, filled, codes := disp.Snapshot()
			c.JSON(http.StatusOK, gin.H{
				"capacity": capacity,
				"filled":   filled,
				"codes":    codes,
			})
		})

		// 管理面：运行期注册内置动作（表满或动作未知时失败）
		v1.POST("/dispatch/handlers", func(c *gin.Context) {
			var req registerRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if req.Code > 0xFF {
				c.JSON(http.StatusBadRequest, gin.H{"error": "code out of one-byte range"})
				return
			}
			h, ok := registry.LookupAction(req.Action)
			if !ok {
				if appm != nil {
					appm.RegisterTotal.WithLabelValues("rejected").Inc()
				}
				c.JSON(http.StatusBadRequest, gin.H{"error": "unknown action"})
				return
			}
			if !disp.Add(byte(req.Code), h) {
				if appm != nil {
					appm.RegisterTotal.WithLabelValues("full").Inc()
				}
				c.JSON(http.StatusConflict, gin.H{"error": "dispatch table full"})
				return
			}
			if appm != nil {
				appm.RegisterTotal.WithLabelValues("ok").Inc()
			}
			c.JSON(http.StatusCreated, gin.H{"code": req.Code, "action": req.Action})
		})
	}

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return &Server{srv: srv}
}

// Start 启动 HTTP 服务（阻塞）
func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

// Shutdown 优雅关闭
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
