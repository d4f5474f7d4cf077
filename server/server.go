// server/server.go

package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"hotelac/internal/logger"
)

type Server struct {
	srv *http.Server
}

func NewServer(router *gin.Engine, host string, port int) *Server {
	return &Server{
		srv: &http.Server{
			Addr:    fmt.Sprintf("%s:%d", host, port),
			Handler: router,
		},
	}
}

// Start 后台启动 HTTP 服务
func (s *Server) Start() {
	go func() {
		logger.Info("HTTP 服务监听 %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP 服务异常退出: %v", err)
		}
	}()
}

// Stop 优雅关闭, 等待在途请求完成
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
