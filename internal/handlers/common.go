// internal/handlers/common.go

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hotelac/internal/service"
)

type Response struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data,omitempty"`
	Err  string      `json:"err,omitempty"`
}

// ok 成功响应, data 可以为 nil
func ok(c *gin.Context, msg string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code: 200,
		Msg:  msg,
		Data: data,
	})
}

// fail 按引擎错误类别映射状态码:
// 客户端可修复的错误一律 400, 引擎内部错误 500.
func fail(c *gin.Context, err error) {
	status := http.StatusBadRequest
	if service.KindOf(err) == service.KindInternal {
		status = http.StatusInternalServerError
	}
	c.JSON(status, Response{
		Code: status,
		Msg:  err.Error(),
		Err:  err.Error(),
	})
}

// badRequest 请求体解析失败
func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, Response{
		Code: 400,
		Msg:  "Invalid request",
		Err:  err.Error(),
	})
}
