package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Response struct {
	Code int         `json:"code"` // 0:成功, -1:失败
	Msg  string      `json:"msg"`
	Data interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code: 0,
		Msg:  "success",
		Data: data,
	})
}

// Fail 失败响应，status 为 HTTP 状态码
func Fail(c *gin.Context, status int, msg string) {
	c.JSON(status, Response{
		Code: -1,
		Msg:  msg,
		Data: nil,
	})
}
