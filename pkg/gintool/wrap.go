package gintool

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WrapQueryHandler 包装只接收 query 参数的处理函数
func WrapQueryHandler[T any](h func(c *gin.Context, param *T), log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var param T
		if err := c.ShouldBindQuery(&param); err != nil {
			GinResponse(c, &Response{
				Code:    http.StatusBadRequest,
				Message: err.Error(),
			})
			log.Error("WrapQueryHandler bind query failed", zap.Error(err))
			return
		}
		h(c, &param)
	}
}
