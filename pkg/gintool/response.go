package gintool

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samarth494/Capstone-sub000/constants"
)

type Response struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	Data      any    `json:"data,omitempty"`
	RequestID string `json:"request_id"`
}

// GinResponse 统一响应信封. Code 为合法 HTTP 状态码时同时作为响应状态
func GinResponse(c *gin.Context, resp *Response) {
	resp.RequestID = c.GetHeader(constants.HeaderRequestIDKey)
	status := resp.Code
	if status < http.StatusOK || status >= 600 {
		status = http.StatusOK
	}
	c.JSON(status, resp)
}
