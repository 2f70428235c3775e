package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/samarth494/Capstone-sub000/constants"
	arenajwt "github.com/samarth494/Capstone-sub000/web/jwt"
	"go.uber.org/zap"
)

type JWTMiddlewareBuilder struct {
	arenajwt.Handler
	log            *zap.Logger
	protectedPaths []string
}

func NewJWTMiddlewareBuilder(handler arenajwt.Handler, log *zap.Logger, protectedPaths []string) *JWTMiddlewareBuilder {
	return &JWTMiddlewareBuilder{
		Handler:        handler,
		log:            log,
		protectedPaths: protectedPaths,
	}
}

// CheckLogin 仅对受保护路径前缀校验 JWT, 其余路径直接放行
func (m *JWTMiddlewareBuilder) CheckLogin() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		path := ctx.Request.URL.Path
		flag := false
		for _, p := range m.protectedPaths {
			if strings.HasPrefix(path, p) {
				flag = true
				break
			}
		}
		if !flag {
			ctx.Next()
			return
		}

		uc, err := m.GetUserClaims(ctx)
		if err != nil {
			m.log.Error("CheckLogin failed", zap.String("path", path), zap.Error(err))
			ctx.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		ctx.Set(constants.ContextUserClaimsKey, *uc)
		ctx.Next()
	}
}
