package jwt

import (
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

type Handler interface {
	ExtractToken(ctx *gin.Context) string
	SetToken(ctx *gin.Context, userId uint64) error
	CheckSession(ctx *gin.Context, ssid string) error
	ClearSession(ctx *gin.Context, ssid string) error

	JwtKey() []byte
	GetUserClaims(ctx *gin.Context) (*ArenaClaims, error)
}

type ArenaClaims struct {
	jwt.RegisteredClaims
	UserId    uint64
	Ssid      string
	UserAgent string
}
