package jwt

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/samarth494/Capstone-sub000/constants"
)

var ssidKey = "users:ssid:%s"

type RedisJWTHandler struct {
	client        redis.Cmdable
	signingMethod jwt.SigningMethod
	jwtExpiration time.Duration
	jwtKey        []byte
}

var _ Handler = (*RedisJWTHandler)(nil)

func NewRedisJWTHandler(client redis.Cmdable, jwtKey []byte, jwtExpiration time.Duration) Handler {
	return &RedisJWTHandler{
		client:        client,
		signingMethod: jwt.SigningMethodHS512,
		jwtExpiration: jwtExpiration,
		jwtKey:        jwtKey,
	}
}

// CheckSession ssid 在黑名单中视为已登出
func (h *RedisJWTHandler) CheckSession(ctx *gin.Context, ssid string) error {
	cnt, err := h.client.Exists(ctx, fmt.Sprintf(ssidKey, ssid)).Result()
	if err != nil {
		return err
	}
	if cnt > 0 {
		return errors.New("token invalid")
	}
	return nil
}

// ClearSession 登出时将 ssid 拉黑到 token 自然过期
func (h *RedisJWTHandler) ClearSession(ctx *gin.Context, ssid string) error {
	return h.client.Set(ctx, fmt.Sprintf(ssidKey, ssid), "", h.jwtExpiration).Err()
}

func (h *RedisJWTHandler) ExtractToken(ctx *gin.Context) string {
	// 优先从 Header 提取 token
	authCode := ctx.GetHeader(constants.HeaderLoginTokenKey)
	if authCode != "" {
		segs := strings.Split(authCode, " ")
		if len(segs) == 2 && segs[0] == "Bearer" {
			return segs[1]
		}
	}

	// 如果 Header 中没有, 尝试从 Cookie 中提取
	tokenFromCookie, err := ctx.Cookie(constants.HeaderLoginTokenKey)
	if err != nil || tokenFromCookie == "" {
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return ""
	}

	return tokenFromCookie
}

func (h *RedisJWTHandler) SetToken(ctx *gin.Context, userId uint64) error {
	claims := ArenaClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(h.jwtExpiration)),
		},
		UserId:    userId,
		Ssid:      uuid.New().String(),
		UserAgent: ctx.GetHeader("User-Agent"),
	}

	token := jwt.NewWithClaims(h.signingMethod, claims)
	signed, err := token.SignedString(h.jwtKey)
	if err != nil {
		return fmt.Errorf("sign jwt token failed: %w", err)
	}
	ctx.Header(constants.HeaderLoginTokenKey, signed)
	return nil
}

func (h *RedisJWTHandler) JwtKey() []byte {
	return h.jwtKey
}

func (h *RedisJWTHandler) GetUserClaims(ctx *gin.Context) (*ArenaClaims, error) {
	var uc ArenaClaims
	token, err := jwt.ParseWithClaims(h.ExtractToken(ctx), &uc, func(t *jwt.Token) (any, error) {
		return h.jwtKey, nil
	})
	if err != nil {
		return nil, err
	}
	if token == nil || !token.Valid {
		return nil, errors.New("token invalid")
	}
	if err = h.CheckSession(ctx, uc.Ssid); err != nil {
		return nil, err
	}
	return &uc, nil
}
