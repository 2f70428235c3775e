package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samarth494/Capstone-sub000/constants"
	"go.uber.org/zap"
)

type HealthHandler struct {
	log *zap.Logger
}

var _ Handler = (*HealthHandler)(nil)

func NewHealthHandler(log *zap.Logger) *HealthHandler {
	return &HealthHandler{
		log: log,
	}
}

func (h *HealthHandler) Register(r *gin.Engine) {
	r.GET(constants.HealthPath, h.HealthCheck)
}

func (h *HealthHandler) HealthCheck(ctx *gin.Context) {
	h.log.Info("health check")
	ctx.Status(http.StatusOK)
}
