package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samarth494/Capstone-sub000/constants"
	"github.com/samarth494/Capstone-sub000/model"
	"github.com/samarth494/Capstone-sub000/pkg/gintool"
	"github.com/samarth494/Capstone-sub000/service"
	"github.com/samarth494/Capstone-sub000/service/exporter/factory"
	"go.uber.org/zap"
)

// ArenaHandler 对战与赛事的查询接口
type ArenaHandler struct {
	stats     service.StatsService
	exporters *factory.ResultsExporterFactory
	log       *zap.Logger
}

var _ Handler = (*ArenaHandler)(nil)

func NewArenaHandler(stats service.StatsService, exporters *factory.ResultsExporterFactory, log *zap.Logger) *ArenaHandler {
	return &ArenaHandler{
		stats:     stats,
		exporters: exporters,
		log:       log,
	}
}

func (h *ArenaHandler) Register(r *gin.Engine) {
	r.GET(constants.GetLeaderboardPath, gintool.WrapQueryHandler(h.GetLeaderboard, h.log))
	r.GET(constants.GetBattleReplayPath, gintool.WrapQueryHandler(h.GetBattleReplay, h.log))
	r.GET(constants.GetCompetitionResultsPath, gintool.WrapQueryHandler(h.GetCompetitionResults, h.log))
	r.GET(constants.ExportCompetitionDataPath, gintool.WrapQueryHandler(h.ExportCompetitionData, h.log))
}

func (h *ArenaHandler) GetLeaderboard(c *gin.Context, param *model.GetLeaderboardParam) {
	start := time.Now()
	ctx := c.Request.Context()

	resp, err := h.stats.GetLeaderboard(ctx, *param)
	if err != nil {
		gintool.GinResponse(c, &gintool.Response{
			Code:    http.StatusInternalServerError,
			Message: fmt.Sprintf("GetLeaderboard failed: %s", err.Error()),
		})
		h.log.Error("GetLeaderboard failed", zap.Error(err))
		getLeaderboardRequestsTotal.WithLabelValues("500", "query_failed").Inc()
		return
	}
	gintool.GinResponse(c, &gintool.Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    resp,
	})
	getLeaderboardRequestsTotal.WithLabelValues("200", "").Inc()
	getLeaderboardDurationSeconds.WithLabelValues("200", "").Observe(time.Since(start).Seconds())
}

func (h *ArenaHandler) GetBattleReplay(c *gin.Context, param *model.GetBattleReplayParam) {
	ctx := c.Request.Context()

	url, err := h.stats.GetReplayURL(ctx, param.RoomID)
	switch {
	case errors.Is(err, service.ErrRoomNotFound), errors.Is(err, service.ErrReplayNotFound):
		gintool.GinResponse(c, &gintool.Response{
			Code:    http.StatusNotFound,
			Message: err.Error(),
		})
		return
	case err != nil:
		gintool.GinResponse(c, &gintool.Response{
			Code:    http.StatusInternalServerError,
			Message: fmt.Sprintf("GetBattleReplay failed: %s", err.Error()),
		})
		h.log.Error("GetBattleReplay failed", zap.String("roomId", param.RoomID), zap.Error(err))
		return
	}
	gintool.GinResponse(c, &gintool.Response{
		Code:    http.StatusOK,
		Message: "success",
		Data: model.GetBattleReplayResponse{
			RoomID:      param.RoomID,
			DownloadURL: url,
		},
	})
}

func (h *ArenaHandler) GetCompetitionResults(c *gin.Context, param *model.GetCompetitionResultsParam) {
	ctx := c.Request.Context()

	results, err := h.stats.GetCompetitionResults(ctx, param.EventID)
	if err != nil {
		gintool.GinResponse(c, &gintool.Response{
			Code:    http.StatusInternalServerError,
			Message: fmt.Sprintf("GetCompetitionResults failed: %s", err.Error()),
		})
		h.log.Error("GetCompetitionResults failed", zap.String("eventId", param.EventID), zap.Error(err))
		return
	}
	gintool.GinResponse(c, &gintool.Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    results,
	})
}

// ExportCompetitionData 流式导出赛事成绩文件
func (h *ArenaHandler) ExportCompetitionData(c *gin.Context, param *model.ExportCompetitionDataParam) {
	start := time.Now()
	ctx := c.Request.Context()

	exporterType := factory.ResultsExporterType(param.Exporter)
	exp := h.exporters.GetResultsExporter(exporterType)
	if exp == nil {
		gintool.GinResponse(c, &gintool.Response{
			Code:    http.StatusBadRequest,
			Message: fmt.Sprintf("unsupported exporter: %s", param.Exporter),
		})
		exportCompetitionDataRequestsTotal.WithLabelValues("400", "unsupported_exporter").Inc()
		return
	}

	filename := "competition_" + param.EventID + factory.ExporterSuffixMap[exporterType]
	c.Header("Content-Type", factory.ExporterContentTypeMap[exporterType])
	c.Header("Content-Disposition", "attachment; filename="+strconv.Quote(filename))

	if err := exp.Export(ctx, param.EventID, c.Writer); err != nil {
		h.log.Error("ExportCompetitionData failed",
			zap.String("eventId", param.EventID),
			zap.String("exporter", param.Exporter),
			zap.Error(err))
		exportCompetitionDataRequestsTotal.WithLabelValues("500", "export_failed").Inc()
		return
	}
	exportCompetitionDataRequestsTotal.WithLabelValues("200", "").Inc()
	exportCompetitionDataDurationSeconds.WithLabelValues("200", "").Observe(time.Since(start).Seconds())
}
