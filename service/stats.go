package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	json "github.com/bytedance/sonic"
	"github.com/IBM/sarama"
	"github.com/redis/go-redis/v9"
	"github.com/samarth494/Capstone-sub000/event"
	"github.com/samarth494/Capstone-sub000/model"
	miniox "github.com/samarth494/Capstone-sub000/pkg/minio"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	// leaderboardKey 全局胜场排行榜 ZSET, member 为 userID
	leaderboardKey = "arena:leaderboard"

	defaultReplayURLExpireSeconds = 3600
)

// StatsService 对战与赛事的持久化边界. 房间状态机只在终态调用它,
// 失败由调用方记日志, 不回滚已广播的结论.
type StatsService interface {
	RecordBattle(ctx context.Context, roomID string, players [2]model.Player, winnerID *uint64, start, end time.Time, replay []model.ReplayEvent, reason string) error
	RecordCompetition(ctx context.Context, eventID string, results []model.CompetitionResult) error
	GetLeaderboard(ctx context.Context, param model.GetLeaderboardParam) (model.GetLeaderboardResponse, error)
	GetReplayURL(ctx context.Context, roomID string) (string, error)
	GetCompetitionResults(ctx context.Context, eventID string) ([]model.CompetitionResult, error)
	CleanExpiredArchives(ctx context.Context, before time.Time) error
}

type GormStatsService struct {
	db               *gorm.DB
	cmd              redis.Cmdable
	replays          *miniox.ReplayStore
	producer         event.Producer
	log              *zap.Logger
	urlExpireSeconds int
}

var _ StatsService = (*GormStatsService)(nil)

func NewGormStatsService(db *gorm.DB, cmd redis.Cmdable, replays *miniox.ReplayStore, producer event.Producer, log *zap.Logger, urlExpireSeconds int) *GormStatsService {
	if urlExpireSeconds <= 0 {
		urlExpireSeconds = defaultReplayURLExpireSeconds
	}
	return &GormStatsService{
		db:               db,
		cmd:              cmd,
		replays:          replays,
		producer:         producer,
		log:              log,
		urlExpireSeconds: urlExpireSeconds,
	}
}

// RecordBattle 对战终态落库: 回放传 MinIO, 存档与战绩走同一事务,
// 排行榜与 Kafka 为尽力而为.
func (s *GormStatsService) RecordBattle(ctx context.Context, roomID string, players [2]model.Player, winnerID *uint64, start, end time.Time, replay []model.ReplayEvent, reason string) error {
	objectKey := s.uploadReplay(ctx, roomID, replay)

	archive := model.BattleArchive{
		RoomID:       roomID,
		Player1ID:    players[0].UserID,
		Player2ID:    players[1].UserID,
		WinnerID:     winnerID,
		Reason:       reason,
		StartTime:    start,
		EndTime:      end,
		ReplayObject: objectKey,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&archive).Error; err != nil {
			return fmt.Errorf("RecordBattle failed at create archive: %w", err)
		}
		for _, p := range players {
			won := winnerID != nil && *winnerID == p.UserID
			lost := winnerID != nil && *winnerID != p.UserID
			if err := s.applyResultTx(tx, p, won, lost); err != nil {
				return fmt.Errorf("RecordBattle failed at update user %d: %w", p.UserID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.refreshLeaderboard(ctx, players[:])
	s.publishBattleArchived(ctx, roomID, players, winnerID, reason, start, end)
	return nil
}

// applyResultTx 更新单个玩家聚合战绩, 不存在则建档. 段位只随胜场阶梯变动.
func (s *GormStatsService) applyResultTx(tx *gorm.DB, p model.Player, won, lost bool) error {
	var user model.User
	err := tx.Where("id = ?", p.UserID).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = model.User{ID: p.UserID, Username: p.Username}
	case err != nil:
		return err
	}

	user.Played++
	if won {
		user.Wins++
	}
	if lost {
		user.Losses++
	}
	user.Rank = model.RankFromWins(user.Wins)
	return tx.Save(&user).Error
}

func (s *GormStatsService) uploadReplay(ctx context.Context, roomID string, replay []model.ReplayEvent) string {
	if s.replays == nil || len(replay) == 0 {
		return ""
	}
	data, err := json.Marshal(replay)
	if err != nil {
		s.log.Error("failed to marshal replay log", zap.String("roomId", roomID), zap.Error(err))
		return ""
	}
	objectKey, err := s.replays.PutReplay(ctx, roomID, data)
	if err != nil {
		s.log.Error("failed to upload replay log", zap.String("roomId", roomID), zap.Error(err))
		return ""
	}
	return objectKey
}

func (s *GormStatsService) refreshLeaderboard(ctx context.Context, players []model.Player) {
	if s.cmd == nil {
		return
	}
	for _, p := range players {
		var user model.User
		if err := s.db.WithContext(ctx).Where("id = ?", p.UserID).First(&user).Error; err != nil {
			continue
		}
		if err := s.cmd.ZAdd(ctx, leaderboardKey, redis.Z{
			Score:  float64(user.Wins),
			Member: fmt.Sprintf("%d", user.ID),
		}).Err(); err != nil {
			s.log.Warn("failed to refresh leaderboard zset", zap.Uint64("userId", p.UserID), zap.Error(err))
		}
	}
}

func (s *GormStatsService) publishBattleArchived(ctx context.Context, roomID string, players [2]model.Player, winnerID *uint64, reason string, start, end time.Time) {
	if s.producer == nil {
		return
	}
	msg := &event.BattleArchivedMessage{
		RoomID:    roomID,
		Player1ID: players[0].UserID,
		Player2ID: players[1].UserID,
		WinnerID:  winnerID,
		Reason:    reason,
		StartedAt: start.UnixMilli(),
		EndedAt:   end.UnixMilli(),
	}
	data, err := msg.Marshal()
	if err != nil {
		s.log.Error("failed to marshal battle archived message", zap.Error(err))
		return
	}
	_, _, err = s.producer.Produce(ctx, &sarama.ProducerMessage{
		Topic: event.BattleArchivedTopic,
		Key:   sarama.StringEncoder(roomID),
		Value: sarama.ByteEncoder(data),
	})
	if err != nil {
		s.log.Error("failed to publish battle archived message", zap.String("roomId", roomID), zap.Error(err))
	}
}

// RecordCompetition 赛事结束批量落库最终成绩并发布结束消息
func (s *GormStatsService) RecordCompetition(ctx context.Context, eventID string, results []model.CompetitionResult) error {
	if len(results) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Create(&results).Error; err != nil {
		return fmt.Errorf("RecordCompetition failed at create results: %w", err)
	}

	if s.producer != nil {
		msg := &event.CompetitionFinishedMessage{
			EventID:     eventID,
			WinnerID:    results[0].UserID,
			PlayerCount: len(results),
		}
		data, err := msg.Marshal()
		if err == nil {
			_, _, err = s.producer.Produce(ctx, &sarama.ProducerMessage{
				Topic: event.CompetitionFinishedTopic,
				Key:   sarama.StringEncoder(eventID),
				Value: sarama.ByteEncoder(data),
			})
		}
		if err != nil {
			s.log.Error("failed to publish competition finished message", zap.String("eventId", eventID), zap.Error(err))
		}
	}
	return nil
}

// GetLeaderboard 分页查询全局排行榜, 按胜场降序
func (s *GormStatsService) GetLeaderboard(ctx context.Context, param model.GetLeaderboardParam) (model.GetLeaderboardResponse, error) {
	resp := model.GetLeaderboardResponse{
		Page:     param.Page,
		PageSize: param.PageSize,
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).Count(&total).Error; err != nil {
		return resp, fmt.Errorf("GetLeaderboard failed at count: %w", err)
	}
	resp.Total = int(total)

	var users []model.User
	err := s.db.WithContext(ctx).
		Order("wins DESC, played ASC, id ASC").
		Offset((param.Page - 1) * param.PageSize).
		Limit(param.PageSize).
		Find(&users).Error
	if err != nil {
		return resp, fmt.Errorf("GetLeaderboard failed at query: %w", err)
	}

	resp.List = make([]model.LeaderboardRow, 0, len(users))
	for _, u := range users {
		resp.List = append(resp.List, model.LeaderboardRow{
			UserID:   u.ID,
			Username: u.Username,
			Rank:     u.Rank.String(),
			Wins:     u.Wins,
			Played:   u.Played,
		})
	}
	return resp, nil
}

// GetReplayURL 按房间号取回放对象的预签名下载地址
func (s *GormStatsService) GetReplayURL(ctx context.Context, roomID string) (string, error) {
	var archive model.BattleArchive
	err := s.db.WithContext(ctx).Where("room_id = ?", roomID).First(&archive).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrRoomNotFound
	}
	if err != nil {
		return "", fmt.Errorf("GetReplayURL failed at query archive: %w", err)
	}
	if archive.ReplayObject == "" || s.replays == nil {
		return "", ErrReplayNotFound
	}
	return s.replays.GetPresignedDownloadURL(ctx, archive.ReplayObject, s.urlExpireSeconds)
}

// CleanExpiredArchives 删除早于 before 的对战存档及其回放对象
func (s *GormStatsService) CleanExpiredArchives(ctx context.Context, before time.Time) error {
	var expired []model.BattleArchive
	err := s.db.WithContext(ctx).
		Where("created_at < ?", before).
		Find(&expired).Error
	if err != nil {
		return fmt.Errorf("CleanExpiredArchives failed at query: %w", err)
	}
	if len(expired) == 0 {
		return nil
	}

	ids := make([]uint64, 0, len(expired))
	for _, archive := range expired {
		if archive.ReplayObject != "" && s.replays != nil {
			if err = s.replays.RemoveReplay(ctx, archive.ReplayObject); err != nil {
				// 对象删除失败则保留存档行, 下一轮重试
				s.log.Warn("failed to remove replay object",
					zap.String("roomId", archive.RoomID),
					zap.String("object", archive.ReplayObject),
					zap.Error(err))
				continue
			}
		}
		ids = append(ids, archive.ID)
	}
	if len(ids) == 0 {
		return nil
	}

	if err = s.db.WithContext(ctx).Delete(&model.BattleArchive{}, ids).Error; err != nil {
		return fmt.Errorf("CleanExpiredArchives failed at delete: %w", err)
	}
	s.log.Info("expired battle archives cleaned", zap.Int("count", len(ids)))
	return nil
}

// GetCompetitionResults 按赛事号取最终成绩, 按名次升序
func (s *GormStatsService) GetCompetitionResults(ctx context.Context, eventID string) ([]model.CompetitionResult, error) {
	var results []model.CompetitionResult
	err := s.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("final_rank ASC").
		Find(&results).Error
	if err != nil {
		return nil, fmt.Errorf("GetCompetitionResults failed at query: %w", err)
	}
	return results, nil
}
