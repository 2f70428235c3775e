package arena

import (
	"context"

	"github.com/samarth494/Capstone-sub000/service"
	"go.uber.org/zap"
)

// MatchmakerSweeper 周期触发一轮匹配扫描
type MatchmakerSweeper struct {
	matchmaker *service.Matchmaker
	log        *zap.Logger
}

func NewMatchmakerSweeper(matchmaker *service.Matchmaker, log *zap.Logger) *MatchmakerSweeper {
	return &MatchmakerSweeper{
		matchmaker: matchmaker,
		log:        log,
	}
}

func (s *MatchmakerSweeper) RunSweep(ctx context.Context) error {
	return s.matchmaker.Sweep(ctx)
}
