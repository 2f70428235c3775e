package common

import (
	"context"
	"fmt"

	"github.com/samarth494/Capstone-sub000/model"
	"gorm.io/gorm"
)

// FetchResults 按名次分页拉取一场赛事的最终成绩
func FetchResults(db *gorm.DB, ctx context.Context, eventID string, page, pageSize int) ([]model.CompetitionResult, error) {
	var results []model.CompetitionResult
	err := db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("final_rank ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&results).Error
	if err != nil {
		return nil, fmt.Errorf("fetch competition results failed: %w", err)
	}
	return results, nil
}
