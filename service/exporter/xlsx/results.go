package xlsx

import (
	"context"
	"fmt"
	"io"

	"github.com/samarth494/Capstone-sub000/model"
	"github.com/samarth494/Capstone-sub000/service/exporter"
	"github.com/samarth494/Capstone-sub000/service/exporter/common"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type StreamableXLSXResultsExporter struct {
	log *zap.Logger
	db  *gorm.DB
}

var _ exporter.ResultsExporter = (*StreamableXLSXResultsExporter)(nil)

func NewStreamableXLSXResultsExporter(db *gorm.DB, log *zap.Logger) *StreamableXLSXResultsExporter {
	return &StreamableXLSXResultsExporter{
		db:  db,
		log: log,
	}
}

func (e *StreamableXLSXResultsExporter) Export(ctx context.Context, eventID string, writer io.Writer) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			e.log.Error("close excel file failed", zap.Error(err))
		}
	}()

	sheetName := "成绩"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("create sheet failed: %w", err)
	}
	f.SetActiveSheet(index)

	if err = e.writeHeader(f, sheetName); err != nil {
		return fmt.Errorf("write header failed: %w", err)
	}

	batchSize := 1000
	page := 1
	row := 2
	for {
		results, err := common.FetchResults(e.db, ctx, eventID, page, batchSize)
		if err != nil {
			return fmt.Errorf("fetch results failed: %w", err)
		}
		if len(results) == 0 {
			break
		}
		for _, r := range results {
			if err = e.writeRow(f, sheetName, row, r); err != nil {
				return fmt.Errorf("write row failed: %w", err)
			}
			row++
		}
		page++
	}

	if err = f.Write(writer); err != nil {
		return fmt.Errorf("write excel file failed: %w", err)
	}
	return nil
}

func (e *StreamableXLSXResultsExporter) writeRow(f *excelize.File, sheetName string, row int, r model.CompetitionResult) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheetName, cell, &[]any{
		r.FinalRank,
		r.UserID,
		r.Username,
		r.TotalScore,
		r.Levels,
	})
}

func (e *StreamableXLSXResultsExporter) writeHeader(f *excelize.File, sheetName string) error {
	return f.SetSheetRow(sheetName, "A1", &[]any{
		"名次",
		"用户ID",
		"用户名",
		"总分",
		"各关卡得分",
	})
}
