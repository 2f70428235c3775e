package csv

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/samarth494/Capstone-sub000/model"
	"github.com/samarth494/Capstone-sub000/service/exporter"
	"github.com/samarth494/Capstone-sub000/service/exporter/common"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type StreamableCSVResultsExporter struct {
	log *zap.Logger
	db  *gorm.DB
}

var _ exporter.ResultsExporter = (*StreamableCSVResultsExporter)(nil)

func NewStreamableCSVResultsExporter(db *gorm.DB, log *zap.Logger) *StreamableCSVResultsExporter {
	return &StreamableCSVResultsExporter{
		db:  db,
		log: log,
	}
}

func (e *StreamableCSVResultsExporter) Export(ctx context.Context, eventID string, writer io.Writer) error {
	ectx, cancel := context.WithCancel(ctx)
	defer cancel()

	batchSize := 1000
	page := 1
	resultCh := make(chan []model.CompetitionResult, 3)
	errCh := make(chan error, 1)

	go func() {
		defer close(resultCh)
		defer close(errCh)
		for {
			select {
			case <-ectx.Done():
				errCh <- ectx.Err()
				return
			default:
				results, errGoroutine := common.FetchResults(e.db, ectx, eventID, page, batchSize)
				if errGoroutine != nil {
					errCh <- errGoroutine
					return
				}
				if len(results) == 0 {
					return
				}
				resultCh <- results
				page++
			}
		}
	}()

	csvWriter := csv.NewWriter(writer)
	defer csvWriter.Flush()

	if err := e.writeHeader(csvWriter); err != nil {
		return fmt.Errorf("write header failed: %w", err)
	}

	var goroutineErr error
	for {
		select {
		case results, ok := <-resultCh:
			if !ok {
				if goroutineErr != nil {
					return fmt.Errorf("sub goroutine fetch results failed: %w", goroutineErr)
				}
				return nil
			}
			if err := e.processResults(csvWriter, results); err != nil {
				return fmt.Errorf("process results failed: %w", err)
			}
		case err := <-errCh:
			if err != nil {
				goroutineErr = err
			}
		}
	}
}

func (e *StreamableCSVResultsExporter) processResults(csvWriter *csv.Writer, results []model.CompetitionResult) error {
	records := make([][]string, 0, len(results))
	for _, r := range results {
		records = append(records, []string{
			strconv.Itoa(r.FinalRank),
			strconv.FormatUint(r.UserID, 10),
			r.Username,
			strconv.Itoa(r.TotalScore),
			r.Levels,
		})
	}
	return csvWriter.WriteAll(records)
}

func (e *StreamableCSVResultsExporter) writeHeader(csvWriter *csv.Writer) error {
	headers := []string{
		"名次",
		"用户ID",
		"用户名",
		"总分",
		"各关卡得分",
	}
	return csvWriter.Write(headers)
}
