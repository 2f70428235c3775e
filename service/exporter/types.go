package exporter

import (
	"context"
	"io"
)

// ResultsExporter 赛事成绩导出器, 流式写出避免整表驻留内存
type ResultsExporter interface {
	Export(ctx context.Context, eventID string, writer io.Writer) error
}
