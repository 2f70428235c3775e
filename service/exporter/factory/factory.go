package factory

import (
	"github.com/samarth494/Capstone-sub000/service/exporter"
	"github.com/samarth494/Capstone-sub000/service/exporter/csv"
	"github.com/samarth494/Capstone-sub000/service/exporter/xlsx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ResultsExporterType string

const (
	CSVResultsExporter  ResultsExporterType = "csv"
	XLSXResultsExporter ResultsExporterType = "xlsx"
)

var ExporterSuffixMap = map[ResultsExporterType]string{
	CSVResultsExporter:  ".csv",
	XLSXResultsExporter: ".xlsx",
}

var ExporterContentTypeMap = map[ResultsExporterType]string{
	CSVResultsExporter:  "text/csv",
	XLSXResultsExporter: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

type ResultsExporterFactory struct {
	factory map[ResultsExporterType]exporter.ResultsExporter
	db      *gorm.DB
	log     *zap.Logger
}

func NewResultsExporterFactory(db *gorm.DB, log *zap.Logger) *ResultsExporterFactory {
	return &ResultsExporterFactory{
		factory: map[ResultsExporterType]exporter.ResultsExporter{
			CSVResultsExporter:  csv.NewStreamableCSVResultsExporter(db, log),
			XLSXResultsExporter: xlsx.NewStreamableXLSXResultsExporter(db, log),
		},
		db:  db,
		log: log,
	}
}

func (f *ResultsExporterFactory) GetResultsExporter(exporterType ResultsExporterType) exporter.ResultsExporter {
	if exp, exists := f.factory[exporterType]; exists {
		return exp
	}
	return nil
}
