package models

import "time"

type ExportFormat string

const (
	ExportXLSX ExportFormat = "xlsx"
	ExportCSV  ExportFormat = "csv"
)

type ExportRequest struct {
	Format   ExportFormat `json:"format" form:"format" validate:"omitempty,export_format"`
	DateFrom *time.Time   `json:"date_from" form:"date_from"`
	DateTo   *time.Time   `json:"date_to" form:"date_to"`
}
