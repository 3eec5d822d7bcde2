package sheet

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/garyjia/field-report/internal/domain/entity"
	"github.com/garyjia/field-report/internal/domain/report"
)

const (
	SummarySheet = "Report"
	PhotoSheet   = "Photos"

	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	FileSuffix  = ".fields.xlsx"

	timestampLayout = "2006-01-02 15:04:05"
)

// Input is everything written into the field sheet.
type Input struct {
	DocumentID   string
	Title        string
	Organization string
	PreparedBy   string
	Date         time.Time
	GeneratedAt  time.Time
	Rows         []report.FieldRow
	Notes        string
	Photos       []entity.PhotoRef
}

// Writer produces a spreadsheet copy of the exported field values.
type Writer struct {
	logger *zap.Logger
}

// NewWriter creates a new field sheet writer
func NewWriter(logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{logger: logger}
}

// Write builds the workbook and returns it serialized.
func (w *Writer) Write(in Input) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	// the default sheet of a new workbook is "Sheet1"
	if err := f.SetSheetName(f.GetSheetName(0), SummarySheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(PhotoSheet); err != nil {
		return nil, fmt.Errorf("failed to create photo sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}

	date := "undated"
	if !in.Date.IsZero() {
		date = in.Date.Format("2006-01-02")
	}
	header := [][2]string{
		{"Title", in.Title},
		{"Organization", in.Organization},
		{"Prepared by", in.PreparedBy},
		{"Date", date},
		{"Generated at", in.GeneratedAt.Format(timestampLayout)},
		{"Document ID", in.DocumentID},
	}

	row := 1
	for _, kv := range header {
		w.setRow(f, SummarySheet, row, kv[0], kv[1])
		row++
	}
	row++
	w.setRow(f, SummarySheet, row, "Field", "Value")
	w.styleRow(f, SummarySheet, row, bold)
	row++
	for _, r := range in.Rows {
		w.setRow(f, SummarySheet, row, r.Label, r.Value)
		row++
	}
	if in.Notes != "" {
		row++
		w.setRow(f, SummarySheet, row, "Notes", in.Notes)
	}
	if err := f.SetColWidth(SummarySheet, "A", "A", 28); err != nil {
		w.logger.Warn("Failed to set column width", zap.Error(err))
	}
	if err := f.SetColWidth(SummarySheet, "B", "B", 64); err != nil {
		w.logger.Warn("Failed to set column width", zap.Error(err))
	}

	w.setRow(f, PhotoSheet, 1, "#", "Reference", "Photo ID", "Captured at", "File name")
	w.styleRow(f, PhotoSheet, 1, bold)
	for i, p := range in.Photos {
		photo := entity.Photo{ID: p.ID}
		captured := ""
		if !p.CapturedAt.IsZero() {
			captured = p.CapturedAt.Format(timestampLayout)
		}
		w.setRow(f, PhotoSheet, i+2, fmt.Sprint(i+1), photo.ShortID(), p.ID, captured, p.FileName)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	w.logger.Debug("Field sheet written",
		zap.Int("fields", len(in.Rows)),
		zap.Int("photos", len(in.Photos)),
		zap.Int("bytes", buf.Len()))

	return buf.Bytes(), nil
}

// setRow writes values into consecutive columns starting at A
func (w *Writer) setRow(f *excelize.File, sheet string, row int, values ...string) {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		w.logger.Warn("Invalid cell coordinates", zap.Int("row", row), zap.Error(err))
		return
	}
	vals := make([]interface{}, len(values))
	for i, v := range values {
		vals[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &vals); err != nil {
		w.logger.Warn("Failed to set row values",
			zap.String("sheet", sheet),
			zap.Int("row", row),
			zap.Error(err))
	}
}

func (w *Writer) styleRow(f *excelize.File, sheet string, row, style int) {
	if err := f.SetRowStyle(sheet, row, row, style); err != nil {
		w.logger.Warn("Failed to style row", zap.String("sheet", sheet), zap.Int("row", row), zap.Error(err))
	}
}
