// Package export renders availability and calendar grids as xlsx workbooks.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

// ContentType is the media type of xlsx downloads.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Writer streams a finished workbook.
type Writer interface {
	Write(w io.Writer) error
	Close() error
}

// Workbook is a sequential xlsx writer: sheets are filled row by row.
type Workbook struct {
	file         *excelize.File
	currentSheet string
	currentRow   int
	boldStyle    int
}

// NewWorkbook creates an empty workbook.
func NewWorkbook() (*Workbook, error) {
	f := excelize.NewFile()
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}
	return &Workbook{file: f, boldStyle: bold}, nil
}

// AddSheet starts a new sheet; the first call renames the default one.
func (w *Workbook) AddSheet(name string) error {
	// Excel limit
	if len(name) > 31 {
		name = name[:31]
	}

	if w.currentSheet == "" {
		if err := w.file.SetSheetName("Sheet1", name); err != nil {
			return err
		}
	} else if _, err := w.file.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %s: %w", name, err)
	}

	w.currentSheet = name
	w.currentRow = 1
	return nil
}

// Row returns the 1-based row the next write goes to.
func (w *Workbook) Row() int {
	return w.currentRow
}

// WriteHeader writes a bold row.
func (w *Workbook) WriteHeader(columns []string) error {
	row := make([]any, len(columns))
	for i, c := range columns {
		row[i] = c
	}
	start := w.currentRow
	if err := w.WriteRow(row); err != nil {
		return err
	}
	if len(columns) == 0 {
		return nil
	}
	first, _ := excelize.CoordinatesToCellName(1, start)
	last, _ := excelize.CoordinatesToCellName(len(columns), start)
	return w.file.SetCellStyle(w.currentSheet, first, last, w.boldStyle)
}

// WriteRow writes values from column A.
func (w *Workbook) WriteRow(row []any) error {
	if w.currentSheet == "" {
		return fmt.Errorf("no active sheet")
	}
	first, err := excelize.CoordinatesToCellName(1, w.currentRow)
	if err != nil {
		return err
	}
	if err := w.file.SetSheetRow(w.currentSheet, first, &row); err != nil {
		return err
	}
	w.currentRow++
	return nil
}

// SkipRow leaves a blank row.
func (w *Workbook) SkipRow() {
	w.currentRow++
}

func (w *Workbook) Write(wr io.Writer) error {
	return w.file.Write(wr)
}

// SaveAs writes the workbook to disk.
func (w *Workbook) SaveAs(path string) error {
	return w.file.SaveAs(path)
}

func (w *Workbook) Close() error {
	return w.file.Close()
}

// Filename names a download, e.g. "availability_2025-01-01_2025-01-31.xlsx".
func Filename(kind string, from, to time.Time) string {
	return fmt.Sprintf("%s_%s_%s.xlsx", kind, from.Format("2006-01-02"), to.Format("2006-01-02"))
}
