package export

import (
	"strings"

	"frontdesk/internal/calendar"

	"github.com/xuri/excelize/v2"
)

const (
	CalendarSheet = "Calendar"
	stayColor     = "23783B"
	noteAuthor    = "Front desk"
	firstDayCol   = 3
)

// Calendar renders the room grid. Each stay is a merged green block
// labelled with the guest and carrying the full note as a comment.
func Calendar(g *calendar.Grid) (*Workbook, error) {
	wb, err := NewWorkbook()
	if err != nil {
		return nil, err
	}
	if err := writeCalendar(wb, g); err != nil {
		wb.Close()
		return nil, err
	}
	return wb, nil
}

func writeCalendar(wb *Workbook, g *calendar.Grid) error {
	if err := wb.AddSheet(CalendarSheet); err != nil {
		return err
	}
	if err := wb.WriteHeader(append([]string{"Room", "Category"}, g.Days...)); err != nil {
		return err
	}

	style, err := wb.file.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{stayColor}, Pattern: 1},
		Font:      &excelize.Font{Color: "FFFFFF"},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}

	for _, row := range g.Rows {
		line := wb.Row()
		if err := wb.WriteRow([]any{row.Room, row.Category}); err != nil {
			return err
		}
		for _, stay := range row.Stays {
			if err := drawStay(wb, line, stay, style); err != nil {
				return err
			}
		}
	}
	return nil
}

func drawStay(wb *Workbook, line int, stay calendar.Stay, style int) error {
	first, err := excelize.CoordinatesToCellName(firstDayCol+stay.StartIndex, line)
	if err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(firstDayCol+stay.EndIndex, line)
	if err != nil {
		return err
	}
	sheet := wb.currentSheet

	if first != last {
		if err := wb.file.MergeCell(sheet, first, last); err != nil {
			return err
		}
	}
	guest, _, _ := strings.Cut(stay.Note, "\n")
	if err := wb.file.SetCellValue(sheet, first, strings.TrimPrefix(guest, "Guest: ")); err != nil {
		return err
	}
	if err := wb.file.SetCellStyle(sheet, first, last, style); err != nil {
		return err
	}
	return wb.file.AddComment(sheet, excelize.Comment{
		Cell:      first,
		Author:    noteAuthor,
		Paragraph: []excelize.RichTextRun{{Text: stay.Note}},
	})
}
