package export

import (
	"frontdesk/internal/availability"
)

// AvailabilitySheet is the sheet name of the availability workbook.
const AvailabilitySheet = "Availability"

// Availability lays out the category matrix and then one block per channel,
// separated by a blank row, the way the availability sheet looks.
func Availability(m *availability.Matrix, otas []*availability.OTAMatrix) (*Workbook, error) {
	wb, err := NewWorkbook()
	if err != nil {
		return nil, err
	}
	if err := writeAvailability(wb, m, otas); err != nil {
		wb.Close()
		return nil, err
	}
	return wb, nil
}

func writeAvailability(wb *Workbook, m *availability.Matrix, otas []*availability.OTAMatrix) error {
	if err := wb.AddSheet(AvailabilitySheet); err != nil {
		return err
	}
	labels := m.Labels()

	if err := wb.WriteHeader(append([]string{"Category"}, labels...)); err != nil {
		return err
	}
	for _, cat := range m.Categories {
		if err := wb.WriteRow(countRow(cat, m.Counts[cat])); err != nil {
			return err
		}
	}

	for _, ota := range otas {
		wb.SkipRow()
		if err := wb.WriteHeader(append([]string{ota.Prefix + "Category"}, labels...)); err != nil {
			return err
		}
		for _, b := range ota.Buckets {
			if err := wb.WriteRow(countRow(b, ota.Counts[b])); err != nil {
				return err
			}
		}
	}
	return nil
}

func countRow(name string, counts []int) []any {
	row := make([]any, 0, len(counts)+1)
	row = append(row, name)
	for _, c := range counts {
		row = append(row, c)
	}
	return row
}
