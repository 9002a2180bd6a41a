package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/limaJavier/scheduler/pkg/model"
	"github.com/xuri/excelize/v2"
)

const (
	maxSheetName = 31
	defaultSheet = "Sheet1"
)

var sheetNameReplacer = strings.NewReplacer(":", "-", "\\", "-", "/", "-", "?", "", "*", "", "[", "(", "]", ")")

// WriteWorkbook renders one sheet per class: slots as rows, days as columns and
// "subject / faculty / room" in every filled cell
func WriteWorkbook(timetable *model.Timetable, w io.Writer) error {
	file, err := build(timetable)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := file.Write(w); err != nil {
		return fmt.Errorf("cannot write workbook: %w", err)
	}
	return nil
}

// SaveWorkbook writes the workbook of WriteWorkbook to a file
func SaveWorkbook(timetable *model.Timetable, path string) error {
	file, err := build(timetable)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := file.SaveAs(path); err != nil {
		return fmt.Errorf("cannot save workbook %v: %w", path, err)
	}
	return nil
}

// SheetNames returns the sheet of every class in timetable order
func SheetNames(classes []string) []string {
	names := make([]string, 0, len(classes))
	used := make(map[string]bool, len(classes))
	for _, class := range classes {
		base := strings.TrimSpace(sheetNameReplacer.Replace(class))
		if base == "" {
			base = "Class"
		}
		base = truncate(base, maxSheetName)

		name := base
		for i := 2; used[strings.ToLower(name)]; i++ {
			suffix := fmt.Sprintf(" (%d)", i)
			name = truncate(base, maxSheetName-len(suffix)) + suffix
		}
		used[strings.ToLower(name)] = true
		names = append(names, name)
	}
	return names
}

func truncate(name string, length int) string {
	runes := []rune(name)
	if len(runes) <= length {
		return name
	}
	return string(runes[:length])
}

func build(timetable *model.Timetable) (*excelize.File, error) {
	file := excelize.NewFile()

	headerStyle, err := file.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("cannot create header style: %w", err)
	}

	classes := timetable.Classes()
	sheets := SheetNames(classes)
	for i, class := range classes {
		if err := writeSheet(file, sheets[i], class, timetable, headerStyle); err != nil {
			file.Close()
			return nil, err
		}
	}

	if len(classes) > 0 {
		index, err := file.GetSheetIndex(sheets[0])
		if err == nil {
			file.SetActiveSheet(index)
		}
		if !containsSheet(sheets, defaultSheet) {
			if err := file.DeleteSheet(defaultSheet); err != nil {
				file.Close()
				return nil, fmt.Errorf("cannot remove default sheet: %w", err)
			}
		}
	}
	return file, nil
}

func containsSheet(sheets []string, name string) bool {
	for _, sheet := range sheets {
		if strings.EqualFold(sheet, name) {
			return true
		}
	}
	return false
}

func writeSheet(file *excelize.File, sheet, class string, timetable *model.Timetable, headerStyle int) error {
	if _, err := file.NewSheet(sheet); err != nil {
		return fmt.Errorf("cannot create sheet for class %q: %w", class, err)
	}

	// Header row: class name, then one column per day
	if err := setCell(file, sheet, 1, 1, class); err != nil {
		return err
	}
	for column, day := range model.Days {
		if err := setCell(file, sheet, column+2, 1, day.String()); err != nil {
			return err
		}
	}
	lastHeader, err := excelize.CoordinatesToCellName(len(model.Days)+1, 1)
	if err != nil {
		return err
	}
	if err := file.SetCellStyle(sheet, "A1", lastHeader, headerStyle); err != nil {
		return fmt.Errorf("cannot style header of %q: %w", sheet, err)
	}

	for row, slot := range timetable.Slots() {
		if err := setCell(file, sheet, 1, row+2, slot.String()); err != nil {
			return err
		}
		for column, day := range model.Days {
			assignment, err := timetable.Get(model.Key{Class: class, Day: day, Slot: slot})
			if err != nil {
				return err
			} else if assignment == nil {
				continue
			}
			if err := setCell(file, sheet, column+2, row+2, CellText(*assignment)); err != nil {
				return err
			}
		}
	}

	lastColumn, err := excelize.ColumnNumberToName(len(model.Days) + 1)
	if err != nil {
		return err
	}
	return file.SetColWidth(sheet, "B", lastColumn, 28)
}

func setCell(file *excelize.File, sheet string, column, row int, value string) error {
	cell, err := excelize.CoordinatesToCellName(column, row)
	if err != nil {
		return err
	}
	if err := file.SetCellValue(sheet, cell, value); err != nil {
		return fmt.Errorf("cannot write cell %v of %q: %w", cell, sheet, err)
	}
	return nil
}

// CellText is the rendering of an assignment in a workbook cell
func CellText(assignment model.Assignment) string {
	parts := []string{assignment.Subject, assignment.Faculty}
	if assignment.Room != "" {
		parts = append(parts, assignment.Room)
	}
	return strings.Join(parts, " / ")
}
