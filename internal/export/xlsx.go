// Package export renders attendance sheets as spreadsheets.
package export

import (
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"teacherdash/internal/attendance"
	"teacherdash/internal/model"
)

// SheetName is the worksheet holding the roster.
const SheetName = "Davomat"

// ContentType is the MIME type of the workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var header = []interface{}{"#", "ID", "Ism", "Familiya", "Holat"}

// Filename is the download name for a group's attendance on date.
func Filename(g model.Group, date string) string {
	code := g.GroupID
	if code == "" {
		code = g.ID
	}
	code = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == '"' || r == ' ' {
			return '_'
		}
		return r
	}, code)
	return fmt.Sprintf("davomat_%s_%s.xlsx", code, date)
}

// Attendance writes one row per student with the stored status label, or
// "Belgilanmagan" when no record exists, followed by the totals.
func Attendance(w io.Writer, g model.Group, sheet *attendance.Sheet) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("export: closing workbook: %v", err)
		}
	}()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return errors.Wrap(err, "naming sheet")
	}
	if err := f.SetSheetRow(SheetName, "A1", &[]interface{}{g.DisplayName(), sheet.Date}); err != nil {
		return errors.Wrap(err, "writing title")
	}
	if err := f.SetSheetRow(SheetName, "A3", &header); err != nil {
		return errors.Wrap(err, "writing header")
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return errors.Wrap(err, "creating style")
	}
	if err := f.SetCellStyle(SheetName, "A1", "E3", bold); err != nil {
		return errors.Wrap(err, "styling header")
	}

	row := 4
	for i, st := range sheet.Students {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return errors.Wrap(err, "addressing row")
		}
		values := []interface{}{i + 1, st.StudentID, st.FirstName, st.LastName, sheet.Badge(st.ID)}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return errors.Wrapf(err, "writing row %d", row)
		}
		row++
	}

	sum := sheet.Summary()
	totals := [][]interface{}{
		{model.Present.Label(), sum.Present},
		{model.Absent.Label(), sum.Absent},
		{model.Late.Label(), sum.Late},
		{model.Excused.Label(), sum.Excused},
		{attendance.Unmarked, sum.Unmarked},
	}
	row++
	for _, t := range totals {
		cell, _ := excelize.CoordinatesToCellName(4, row)
		if err := f.SetSheetRow(SheetName, cell, &t); err != nil {
			return errors.Wrap(err, "writing totals")
		}
		row++
	}

	if err := f.SetColWidth(SheetName, "B", "E", 18); err != nil {
		return errors.Wrap(err, "sizing columns")
	}
	return errors.Wrap(f.Write(w), "writing workbook")
}
