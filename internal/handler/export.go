package handler

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"time"

	"github.com/staff-attendance-api/internal/dto"
	"github.com/xuri/excelize/v2"
)

const exportTimeLayout = "15:04:05"

var exportHeader = []string{"ID", "Date", "Staff ID", "Name", "Surname", "Email", "Department", "Arrival", "Departure", "Status"}

func exportRow(a *dto.AttendanceResponse) []string {
	return []string{
		strconv.FormatInt(a.ID, 10),
		a.Date,
		strconv.FormatInt(a.StaffID, 10),
		a.StaffName,
		a.StaffSurname,
		a.StaffEmail,
		a.DepartmentName,
		clockTime(a.ArrivalTime),
		clockTime(a.DepartureTime),
		string(a.Status),
	}
}

func exportAttendanceCSV(items []dto.AttendanceResponse) ([]byte, error) {
	buf := new(bytes.Buffer)
	w := csv.NewWriter(buf)
	_ = w.Write(exportHeader)
	for i := range items {
		_ = w.Write(exportRow(&items[i]))
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func exportAttendanceXLSX(items []dto.AttendanceResponse) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Attendance"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	_ = f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	for c, v := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		_ = f.SetCellValue(sheet, cell, v)
	}
	for r := range items {
		row := exportRow(&items[r])
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			// ID и staff_id пишем числами, остальное строками
			if c == 0 || c == 2 {
				n, _ := strconv.ParseInt(v, 10, 64)
				_ = f.SetCellValue(sheet, cell, n)
				continue
			}
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 8)
	_ = f.SetColWidth(sheet, "B", "B", 12)
	_ = f.SetColWidth(sheet, "C", "C", 10)
	_ = f.SetColWidth(sheet, "D", "E", 18)
	_ = f.SetColWidth(sheet, "F", "F", 28)
	_ = f.SetColWidth(sheet, "G", "G", 20)
	_ = f.SetColWidth(sheet, "H", "I", 12)
	_ = f.SetColWidth(sheet, "J", "J", 22)

	style, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
	})
	_ = f.SetCellStyle(sheet, "A1", "J1", style)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func clockTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(exportTimeLayout)
}
