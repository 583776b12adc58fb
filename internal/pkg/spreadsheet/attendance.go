package spreadsheet

import (
	"fmt"
	"io"
	"time"

	"github.com/cmlabs-hris/hris-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/report"
	"github.com/xuri/excelize/v2"
)

const (
	SheetName   = "Attendance"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	holidayColor = "#FF0000"
	weekendColor = "#D3D3D3"
)

// DayCode is the one-cell marker of a classified day.
func DayCode(log report.AttendanceDailyLog) string {
	switch log.Status {
	case attendance.StatusPresent:
		return "P"
	case attendance.StatusHalfDay:
		return "H"
	case attendance.StatusHoliday:
		return "HOL"
	case attendance.StatusWeekendOff:
		if log.DayOfWeek == time.Saturday.String() {
			return "SAT"
		}
		return "SUN"
	default:
		return "A"
	}
}

// column is one date of the grid. Late and early columns exist only on working days.
type column struct {
	date    string
	status  int
	late    int
	early   int
	working bool
}

// BuildAttendanceWorkbook lays out one row per employee: a status code per date,
// late and early durations per working day, then the summary counters.
// The caller closes the returned file.
func BuildAttendanceWorkbook(rep report.AttendanceRangeReport) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := fillWorkbook(f, rep); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

// sheetWriter keeps the first error of a run of cell writes.
type sheetWriter struct {
	f   *excelize.File
	err error
}

func (w *sheetWriter) cell(col, row int) string {
	if w.err != nil {
		return ""
	}
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		w.err = fmt.Errorf("failed to address cell: %w", err)
	}
	return name
}

func (w *sheetWriter) value(col, row int, v interface{}) {
	if cell := w.cell(col, row); w.err == nil {
		if err := w.f.SetCellValue(SheetName, cell, v); err != nil {
			w.err = fmt.Errorf("failed to set cell %s: %w", cell, err)
		}
	}
}

func (w *sheetWriter) style(col, row, style int) {
	if cell := w.cell(col, row); w.err == nil {
		if err := w.f.SetCellStyle(SheetName, cell, cell, style); err != nil {
			w.err = fmt.Errorf("failed to style cell %s: %w", cell, err)
		}
	}
}

func (w *sheetWriter) width(col int, width float64) {
	if w.err != nil {
		return
	}
	name, err := excelize.ColumnNumberToName(col)
	if err != nil {
		w.err = fmt.Errorf("failed to address column: %w", err)
		return
	}
	if err := w.f.SetColWidth(SheetName, name, name, width); err != nil {
		w.err = fmt.Errorf("failed to size column %s: %w", name, err)
	}
}

func fillWorkbook(f *excelize.File, rep report.AttendanceRangeReport) error {
	index, err := f.NewSheet(SheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	holidayStyle, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{holidayColor}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create holiday style: %w", err)
	}
	weekendStyle, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{weekendColor}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create weekend style: %w", err)
	}

	headers := []string{"Name", "ID"}
	widths := []float64{22, 12}

	var columns []column
	if len(rep.Employees) > 0 {
		for _, log := range rep.Employees[0].DailyLogs {
			col := column{date: log.Date, status: len(headers) + 1, working: !log.IsWeekend && !log.IsHoliday}
			headers = append(headers, log.Date)
			widths = append(widths, 11)
			if col.working {
				col.late = len(headers) + 1
				headers = append(headers, "Late_"+log.Date)
				col.early = len(headers) + 1
				headers = append(headers, "Early_"+log.Date)
				widths = append(widths, 17, 17)
			}
			columns = append(columns, col)
		}
	}
	summaryStart := len(headers) + 1
	headers = append(headers, "Total Working Days", "Present Days", "Half Days", "Absent Days")
	widths = append(widths, 18, 14, 12, 12)

	w := &sheetWriter{f: f}
	for i, h := range headers {
		w.value(i+1, 1, h)
		w.style(i+1, 1, headerStyle)
		w.width(i+1, widths[i])
	}

	for r, emp := range rep.Employees {
		row := r + 2
		w.value(1, row, emp.EmployeeName)
		w.value(2, row, emp.EmployeeID)

		for i, log := range emp.DailyLogs {
			if i >= len(columns) {
				break
			}
			col := columns[i]
			w.value(col.status, row, DayCode(log))

			switch {
			case log.IsHoliday:
				w.style(col.status, row, holidayStyle)
			case log.IsWeekend && log.Status == attendance.StatusWeekendOff:
				w.style(col.status, row, weekendStyle)
			}

			if col.working {
				w.value(col.late, row, log.Late)
				w.value(col.early, row, log.Early)
			}
		}

		w.value(summaryStart, row, emp.Summary.WorkingDays)
		w.value(summaryStart+1, row, emp.Summary.PresentDays)
		w.value(summaryStart+2, row, emp.Summary.HalfDays)
		w.value(summaryStart+3, row, emp.Summary.AbsentDays)
	}

	return w.err
}

// WriteAttendanceReport streams the workbook of rep to w.
func WriteAttendanceReport(w io.Writer, rep report.AttendanceRangeReport) error {
	f, err := BuildAttendanceWorkbook(rep)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// FileName is the download name of a report export.
func FileName(rep report.AttendanceRangeReport) string {
	return fmt.Sprintf("attendance_%s_to_%s.xlsx", rep.StartDate, rep.EndDate)
}
