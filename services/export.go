package services

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/tdngoc/arcade-backend/models"
)

// BuildCourseRosterXLSX dựng file Excel danh sách học viên của một khóa học
func BuildCourseRosterXLSX(course *models.Course, enrollments []models.Enrollment) (*excelize.File, error) {
	f := excelize.NewFile()

	sheet := "Học viên"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"STT", "Họ tên", "Username", "Email", "Ngày ghi danh", "Tiến độ (%)", "Hoàn thành"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
	})
	if err == nil {
		f.SetCellStyle(sheet, "A1", "G1", headerStyle)
	}

	for i, e := range enrollments {
		row := i + 2
		completed := "Chưa"
		if e.Completed {
			completed = "Rồi"
		}
		values := []interface{}{
			i + 1,
			e.Student.FullNameOrUsername(),
			e.Student.Username,
			e.Student.Email,
			e.EnrolledAt.Format("02/01/2006"),
			fmt.Sprintf("%.1f", e.ProgressPercentage),
			completed,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	f.SetColWidth(sheet, "B", "B", 25)
	f.SetColWidth(sheet, "C", "D", 28)
	f.SetColWidth(sheet, "E", "G", 14)

	return f, nil
}
