package export_branches

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/m04kA/SMC-BranchDirectory/internal/domain"
	"github.com/m04kA/SMC-BranchDirectory/internal/service/branches/models"
)

const sheetName = "Branches"

var exportHeaders = []string{
	"ID",
	"Department ID",
	"Name",
	"Type",
	"Temporarily closed",
	"Base city",
	"City",
	"Full address",
	"Latitude",
	"Longitude",
	"Phones",
	"Extra services",
	"Schedule",
	"Last updated",
}

// buildWorkbook строит XLSX со списком отделений, по строке на отделение
func buildWorkbook(list *models.BranchListResponse) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(sheetName, "A1", &exportHeaders); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
	if err := f.SetCellStyle(sheetName, "A1", lastHeader, style); err != nil {
		return nil, fmt.Errorf("apply header style: %w", err)
	}

	for i, b := range list.Branches {
		row := []interface{}{
			b.ID,
			b.ExternalID,
			b.Name,
			b.Type,
			yesNo(b.IsTemporaryClosed),
			b.Address.BaseCity,
			b.Address.City,
			b.Address.FullAddress,
			b.Address.Latitude,
			b.Address.Longitude,
			joinPhones(b.Phones),
			strings.Join(b.ExtraServices, ", "),
			formatSchedule(b.Schedules),
			b.LastUpdated.Format(domain.DateFormat + " " + domain.TimeFormat),
		}

		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	_ = f.SetColWidth(sheetName, "C", "C", 30)
	_ = f.SetColWidth(sheetName, "F", "G", 18)
	_ = f.SetColWidth(sheetName, "H", "H", 45)
	_ = f.SetColWidth(sheetName, "K", "L", 30)
	_ = f.SetColWidth(sheetName, "M", "M", 60)

	return f, nil
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func joinPhones(phones []models.PhoneResponse) string {
	parts := make([]string, 0, len(phones))
	for _, p := range phones {
		parts = append(parts, p.FullNumber)
	}
	return strings.Join(parts, ", ")
}

// formatSchedule расписание основного рабочего места одной строкой:
// "Monday 09:00-18:00 (13:00-14:00); Tuesday 09:00-18:00"
func formatSchedule(schedules []models.ScheduleResponse) string {
	if len(schedules) == 0 {
		return ""
	}

	schedule := schedules[0]
	for _, s := range schedules {
		if s.Workstation == domain.DefaultWorkstation {
			schedule = s
			break
		}
	}

	days := make([]string, 0, len(schedule.Days))
	for _, d := range schedule.Days {
		day := fmt.Sprintf("%s %s-%s", d.Day, d.From, d.To)
		if len(d.Breaks) > 0 {
			breaks := make([]string, 0, len(d.Breaks))
			for _, br := range d.Breaks {
				breaks = append(breaks, br.From+"-"+br.To)
			}
			day += " (" + strings.Join(breaks, ", ") + ")"
		}
		days = append(days, day)
	}

	return strings.Join(days, "; ")
}
