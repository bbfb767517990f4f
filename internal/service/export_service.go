package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"shiftdesk/backend/internal/model"
	"shiftdesk/backend/internal/repository"
)

// ExportService renders schedules for consumption outside the API:
// spreadsheets for branch managers, iCalendar feeds for employees.
type ExportService interface {
	// BranchAssignmentsXLSX renders every active assignment of a branch's
	// employees within the window as a spreadsheet.
	BranchAssignmentsXLSX(ctx context.Context, branchID, startDate, endDate string) (*bytes.Buffer, error)
	// EmployeeCalendarICS renders one employee's working days within the
	// window as an iCalendar feed, one event per shift occurrence.
	EmployeeCalendarICS(ctx context.Context, employeeID, startDate, endDate string) (string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService creates an ExportService.
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

func (s *exportService) BranchAssignmentsXLSX(ctx context.Context, branchID, startDate, endDate string) (*bytes.Buffer, error) {
	start, end, err := parseExportWindow(startDate, endDate)
	if err != nil {
		return nil, err
	}

	employees, err := s.repo.Employee.ListActiveByBranch(ctx, branchID)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(employees))
	ids := make([]string, 0, len(employees))
	for i := range employees {
		names[employees[i].EmployeeID] = employees[i].Name
		ids = append(ids, employees[i].EmployeeID)
	}

	assignments, err := s.repo.Assignment.ListActiveByEmployees(ctx, ids)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Assignments"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Employee", "Shift", "Start Date", "End Date", "Times", "Auto Generated", "Notes"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for i := range assignments {
		a := &assignments[i]
		if !rangesOverlap(a.StartDate, a.EndDate, start, &end) {
			continue
		}

		endStr := "open-ended"
		if a.EndDate != nil {
			endStr = a.EndDate.Format(dateLayout)
		}
		shiftName, times := "", ""
		if a.Shift != nil {
			shiftName = a.Shift.Name
			times = a.Shift.StartTime + "-" + a.Shift.EndTime
			if a.Shift.IsOvernight {
				times += " (overnight)"
			}
		}

		values := []interface{}{
			names[a.EmployeeID],
			shiftName,
			a.StartDate.Format(dateLayout),
			endStr,
			times,
			a.AutoGenerated,
			a.Notes,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(sheet, cell, v)
		}
		row++
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		s.logger.Error("spreadsheet render failed", zap.String("branch_id", branchID), zap.Error(err))
		return nil, err
	}
	return buf, nil
}

func (s *exportService) EmployeeCalendarICS(ctx context.Context, employeeID, startDate, endDate string) (string, error) {
	start, end, err := parseExportWindow(startDate, endDate)
	if err != nil {
		return "", err
	}

	emp, err := s.repo.Employee.GetByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrEmployeeNotFound
		}
		return "", err
	}

	assignments, err := s.repo.Assignment.ListActiveByEmployee(ctx, employeeID)
	if err != nil {
		return "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//ShiftDesk//Schedule Export//EN")
	cal.SetName(fmt.Sprintf("%s's shifts", emp.Name))

	for i := range assignments {
		a := &assignments[i]
		if a.Shift == nil {
			continue
		}
		if !rangesOverlap(a.StartDate, a.EndDate, start, &end) {
			continue
		}

		// Walk the overlap of the assignment with the window, one event
		// per day the shift actually runs.
		from := laterStart(a.StartDate, start)
		to := end
		if a.EndDate != nil && a.EndDate.Before(to) {
			to = *a.EndDate
		}
		for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
			if len(a.Shift.WorkingDays) > 0 && !a.Shift.WorkingDays.Contains(int(day.Weekday())) {
				continue
			}
			eventStart, eventEnd, err := shiftWindow(day, a.Shift)
			if err != nil {
				return "", err
			}

			event := cal.AddEvent(fmt.Sprintf("%s-%s@shiftdesk", a.AssignmentID, day.Format("20060102")))
			event.SetCreatedTime(a.CreatedAt)
			event.SetDtStampTime(a.CreatedAt)
			event.SetStartAt(eventStart)
			event.SetEndAt(eventEnd)
			event.SetSummary(a.Shift.Name)
			if a.Notes != "" {
				event.SetDescription(a.Notes)
			}
		}
	}

	return cal.Serialize(), nil
}

func parseExportWindow(startDate, endDate string) (time.Time, time.Time, error) {
	start, err := parseDate(startDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start_date: %w", ErrInvalidDateRange)
	}
	end, err := parseDate(endDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end_date: %w", ErrInvalidDateRange)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, ErrInvalidDateRange
	}
	return start, end, nil
}

// shiftWindow resolves a shift's clock times on a concrete day. An overnight
// shift ends on the following day.
func shiftWindow(day time.Time, shift *model.Shift) (time.Time, time.Time, error) {
	start, err := atClock(day, shift.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	endDay := day
	if shift.IsOvernight {
		endDay = day.AddDate(0, 0, 1)
	}
	end, err := atClock(endDay, shift.EndTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func atClock(day time.Time, clock string) (time.Time, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid shift time %q: %w", clock, err)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC), nil
}
