package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/xuri/excelize/v2"

	"github.com/infonest/campus-backend/internal/model"
	"github.com/infonest/campus-backend/internal/repository"
)

// ScheduleHandler serves the teacher-timetable features: spreadsheet
// upload by the office, "where is this teacher now" lookups and the
// advanced day/time search.
type ScheduleHandler struct {
	Schedules *repository.ScheduleRepo
	Users     *repository.UserRepo

	now func() time.Time
}

// NewScheduleHandler wires a ScheduleHandler with a UTC clock.
func NewScheduleHandler(schedules *repository.ScheduleRepo, users *repository.UserRepo) *ScheduleHandler {
	if schedules == nil || users == nil {
		panic("nil repository passed to NewScheduleHandler")
	}
	return &ScheduleHandler{Schedules: schedules, Users: users, now: func() time.Time { return time.Now().UTC() }}
}

var dayNames = map[string]bool{
	"MONDAY": true, "TUESDAY": true, "WEDNESDAY": true, "THURSDAY": true,
	"FRIDAY": true, "SATURDAY": true, "SUNDAY": true,
}

// Upload handles POST /v1/office/schedule/upload. Expects a multipart
// "file" field with an .xlsx workbook whose first sheet lays out one
// slot per row:
//
//	teacher_name | subject | room_no | day_of_week | start_time | end_time | sitting_cabin
//
// The header row is skipped. Bad rows, including rows that overlap an
// earlier slot for the same teacher and day, are reported by number
// rather than aborting the import; ?replace=true swaps out the
// timetable of every teacher present in the workbook.
func (h *ScheduleHandler) Upload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "file field is required"})
	}
	src, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot open uploaded file"})
	}
	defer src.Close()

	wb, err := excelize.OpenReader(src)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "file is not a valid xlsx workbook"})
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "workbook has no sheets"})
	}
	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot read sheet"})
	}

	var (
		entries []model.ScheduleEntry
		rowErrs []string
	)
	for i, row := range rows {
		if i == 0 { // header
			continue
		}
		entry, err := parseScheduleRow(row)
		if err != nil {
			rowErrs = append(rowErrs, fmt.Sprintf("row %d: %v", i+1, err))
			continue
		}
		if clash := findClash(entries, entry); clash != nil {
			rowErrs = append(rowErrs, fmt.Sprintf("row %d: overlaps an earlier slot for %s on %s (%s-%s)",
				i+1, clash.TeacherName, clash.DayOfWeek, clash.StartTime, clash.EndTime))
			continue
		}
		entries = append(entries, entry)
	}
	if len(entries) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no valid rows in workbook", "rowErrors": rowErrs})
	}

	replace := strings.EqualFold(c.QueryParam("replace"), "true")
	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()
	if err := h.Schedules.InsertBatch(ctx, entries, replace); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "import failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"imported":  len(entries),
		"rowErrors": rowErrs,
	})
}

// findClash returns the first accepted entry whose time window overlaps
// the candidate for the same teacher and day, or nil when none does.
func findClash(accepted []model.ScheduleEntry, cand model.ScheduleEntry) *model.ScheduleEntry {
	for i := range accepted {
		e := &accepted[i]
		if !strings.EqualFold(e.TeacherName, cand.TeacherName) || e.DayOfWeek != cand.DayOfWeek {
			continue
		}
		if model.Overlaps(e.StartTime, e.EndTime, cand.StartTime, cand.EndTime) {
			return e
		}
	}
	return nil
}

func parseScheduleRow(row []string) (model.ScheduleEntry, error) {
	get := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}
	e := model.ScheduleEntry{
		TeacherName:  get(0),
		Subject:      get(1),
		RoomNo:       get(2),
		DayOfWeek:    strings.ToUpper(get(3)),
		StartTime:    normalizeClock(get(4)),
		EndTime:      normalizeClock(get(5)),
		SittingCabin: get(6),
	}
	switch {
	case e.TeacherName == "":
		return model.ScheduleEntry{}, errors.New("teacher_name is empty")
	case e.Subject == "":
		return model.ScheduleEntry{}, errors.New("subject is empty")
	case !dayNames[e.DayOfWeek]:
		return model.ScheduleEntry{}, fmt.Errorf("unknown day_of_week %q", get(3))
	}
	if _, err := model.ParseTimeOfDay(e.StartTime); err != nil {
		return model.ScheduleEntry{}, fmt.Errorf("bad start_time %q", get(4))
	}
	if _, err := model.ParseTimeOfDay(e.EndTime); err != nil {
		return model.ScheduleEntry{}, fmt.Errorf("bad end_time %q", get(5))
	}
	if e.EndTime <= e.StartTime {
		return model.ScheduleEntry{}, errors.New("end_time must be after start_time")
	}
	return e, nil
}

// normalizeClock accepts "9:00", "09:00" or "09:00:00" and returns the
// canonical HH:MM:SS form used in the schedules table.
func normalizeClock(s string) string {
	if s == "" {
		return s
	}
	parts := strings.Split(s, ":")
	for i, p := range parts {
		if len(p) == 1 {
			parts[i] = "0" + p
		}
	}
	switch len(parts) {
	case 2:
		return strings.Join(parts, ":") + ":00"
	case 3:
		return strings.Join(parts, ":")
	}
	return s
}

type scheduleSlotResp struct {
	TeacherName  string `json:"teacherName"`
	Subject      string `json:"subject,omitempty"`
	RoomNo       string `json:"roomNo,omitempty"`
	DayOfWeek    string `json:"dayOfWeek,omitempty"`
	StartTime    string `json:"startTime,omitempty"`
	EndTime      string `json:"endTime,omitempty"`
	SittingCabin string `json:"sittingCabin,omitempty"`
	Status       string `json:"status"`
}

// SearchNow handles GET /v1/schedule/search/now?name=... and answers
// where the teacher is at this moment. When no slot matches, falls back
// to the sitting cabin so the caller still gets a useful answer.
func (h *ScheduleHandler) SearchNow(c echo.Context) error {
	teacher := strings.TrimSpace(c.QueryParam("name"))
	if teacher == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name query parameter is required"})
	}

	now := h.now()
	day := strings.ToUpper(now.Weekday().String())
	clock := now.Format(model.TimeLayout)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	entry, err := h.Schedules.FindCurrent(ctx, teacher, day, clock)
	if err == nil {
		return c.JSON(http.StatusOK, scheduleSlotResp{
			TeacherName: entry.TeacherName, Subject: entry.Subject, RoomNo: entry.RoomNo,
			DayOfWeek: entry.DayOfWeek, StartTime: entry.StartTime, EndTime: entry.EndTime,
			SittingCabin: entry.SittingCabin, Status: "IN_CLASS",
		})
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "schedule lookup failed"})
	}

	cabin, err := h.Schedules.Cabin(ctx, teacher)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "schedule lookup failed"})
	}
	if cabin == "" {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no schedule found for teacher"})
	}
	return c.JSON(http.StatusOK, scheduleSlotResp{
		TeacherName: teacher, SittingCabin: cabin, Status: "IN_CABIN",
	})
}

// Cabin handles GET /v1/schedule/cabin?name=...
func (h *ScheduleHandler) Cabin(c echo.Context) error {
	teacher := strings.TrimSpace(c.QueryParam("name"))
	if teacher == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name query parameter is required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	cabin, err := h.Schedules.Cabin(ctx, teacher)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "schedule lookup failed"})
	}
	if cabin == "" {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no cabin recorded for teacher"})
	}
	return c.JSON(http.StatusOK, echo.Map{"teacherName": teacher, "sittingCabin": cabin})
}

// SearchAdvanced handles GET /v1/schedule/search/advanced?name=&day=&time=
// and answers which room the teacher is in at an arbitrary day and
// clock time.
func (h *ScheduleHandler) SearchAdvanced(c echo.Context) error {
	teacher := strings.TrimSpace(c.QueryParam("name"))
	day := strings.ToUpper(strings.TrimSpace(c.QueryParam("day")))
	clock := normalizeClock(strings.TrimSpace(c.QueryParam("time")))
	if teacher == "" || day == "" || clock == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, day and time query parameters are required"})
	}
	if !dayNames[day] {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown day of week"})
	}
	if _, err := model.ParseTimeOfDay(clock); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "time must be HH:MM or HH:MM:SS"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	entry, err := h.Schedules.FindSlot(ctx, teacher, day, clock)
	if errors.Is(err, sql.ErrNoRows) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "teacher has no class at that time"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "schedule lookup failed"})
	}
	return c.JSON(http.StatusOK, scheduleSlotResp{
		TeacherName: entry.TeacherName, Subject: entry.Subject, RoomNo: entry.RoomNo,
		DayOfWeek: entry.DayOfWeek, StartTime: entry.StartTime, EndTime: entry.EndTime,
		SittingCabin: entry.SittingCabin, Status: "IN_CLASS",
	})
}

// SearchTeachers handles GET /v1/office/teachers/search?query=..., a
// name or email lookup against registered faculty accounts.
func (h *ScheduleHandler) SearchTeachers(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("query"))
	if q == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "query parameter is required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	teachers, err := h.Users.SearchTeachers(ctx, q)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "teacher search failed"})
	}
	out := make([]userPart, 0, len(teachers))
	for _, t := range teachers {
		out = append(out, userPart{ID: t.ID, Email: t.Email, Name: t.FullName(), Role: t.Role})
	}
	return c.JSON(http.StatusOK, out)
}

// DeleteTeacherSchedule handles DELETE /v1/office/schedule?teacher=...
func (h *ScheduleHandler) DeleteTeacherSchedule(c echo.Context) error {
	teacher := strings.TrimSpace(c.QueryParam("teacher"))
	if teacher == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "teacher query parameter is required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	removed, err := h.Schedules.DeleteByTeacher(ctx, teacher)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	if removed == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no schedule found for teacher"})
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": removed})
}
