package model

// ScheduleEntry is one timetable slot imported from the office's
// spreadsheet, stored in the `schedules` table. Times use TimeLayout
// and DayOfWeek is an upper-case English day name (MONDAY..SUNDAY), as
// written in the sheet.
type ScheduleEntry struct {
	ID           uint64 `json:"id"`           // schedules.id
	TeacherName  string `json:"teacherName"`  // schedules.teacher_name
	Subject      string `json:"subject"`      // schedules.subject
	RoomNo       string `json:"roomNo"`       // schedules.room_no
	DayOfWeek    string `json:"dayOfWeek"`    // schedules.day_of_week
	StartTime    string `json:"startTime"`    // schedules.start_time
	EndTime      string `json:"endTime"`      // schedules.end_time
	SittingCabin string `json:"sittingCabin"` // schedules.sitting_cabin
}
