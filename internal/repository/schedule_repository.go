package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/infonest/campus-backend/internal/model"
)

const scheduleColumns = `id, teacher_name, subject, room_no, day_of_week,
	start_time, end_time, sitting_cabin`

// ScheduleRepo provides data access to the schedules table, which
// holds the timetable slots imported from the office spreadsheet.
type ScheduleRepo struct {
	db *sql.DB
}

// NewScheduleRepo returns a ScheduleRepo bound to the provided database.
func NewScheduleRepo(db *sql.DB) *ScheduleRepo { return &ScheduleRepo{db: db} }

func scanSchedule(row interface{ Scan(...interface{}) error }) (model.ScheduleEntry, error) {
	var (
		s     model.ScheduleEntry
		cabin sql.NullString
	)
	err := row.Scan(&s.ID, &s.TeacherName, &s.Subject, &s.RoomNo, &s.DayOfWeek,
		&s.StartTime, &s.EndTime, &cabin)
	if err != nil {
		return model.ScheduleEntry{}, err
	}
	if cabin.Valid {
		s.SittingCabin = cabin.String
	}
	return s, nil
}

// InsertBatch inserts the given entries in one transaction. When
// replace is true, existing rows for every teacher named in the batch
// are removed first, so a re-upload swaps a timetable atomically.
func (r *ScheduleRepo) InsertBatch(ctx context.Context, entries []model.ScheduleEntry, replace bool) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if replace {
		seen := map[string]bool{}
		for _, e := range entries {
			if seen[e.TeacherName] {
				continue
			}
			seen[e.TeacherName] = true
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM schedules WHERE teacher_name = ?`, e.TeacherName); err != nil {
				return err
			}
		}
	}
	for _, e := range entries {
		var cabin interface{}
		if e.SittingCabin != "" {
			cabin = e.SittingCabin
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO schedules (teacher_name, subject, room_no, day_of_week, start_time, end_time, sitting_cabin)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			e.TeacherName, e.Subject, e.RoomNo, e.DayOfWeek, e.StartTime, e.EndTime, cabin); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// FindCurrent returns the slot a teacher occupies right now: matching
// day of week with the clock time inside [start, end]. sql.ErrNoRows
// means the teacher has no class at this moment.
func (r *ScheduleRepo) FindCurrent(ctx context.Context, teacherName, dayOfWeek, clock string) (model.ScheduleEntry, error) {
	return scanSchedule(r.db.QueryRowContext(ctx,
		`SELECT `+scheduleColumns+` FROM schedules
		 WHERE teacher_name = ? AND day_of_week = ? AND ? BETWEEN start_time AND end_time
		 LIMIT 1`,
		teacherName, strings.ToUpper(dayOfWeek), clock))
}

// FindSlot returns the slot a teacher occupies at an arbitrary day and
// time, for the advanced search endpoint.
func (r *ScheduleRepo) FindSlot(ctx context.Context, teacherName, dayOfWeek, clock string) (model.ScheduleEntry, error) {
	return r.FindCurrent(ctx, teacherName, dayOfWeek, clock)
}

// Cabin returns the sitting cabin recorded for a teacher, or empty when
// none of their rows carries one.
func (r *ScheduleRepo) Cabin(ctx context.Context, teacherName string) (string, error) {
	var cabin sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT sitting_cabin FROM schedules
		 WHERE teacher_name = ? AND sitting_cabin IS NOT NULL AND sitting_cabin <> ''
		 LIMIT 1`, teacherName).Scan(&cabin)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return cabin.String, nil
}

// DeleteByTeacher removes every slot for a teacher and reports how many
// rows went away.
func (r *ScheduleRepo) DeleteByTeacher(ctx context.Context, teacherName string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM schedules WHERE teacher_name = ?`, teacherName)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
