package grouping

import (
	"errors"
	"sort"
	"time"

	"github.com/taskmaster/planner/internal/domain/entities"
)

// MaxCalendarDays bounds a calendar query.
const MaxCalendarDays = 62

var ErrCalendarSpan = errors.New("calendar span must be between 1 and 62 days")

// Day is one calendar cell.
type Day struct {
	Date  string          `json:"date"`
	Tasks []entities.Task `json:"tasks"`
}

// CalendarDays lists every day from..to inclusive with the tasks that
// cover it. A ranged task shows up on each day of its range. Tasks of a
// day are ordered by start time, all-day tasks first, then by Compare.
func CalendarDays(tasks []entities.Task, from, to string) ([]Day, error) {
	start, err := time.Parse(entities.DayLayout, from)
	if err != nil {
		return nil, entities.ErrInvalidRange
	}
	end, err := time.Parse(entities.DayLayout, to)
	if err != nil {
		return nil, entities.ErrInvalidRange
	}
	span := int(end.Sub(start).Hours()/24) + 1
	if span < 1 || span > MaxCalendarDays {
		return nil, ErrCalendarSpan
	}

	days := make([]Day, 0, span)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		day := d.Format(entities.DayLayout)
		cell := Day{Date: day, Tasks: []entities.Task{}}
		for i := range tasks {
			if tasks[i].CoversDay(day) {
				cell.Tasks = append(cell.Tasks, tasks[i])
			}
		}
		sortByClock(cell.Tasks)
		days = append(days, cell)
	}
	return days, nil
}

func sortByClock(tasks []entities.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		ci, cj := clockKey(&tasks[i]), clockKey(&tasks[j])
		if ci != cj {
			return ci < cj
		}
		return Compare(&tasks[i], &tasks[j]) < 0
	})
}

// all-day and untimed tasks sort before any HH:MM
func clockKey(t *entities.Task) string {
	if t.AllDay || t.StartTime == nil {
		return ""
	}
	return *t.StartTime
}

// WeekRange returns the Sunday-to-Saturday week containing day.
func WeekRange(day string) (string, string, error) {
	d, err := time.Parse(entities.DayLayout, day)
	if err != nil {
		return "", "", entities.ErrInvalidRange
	}
	start := d.AddDate(0, 0, -int(d.Weekday()))
	end := start.AddDate(0, 0, 6)
	return start.Format(entities.DayLayout), end.Format(entities.DayLayout), nil
}

// MonthRange returns the fetch window for the month containing day: the
// whole month padded by a week on each side.
func MonthRange(day string) (string, string, error) {
	d, err := time.Parse(entities.DayLayout, day)
	if err != nil {
		return "", "", entities.ErrInvalidRange
	}
	first := time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first.AddDate(0, 0, -7).Format(entities.DayLayout),
		last.AddDate(0, 0, 7).Format(entities.DayLayout), nil
}
