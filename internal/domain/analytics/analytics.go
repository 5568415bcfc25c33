// Package analytics computes the read-only statistics shown on the
// analysis view. Every function is pure; "now" and the location used to
// derive calendar days are passed in.
package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/taskmaster/planner/internal/domain/entities"
)

// UncategorizedName labels the category row of tasks without categories.
const UncategorizedName = "uncategorized"

const day = 24 * time.Hour

type Summary struct {
	Total          int `json:"total"`
	Done           int `json:"done"`
	Pending        int `json:"pending"`
	Overdue        int `json:"overdue"`
	CompletionRate int `json:"completionRate"`
}

type TrendPoint struct {
	Date           string `json:"date"`
	Due            int    `json:"due"`
	OnTime         int    `json:"onTime"`
	CompletionRate int    `json:"completionRate"`
}

type QuadrantStat struct {
	Quadrant       entities.Quadrant `json:"quadrant"`
	Total          int               `json:"total"`
	Done           int               `json:"done"`
	WithDue        int               `json:"withDue"`
	Procrastinated int               `json:"procrastinated"`
}

type CategoryStat struct {
	Name          string `json:"name"`
	Total         int    `json:"total"`
	Pending       int    `json:"pending"`
	Done          int    `json:"done"`
	Abandoned     int    `json:"abandoned"`
	Overdue       int    `json:"overdue"`
	DoneRate      int    `json:"doneRate"`
	PendingRate   int    `json:"pendingRate"`
	AbandonedRate int    `json:"abandonedRate"`
	OverdueRate   int    `json:"overdueRate"`
}

// UrgencyBuckets counts by distance to the deadline: within 24h, 3 days,
// 7 days, and beyond.
type UrgencyBuckets struct {
	Within24h int `json:"within24h"`
	Within3d  int `json:"within3d"`
	Within7d  int `json:"within7d"`
	Beyond    int `json:"beyond"`
}

type Urgency struct {
	Upcoming UrgencyBuckets `json:"upcoming"`
	Overdue  UrgencyBuckets `json:"overdue"`
}

// Report bundles every statistic for one request.
type Report struct {
	GeneratedAt time.Time      `json:"generatedAt"`
	Summary     Summary        `json:"summary"`
	Trend       []TrendPoint   `json:"trend"`
	Quadrants   []QuadrantStat `json:"quadrants"`
	Categories  []CategoryStat `json:"categories"`
	Urgency     Urgency        `json:"urgency"`
}

// Build computes the full report over the last days calendar days.
func Build(tasks []entities.Task, now time.Time, loc *time.Location, days int) Report {
	return Report{
		GeneratedAt: now,
		Summary:     Summarize(tasks, now),
		Trend:       Trend(tasks, now, loc, days),
		Quadrants:   QuadrantStats(tasks, now),
		Categories:  CategoryStats(tasks, now),
		Urgency:     UrgencyStats(tasks, now),
	}
}

func Summarize(tasks []entities.Task, now time.Time) Summary {
	var s Summary
	s.Total = len(tasks)
	for i := range tasks {
		t := &tasks[i]
		if t.IsDone() {
			s.Done++
			continue
		}
		if lateAt(t, now) {
			s.Overdue++
		}
	}
	s.Pending = s.Total - s.Done
	s.CompletionRate = percent(s.Done, s.Total)
	return s
}

// Trend returns one point per day for the last days days, oldest first.
// A task counts on the day of its deadline, or on its scheduled date when it
// has none. It is on time when completed no later than the deadline, or
// simply done when there is no deadline.
func Trend(tasks []entities.Task, now time.Time, loc *time.Location, days int) []TrendPoint {
	if loc == nil {
		loc = time.UTC
	}
	if days <= 0 {
		return []TrendPoint{}
	}

	points := make([]TrendPoint, days)
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		d := entities.FormatDay(now.In(loc).AddDate(0, 0, i-days+1))
		points[i].Date = d
		index[d] = i
	}

	for i := range tasks {
		t := &tasks[i]
		bucket, ok := trendDay(t, loc)
		if !ok {
			continue
		}
		pos, ok := index[bucket]
		if !ok {
			continue
		}
		points[pos].Due++
		if onTime(t) {
			points[pos].OnTime++
		}
	}

	for i := range points {
		points[i].CompletionRate = percent(points[i].OnTime, points[i].Due)
	}
	return points
}

// QuadrantStats always lists the four quadrants in priority order. A task
// with an unknown quadrant counts as IN, the default.
func QuadrantStats(tasks []entities.Task, now time.Time) []QuadrantStat {
	stats := make([]QuadrantStat, len(entities.Quadrants))
	pos := make(map[entities.Quadrant]int, len(entities.Quadrants))
	for i, q := range entities.Quadrants {
		stats[i].Quadrant = q
		pos[q] = i
	}

	for i := range tasks {
		t := &tasks[i]
		p, ok := pos[t.Quadrant]
		if !ok {
			p = pos[entities.DefaultQuadrant]
		}
		s := &stats[p]
		s.Total++
		if t.IsDone() {
			s.Done++
		}
		if t.DueAt == nil {
			continue
		}
		s.WithDue++
		finishedLate := t.CompletedAt != nil && t.CompletedAt.After(*t.DueAt)
		if lateAt(t, now) || finishedLate {
			s.Procrastinated++
		}
	}
	return stats
}

// CategoryStats has one row per category, counting a multi-category task in
// each of them. Rows are sorted by total descending, then by name.
func CategoryStats(tasks []entities.Task, now time.Time) []CategoryStat {
	byName := map[string]*CategoryStat{}
	mark := func(name string, t *entities.Task) {
		s, ok := byName[name]
		if !ok {
			s = &CategoryStat{Name: name}
			byName[name] = s
		}
		s.Total++
		switch t.Status {
		case entities.TaskStatusDone:
			s.Done++
		case entities.TaskStatusAbandoned:
			s.Abandoned++
		case entities.TaskStatusPending:
			s.Pending++
			if t.DueAt != nil && t.DueAt.Before(now) {
				s.Overdue++
			}
		}
	}

	for i := range tasks {
		t := &tasks[i]
		if t.Categories.Empty() {
			mark(UncategorizedName, t)
		}
		for _, c := range t.Categories {
			mark(c, t)
		}
	}

	rows := make([]CategoryStat, 0, len(byName))
	for _, s := range byName {
		s.DoneRate = percent(s.Done, s.Total)
		s.PendingRate = percent(s.Pending, s.Total)
		s.AbandonedRate = percent(s.Abandoned, s.Total)
		s.OverdueRate = percent(s.Overdue, s.Total)
		rows = append(rows, *s)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Total != rows[j].Total {
			return rows[i].Total > rows[j].Total
		}
		return rows[i].Name < rows[j].Name
	})
	return rows
}

// UrgencyStats buckets open tasks with a deadline by how far away, or how
// long ago, that deadline is.
func UrgencyStats(tasks []entities.Task, now time.Time) Urgency {
	var u Urgency
	for i := range tasks {
		t := &tasks[i]
		if t.DueAt == nil || !t.IsPending() {
			continue
		}
		if t.DueAt.Before(now) {
			u.Overdue.add(now.Sub(*t.DueAt))
		} else {
			u.Upcoming.add(t.DueAt.Sub(now))
		}
	}
	return u
}

func (b *UrgencyBuckets) add(d time.Duration) {
	switch {
	case d <= day:
		b.Within24h++
	case d <= 3*day:
		b.Within3d++
	case d <= 7*day:
		b.Within7d++
	default:
		b.Beyond++
	}
}

func lateAt(t *entities.Task, now time.Time) bool {
	return !t.IsDone() && t.DueAt != nil && t.DueAt.Before(now)
}

func onTime(t *entities.Task) bool {
	if t.DueAt == nil {
		return t.IsDone()
	}
	return t.IsDone() && t.CompletedAt != nil && !t.CompletedAt.After(*t.DueAt)
}

func trendDay(t *entities.Task, loc *time.Location) (string, bool) {
	if t.DueAt != nil {
		return entities.FormatDay(t.DueAt.In(loc)), true
	}
	if t.Date != nil && *t.Date != "" {
		return *t.Date, true
	}
	return "", false
}

func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}
