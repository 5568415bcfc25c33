package entities_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmaster/planner/internal/domain/entities"
)

func strPtr(s string) *string { return &s }

func TestCategoriesUnmarshal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want entities.Categories
	}{
		{"native array", `{"categories":["work","life"]}`, entities.Categories{"work", "life"}},
		{"null", `{"categories":null}`, nil},
		{"absent", `{}`, nil},
		{"legacy string", `{"categories":"[\"study\"]"}`, entities.Categories{"study"}},
		{"legacy empty string", `{"categories":""}`, nil},
		{"legacy malformed", `{"categories":"not json"}`, nil},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var task entities.Task
			require.NoError(t, json.Unmarshal([]byte(tt.body), &task))
			assert.Equal(t, tt.want, task.Categories)
		})
	}
}

func TestCategoriesRejectsWrongShape(t *testing.T) {
	t.Parallel()

	var task entities.Task
	assert.Error(t, json.Unmarshal([]byte(`{"categories":{"a":1}}`), &task))
}

func TestCategoriesMarshalNative(t *testing.T) {
	t.Parallel()

	raw, err := json.Marshal(entities.Task{Categories: entities.Categories{"work"}})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"categories":["work"]`)
}

func TestIsKnownCategory(t *testing.T) {
	t.Parallel()

	assert.True(t, entities.IsKnownCategory("work"))
	assert.True(t, entities.IsKnownCategory("product"))
	assert.False(t, entities.IsKnownCategory("Work"))
	assert.False(t, entities.IsKnownCategory("garden"))
}

func TestSchedulePrecedence(t *testing.T) {
	t.Parallel()

	ranged := entities.Task{
		Date:       strPtr("2024-01-10"),
		RangeStart: strPtr("2024-01-01"),
		RangeEnd:   strPtr("2024-01-03"),
	}
	_, single := ranged.ScheduledDay()
	assert.False(t, single)
	assert.True(t, ranged.CoversDay("2024-01-01"))
	assert.True(t, ranged.CoversDay("2024-01-03"))
	assert.False(t, ranged.CoversDay("2024-01-10"))

	halfOpen := entities.Task{Date: strPtr("2024-01-10"), RangeStart: strPtr("2024-01-01")}
	day, ok := halfOpen.ScheduledDay()
	assert.True(t, ok)
	assert.Equal(t, "2024-01-10", day)
	assert.True(t, halfOpen.CoversDay("2024-01-10"))

	var none entities.Task
	_, _, ranges := none.Range()
	assert.False(t, ranges)
	assert.False(t, none.CoversDay("2024-01-10"))
}

func TestMarkDoneAndPending(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	task := entities.Task{Status: entities.TaskStatusPending}

	task.MarkDone(now)
	assert.True(t, task.IsDone())
	require.NotNil(t, task.CompletedAt)
	assert.Equal(t, now, *task.CompletedAt)

	task.MarkPending()
	assert.True(t, task.IsPending())
	assert.Nil(t, task.CompletedAt)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := entities.Task{ID: 1, Title: "x"}
	valid.ApplyDefaults()
	assert.Equal(t, entities.TaskStatusPending, valid.Status)
	assert.Equal(t, entities.QuadrantImportantNotUrgent, valid.Quadrant)
	assert.NoError(t, valid.Validate())

	badStatus := valid.Clone()
	badStatus.Status = "later"
	assert.ErrorIs(t, badStatus.Validate(), entities.ErrInvalidStatus)

	badQuadrant := valid.Clone()
	badQuadrant.Quadrant = "XX"
	assert.ErrorIs(t, badQuadrant.Validate(), entities.ErrInvalidQuadrant)

	selfParent := valid.Clone()
	selfParent.ParentID = &selfParent.ID
	assert.ErrorIs(t, selfParent.Validate(), entities.ErrInvalidParent)

	backwards := valid.Clone()
	backwards.RangeStart = strPtr("2024-02-01")
	backwards.RangeEnd = strPtr("2024-01-01")
	assert.ErrorIs(t, backwards.Validate(), entities.ErrInvalidRange)

	badDay := valid.Clone()
	badDay.Date = strPtr("01/02/2024")
	assert.ErrorIs(t, badDay.Validate(), entities.ErrValidation)

	badClock := valid.Clone()
	badClock.StartTime = strPtr("9am")
	assert.ErrorIs(t, badClock.Validate(), entities.ErrValidation)
}

func TestOrderKeyAndWeight(t *testing.T) {
	t.Parallel()

	zero := 0
	assert.Equal(t, 0, (&entities.Task{Order: &zero}).OrderKey())
	assert.Greater(t, (&entities.Task{}).OrderKey(), 1<<40)

	assert.Equal(t, 0, entities.QuadrantImportantUrgent.Weight())
	assert.Equal(t, 3, entities.QuadrantNeither.Weight())
	assert.Equal(t, 3, entities.Quadrant("").Weight())
}

func TestDayHelpers(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("UTC+8", 8*3600)

	end, err := entities.EndOfDay("2024-01-02", loc)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-02T23:59:59.999+08:00", end.Format("2006-01-02T15:04:05.000Z07:00"))

	now := time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-01-02", entities.Today(now, loc))
	assert.Equal(t, "2024-01-01", entities.Today(now, nil))

	_, err = entities.ParseDay("02/01/2024", nil)
	assert.Error(t, err)
}
