package ports

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/taskmaster/planner/internal/domain/entities"
)

// Field is one member of a partial update. It tells apart a field that was
// left out (Set false), cleared with null (Set true, Value nil) and given a
// value.
type Field[T any] struct {
	Set   bool
	Value *T
}

// Of builds a field that sets v.
func Of[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: &v}
}

// Null builds a field that clears the column.
func Null[T any]() Field[T] {
	return Field[T]{Set: true}
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		f.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	f.Value = &v
	return nil
}

// TaskPatch lists every field a PATCH may touch. Anything else in the body
// is rejected by DecodeTaskPatch.
type TaskPatch struct {
	Title       Field[string]              `json:"title"`
	Description Field[string]              `json:"description"`
	Date        Field[string]              `json:"date"`
	RangeStart  Field[string]              `json:"rangeStart"`
	RangeEnd    Field[string]              `json:"rangeEnd"`
	AllDay      Field[bool]                `json:"allDay"`
	StartTime   Field[string]              `json:"startTime"`
	EndTime     Field[string]              `json:"endTime"`
	Status      Field[entities.TaskStatus] `json:"status"`
	Quadrant    Field[entities.Quadrant]   `json:"quadrant"`
	Categories  Field[entities.Categories] `json:"categories"`
	DueAt       Field[time.Time]           `json:"dueAt"`
	CompletedAt Field[time.Time]           `json:"completedAt"`
	ParentID    Field[int]                 `json:"parentId"`
	Order       Field[int]                 `json:"order"`
}

// DecodeTaskPatch reads a JSON patch body, failing on unknown fields and on
// trailing data.
func DecodeTaskPatch(r io.Reader) (TaskPatch, error) {
	var p TaskPatch
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return TaskPatch{}, fmt.Errorf("%w: %v", entities.ErrValidation, err)
	}
	if dec.More() {
		return TaskPatch{}, fmt.Errorf("%w: unexpected data after patch object", entities.ErrValidation)
	}
	return p, nil
}

// Empty reports whether the patch changes nothing.
func (p *TaskPatch) Empty() bool {
	return !(p.Title.Set || p.Description.Set || p.Date.Set || p.RangeStart.Set ||
		p.RangeEnd.Set || p.AllDay.Set || p.StartTime.Set || p.EndTime.Set ||
		p.Status.Set || p.Quadrant.Set || p.Categories.Set || p.DueAt.Set ||
		p.CompletedAt.Set || p.ParentID.Set || p.Order.Set)
}

// Apply writes the patch onto t. Title, status and quadrant cannot be
// nulled and allDay null means false.
//
// Moving to done without an explicit completedAt stamps now; moving back to
// pending without one clears it.
func (p *TaskPatch) Apply(t *entities.Task, now time.Time) error {
	switch {
	case p.Title.Set && p.Title.Value == nil:
		return errNotNullable("title")
	case p.Status.Set && p.Status.Value == nil:
		return errNotNullable("status")
	case p.Quadrant.Set && p.Quadrant.Value == nil:
		return errNotNullable("quadrant")
	}

	if p.Title.Set {
		t.Title = *p.Title.Value
	}
	if p.Quadrant.Set {
		t.Quadrant = *p.Quadrant.Value
	}

	applyString(&t.Description, p.Description)
	applyString(&t.Date, p.Date)
	applyString(&t.RangeStart, p.RangeStart)
	applyString(&t.RangeEnd, p.RangeEnd)
	applyString(&t.StartTime, p.StartTime)
	applyString(&t.EndTime, p.EndTime)

	if p.AllDay.Set {
		t.AllDay = p.AllDay.Value != nil && *p.AllDay.Value
	}
	if p.Categories.Set {
		if p.Categories.Value == nil {
			t.Categories = nil
		} else {
			t.Categories = *p.Categories.Value
		}
	}
	if p.DueAt.Set {
		t.DueAt = p.DueAt.Value
	}
	if p.ParentID.Set {
		t.ParentID = p.ParentID.Value
		if t.ParentID != nil && *t.ParentID == 0 {
			t.ParentID = nil
		}
	}
	if p.Order.Set {
		t.Order = p.Order.Value
	}

	if p.Status.Set && *p.Status.Value != t.Status {
		switch *p.Status.Value {
		case entities.TaskStatusDone:
			t.MarkDone(now)
		case entities.TaskStatusPending:
			t.MarkPending()
		default:
			t.Status = *p.Status.Value
		}
	}
	if p.CompletedAt.Set {
		t.CompletedAt = p.CompletedAt.Value
	}
	return nil
}

func errNotNullable(name string) error {
	return fmt.Errorf("%w: %s cannot be null", entities.ErrValidation, name)
}

func applyString(dst **string, f Field[string]) {
	if !f.Set {
		return
	}
	if f.Value == nil || *f.Value == "" {
		*dst = nil
		return
	}
	v := *f.Value
	*dst = &v
}
