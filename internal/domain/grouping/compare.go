// Package grouping partitions top-level tasks into display buckets and
// orders each bucket.
package grouping

import (
	"sort"

	"github.com/taskmaster/planner/internal/domain/entities"
)

// Compare orders tasks for display. Later rules only break ties of earlier
// ones:
//
//  1. pending before done
//  2. quadrant weight ascending (IU, IN, NU, then anything else)
//  3. manual order ascending, tasks without order last
//  4. newest createdAt first
//  5. id ascending, so the order is total
func Compare(a, b *entities.Task) int {
	if aw, bw := completionWeight(a), completionWeight(b); aw != bw {
		return aw - bw
	}
	if aq, bq := a.Quadrant.Weight(), b.Quadrant.Weight(); aq != bq {
		return aq - bq
	}
	if ao, bo := a.OrderKey(), b.OrderKey(); ao != bo {
		if ao < bo {
			return -1
		}
		return 1
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		if a.CreatedAt.After(b.CreatedAt) {
			return -1
		}
		return 1
	}
	switch {
	case a.ID < b.ID:
		return -1
	case a.ID > b.ID:
		return 1
	default:
		return 0
	}
}

// Sort orders tasks in place with Compare.
func Sort(tasks []entities.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return Compare(&tasks[i], &tasks[j]) < 0
	})
}

func completionWeight(t *entities.Task) int {
	if t.IsDone() {
		return 1
	}
	return 0
}
