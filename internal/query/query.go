// Package query holds the pure read-side helpers the screens compose over
// store snapshots. Every function is deterministic in its inputs and never
// mutates the slice it is given.
package query

import (
	"sort"
	"strings"
	"time"

	"pocket-organizer/internal/model"
)

// BySection keeps only the tasks of one section, preserving input order.
func BySection(tasks []model.Task, section model.Section) []model.Task {
	var out []model.Task
	for _, t := range tasks {
		if t.Section == section {
			out = append(out, t)
		}
	}
	return out
}

// ByCategory keeps only the tasks owned by the given category.
func ByCategory(tasks []model.Task, categoryID uint) []model.Task {
	var out []model.Task
	for _, t := range tasks {
		if t.CategoryID != nil && *t.CategoryID == categoryID {
			out = append(out, t)
		}
	}
	return out
}

// Partition splits tasks into pending and completed, each sorted newest
// first. Hidden-section screens that want manual order should partition the
// result of SortByManualOrder with PartitionInOrder instead.
func Partition(tasks []model.Task) (pending, completed []model.Task) {
	pending, completed = PartitionInOrder(SortByCreatedDesc(tasks))
	return pending, completed
}

// PartitionInOrder splits tasks into pending and completed, preserving the
// order they came in.
func PartitionInOrder(tasks []model.Task) (pending, completed []model.Task) {
	for _, t := range tasks {
		if t.IsCompleted {
			completed = append(completed, t)
		} else {
			pending = append(pending, t)
		}
	}
	return pending, completed
}

// Search filters tasks by a case-insensitive substring match on the title.
// An empty query returns the input unchanged.
func Search(tasks []model.Task, q string) []model.Task {
	if q == "" {
		return tasks
	}
	needle := strings.ToLower(q)
	var out []model.Task
	for _, t := range tasks {
		if strings.Contains(strings.ToLower(t.Title), needle) {
			out = append(out, t)
		}
	}
	return out
}

// IsOverdue reports whether a task has a due date strictly in the past and
// is still open.
func IsOverdue(task model.Task, now time.Time) bool {
	return task.DueDate != nil && task.DueDate.Before(now) && !task.IsCompleted
}

// CountIncomplete counts the open tasks owned by a category, for the summary
// badge on category cards.
func CountIncomplete(tasks []model.Task, categoryID uint) int {
	n := 0
	for _, t := range tasks {
		if t.CategoryID != nil && *t.CategoryID == categoryID && !t.IsCompleted {
			n++
		}
	}
	return n
}

// SortByCreatedDesc returns a copy of tasks sorted newest first.
func SortByCreatedDesc(tasks []model.Task) []model.Task {
	out := make([]model.Task, len(tasks))
	copy(out, tasks)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// SortByManualOrder returns a copy of tasks sorted by their persisted manual
// order, the display order of the hidden section.
func SortByManualOrder(tasks []model.Task) []model.Task {
	out := make([]model.Task, len(tasks))
	copy(out, tasks)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SortOrder < out[j].SortOrder
	})
	return out
}
