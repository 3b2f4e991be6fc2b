package service

import (
	"context"
	"fmt"
	"time"

	"pocket-organizer/internal/apperr"
	"pocket-organizer/internal/model"
	"pocket-organizer/internal/query"
	"pocket-organizer/internal/repository"
)

// TaskInput represents data required to create a task.
type TaskInput struct {
	Title      string
	Notes      string
	Priority   model.Priority
	Section    model.Section
	CategoryID *uint
	DueDate    *time.Time
}

// TaskService wraps task-related business logic over the store.
type TaskService struct {
	taskRepo     *repository.TaskRepository
	categoryRepo *repository.CategoryRepository
}

func NewTaskService(taskRepo *repository.TaskRepository, categoryRepo *repository.CategoryRepository) *TaskService {
	return &TaskService{taskRepo: taskRepo, categoryRepo: categoryRepo}
}

func (s *TaskService) CreateTask(ctx context.Context, input TaskInput) (*model.Task, error) {
	task := model.Task{
		Title:      input.Title,
		Notes:      input.Notes,
		Priority:   input.Priority,
		Section:    input.Section,
		CategoryID: input.CategoryID,
		DueDate:    input.DueDate,
	}

	if task.Section == model.SectionHidden {
		// New hidden tasks go to the end of the manual order.
		hidden, err := s.taskRepo.ListBySection(ctx, model.SectionHidden)
		if err != nil {
			return nil, err
		}
		task.SortOrder = len(hidden)
	}

	if err := s.taskRepo.Create(ctx, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// ListSection returns one section's tasks split into pending and completed,
// in the order the section displays them.
func (s *TaskService) ListSection(ctx context.Context, section model.Section) (pending, completed []model.Task, err error) {
	tasks, err := s.taskRepo.ListBySection(ctx, section)
	if err != nil {
		return nil, nil, err
	}
	if section == model.SectionHidden {
		pending, completed = query.PartitionInOrder(tasks)
		return pending, completed, nil
	}
	pending, completed = query.Partition(tasks)
	return pending, completed, nil
}

// SearchSection filters one section's tasks by a title substring.
func (s *TaskService) SearchSection(ctx context.Context, section model.Section, q string) ([]model.Task, error) {
	tasks, err := s.taskRepo.ListBySection(ctx, section)
	if err != nil {
		return nil, err
	}
	return query.Search(tasks, q), nil
}

// ToggleComplete flips a task's completion and returns the new state.
func (s *TaskService) ToggleComplete(ctx context.Context, taskID uint) (*model.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := s.taskRepo.SetCompleted(ctx, taskID, !task.IsCompleted); err != nil {
		return nil, err
	}
	task.IsCompleted = !task.IsCompleted
	return task, nil
}

// RenameTask replaces a task's title keeping everything else intact.
func (s *TaskService) RenameTask(ctx context.Context, taskID uint, title string) (*model.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	task.Title = title
	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, taskID uint) error {
	return s.taskRepo.Delete(ctx, taskID)
}

// CategorySummary pairs a category with its open-task badge count.
type CategorySummary struct {
	Category   model.Category
	Incomplete int
}

// ListCategorySummaries returns all study categories with their badges.
func (s *TaskService) ListCategorySummaries(ctx context.Context) ([]CategorySummary, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	tasks, err := s.taskRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	summaries := make([]CategorySummary, 0, len(categories))
	for _, c := range categories {
		summaries = append(summaries, CategorySummary{
			Category:   c,
			Incomplete: query.CountIncomplete(tasks, c.ID),
		})
	}
	return summaries, nil
}

// MoveHidden shifts one hidden task by delta positions and renumbers the
// whole section through Reorder, keeping the order dense.
func (s *TaskService) MoveHidden(ctx context.Context, taskID uint, delta int) error {
	hidden, err := s.taskRepo.ListBySection(ctx, model.SectionHidden)
	if err != nil {
		return err
	}
	ids := make([]uint, len(hidden))
	pos := -1
	for i, t := range hidden {
		ids[i] = t.ID
		if t.ID == taskID {
			pos = i
		}
	}
	if pos < 0 {
		return fmt.Errorf("hidden task %d: %w", taskID, apperr.ErrNotFound)
	}
	target := pos + delta
	if target < 0 {
		target = 0
	}
	if target > len(ids)-1 {
		target = len(ids) - 1
	}
	if target == pos {
		return nil
	}
	id := ids[pos]
	ids = append(ids[:pos], ids[pos+1:]...)
	rest := append([]uint{}, ids[target:]...)
	ids = append(append(ids[:target], id), rest...)
	return s.taskRepo.Reorder(ctx, ids)
}
