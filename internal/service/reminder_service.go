package service

import (
	"context"
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"pocket-organizer/internal/model"
	"pocket-organizer/internal/query"
	"pocket-organizer/internal/repository"
)

// ReminderService builds human-readable summaries for daily notifications.
type ReminderService struct {
	taskRepo     *repository.TaskRepository
	categoryRepo *repository.CategoryRepository
	fitnessRepo  *repository.FitnessRepository
}

func NewReminderService(
	taskRepo *repository.TaskRepository,
	categoryRepo *repository.CategoryRepository,
	fitnessRepo *repository.FitnessRepository,
) *ReminderService {
	return &ReminderService{
		taskRepo:     taskRepo,
		categoryRepo: categoryRepo,
		fitnessRepo:  fitnessRepo,
	}
}

// DailySummary composes the digest of open tasks and today's exercises.
// Hidden-section tasks never appear in it.
func (s *ReminderService) DailySummary(ctx context.Context, now time.Time) (string, error) {
	tasks, err := s.taskRepo.List(ctx)
	if err != nil {
		return "", err
	}

	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return "", err
	}
	catNames := make(map[uint]string)
	for _, cat := range categories {
		catNames[cat.ID] = cat.Name
	}

	var overdue []model.Task
	var pending []model.Task
	for _, task := range tasks {
		if task.Section == model.SectionHidden || task.IsCompleted {
			continue
		}
		if query.IsOverdue(task, now) {
			overdue = append(overdue, task)
		} else {
			pending = append(pending, task)
		}
	}
	sortByDueThenCreated(overdue)
	sortByDueThenCreated(pending)

	exercises, err := s.fitnessRepo.ListEntries(ctx, now)
	if err != nil {
		return "", err
	}

	var builder strings.Builder
	builder.WriteString("📋 <b>Ежедневный отчёт</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s\n\n", now.Format("02.01.2006")))

	if len(overdue) > 0 {
		builder.WriteString("⚠️ <b>Просроченные задачи</b>\n")
		for _, task := range overdue {
			builder.WriteString(formatTaskLine(task, catNames, now))
		}
		builder.WriteString("\n")
	}

	builder.WriteString("🔥 <b>Текущие задачи</b>\n")
	if len(pending) == 0 {
		builder.WriteString("— нет открытых задач\n")
	} else {
		for _, task := range pending {
			builder.WriteString(formatTaskLine(task, catNames, now))
		}
	}

	builder.WriteString("\n💪 <b>Тренировки на сегодня</b>\n")
	open := 0
	for _, entry := range exercises {
		if entry.IsCompleted {
			continue
		}
		open++
		name := "упражнение"
		icon := "🏋️"
		if entry.Preset != nil {
			name = entry.Preset.Name
			icon = entry.Preset.Icon
		}
		builder.WriteString(fmt.Sprintf("%s %s\n", icon, html.EscapeString(name)))
	}
	if open == 0 {
		builder.WriteString("— всё выполнено\n")
	}

	return strings.TrimSpace(builder.String()), nil
}

func sortByDueThenCreated(tasks []model.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		switch {
		case tasks[i].DueDate == nil && tasks[j].DueDate == nil:
			return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
		case tasks[i].DueDate == nil:
			return false
		case tasks[j].DueDate == nil:
			return true
		default:
			return tasks[i].DueDate.Before(*tasks[j].DueDate)
		}
	})
}

func formatTaskLine(task model.Task, catNames map[uint]string, now time.Time) string {
	icon := "🟢"
	if query.IsOverdue(task, now) {
		icon = "⚠️"
	} else if task.DueDate != nil {
		icon = "⏳"
	}

	line := fmt.Sprintf("%s %s", icon, html.EscapeString(task.Title))
	if task.CategoryID != nil {
		if name, ok := catNames[*task.CategoryID]; ok {
			line += fmt.Sprintf(" <i>(%s)</i>", html.EscapeString(name))
		}
	}
	if task.DueDate != nil {
		line += fmt.Sprintf(" — до %s", task.DueDate.Format("02.01"))
	}
	return line + "\n"
}
