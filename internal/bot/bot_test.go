package bot

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pocket-organizer/internal/config"
	"pocket-organizer/internal/model"
	"pocket-organizer/internal/repository"
	"pocket-organizer/internal/service"
)

type botFixture struct {
	bot          *Bot
	taskRepo     *repository.TaskRepository
	categoryRepo *repository.CategoryRepository
	chatRepo     *repository.ChatRepository
	fitnessRepo  *repository.FitnessRepository
	cookRepo     *repository.CookRepository
}

// newTestBot builds a bot against a stub Telegram endpoint that accepts every
// API call, so handlers can be driven directly with crafted updates.
func newTestBot(t *testing.T) *botFixture {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"ok":true,"result":{}}`)
	}))
	t.Cleanup(srv.Close)

	api, err := tgbotapi.NewBotAPIWithAPIEndpoint("test-token", srv.URL+"/bot%s/%s")
	require.NoError(t, err)

	db, err := repository.NewDB(filepath.Join(t.TempDir(), "organizer.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	taskRepo := repository.NewTaskRepository(db, nil)
	categoryRepo := repository.NewCategoryRepository(db, nil)
	chatRepo := repository.NewChatRepository(db, nil)
	fitnessRepo := repository.NewFitnessRepository(db, nil)
	cookRepo := repository.NewCookRepository(db, nil)
	planRepo := repository.NewPlanRepository(db, nil)

	taskSvc := service.NewTaskService(taskRepo, categoryRepo)
	reminderSvc := service.NewReminderService(taskRepo, categoryRepo, fitnessRepo)
	cfg := &config.Config{PINCode: "1109"}

	b := newWithAPI(api, taskSvc, reminderSvc, chatRepo, fitnessRepo, cookRepo, planRepo, cfg, zerolog.Nop())
	return &botFixture{
		bot:          b,
		taskRepo:     taskRepo,
		categoryRepo: categoryRepo,
		chatRepo:     chatRepo,
		fitnessRepo:  fitnessRepo,
		cookRepo:     cookRepo,
	}
}

func (f *botFixture) say(t *testing.T, chatID int64, text string) {
	t.Helper()
	msg := &tgbotapi.Message{Text: text, Chat: &tgbotapi.Chat{ID: chatID}}
	require.NoError(t, f.bot.handleMessage(context.Background(), msg))
}

func (f *botFixture) tap(t *testing.T, chatID int64, data string) {
	t.Helper()
	cb := &tgbotapi.CallbackQuery{
		ID:      "cb",
		Data:    data,
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID}},
	}
	require.NoError(t, f.bot.handleCallback(context.Background(), cb))
}

func TestAddTaskConversationWithCategory(t *testing.T) {
	f := newTestBot(t)
	ctx := context.Background()

	category := model.Category{Name: "Физика", Icon: "⚛️", ColorHex: "#3366FF"}
	require.NoError(t, f.categoryRepo.Create(ctx, &category))

	f.say(t, 1, "/add")
	f.say(t, 1, "Решить задачник")
	f.say(t, 1, btnSkip)
	f.say(t, 1, "Высокий")
	f.say(t, 1, "Физика")
	f.say(t, 1, btnSkip)

	tasks, err := f.taskRepo.ListBySection(ctx, model.SectionSecondary)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Решить задачник", tasks[0].Title)
	assert.Equal(t, model.PriorityHigh, tasks[0].Priority)
	require.NotNil(t, tasks[0].CategoryID)
	assert.Equal(t, category.ID, *tasks[0].CategoryID)
}

func TestAddTaskConversationSkipsCategory(t *testing.T) {
	f := newTestBot(t)
	ctx := context.Background()

	category := model.Category{Name: "Физика", Icon: "⚛️", ColorHex: "#3366FF"}
	require.NoError(t, f.categoryRepo.Create(ctx, &category))

	f.say(t, 1, "/add")
	f.say(t, 1, "Погулять")
	f.say(t, 1, btnSkip)
	f.say(t, 1, "Низкий")
	f.say(t, 1, btnSkip)
	f.say(t, 1, btnSkip)

	tasks, err := f.taskRepo.ListBySection(ctx, model.SectionPrimary)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Погулять", tasks[0].Title)
	assert.Nil(t, tasks[0].CategoryID)
}

func TestAddTaskUnknownCategoryReprompts(t *testing.T) {
	f := newTestBot(t)
	ctx := context.Background()

	category := model.Category{Name: "Физика", Icon: "⚛️", ColorHex: "#3366FF"}
	require.NoError(t, f.categoryRepo.Create(ctx, &category))

	f.say(t, 1, "/add")
	f.say(t, 1, "Решить задачник")
	f.say(t, 1, btnSkip)
	f.say(t, 1, "Средний")
	f.say(t, 1, "Химия") // no such category, dialog stays on the same step
	f.say(t, 1, "Физика")
	f.say(t, 1, btnSkip)

	tasks, err := f.taskRepo.ListBySection(ctx, model.SectionSecondary)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.NotNil(t, tasks[0].CategoryID)
	assert.Equal(t, category.ID, *tasks[0].CategoryID)
}

func TestHiddenAddFlow(t *testing.T) {
	f := newTestBot(t)
	ctx := context.Background()

	f.say(t, 1, "/hidden")
	f.say(t, 1, "1109")

	for i, title := range []string{"первая", "вторая"} {
		f.tap(t, 1, cbHiddenAdd)
		f.say(t, 1, title)
		f.say(t, 1, btnSkip)
		f.say(t, 1, "Средний")
		f.say(t, 1, btnSkip)

		hidden, err := f.taskRepo.ListBySection(ctx, model.SectionHidden)
		require.NoError(t, err)
		require.Len(t, hidden, i+1)
		assert.Equal(t, title, hidden[i].Title)
		assert.Equal(t, i, hidden[i].SortOrder)
		assert.Nil(t, hidden[i].CategoryID)
	}
}

func TestHiddenAddRequiresUnlock(t *testing.T) {
	f := newTestBot(t)
	ctx := context.Background()

	f.tap(t, 1, cbHiddenAdd)
	f.say(t, 1, "не должна сохраниться")

	hidden, err := f.taskRepo.ListBySection(ctx, model.SectionHidden)
	require.NoError(t, err)
	assert.Empty(t, hidden)
}

func TestEditTaskTitle(t *testing.T) {
	f := newTestBot(t)
	ctx := context.Background()

	task := model.Task{Title: "черновик"}
	require.NoError(t, f.taskRepo.Create(ctx, &task))

	f.tap(t, 1, fmt.Sprintf("%s%d", cbEditPrefix, task.ID))
	f.say(t, 1, "начисто")

	stored, err := f.taskRepo.FindByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "начисто", stored.Title)
}

func TestPresetAddAndDelete(t *testing.T) {
	f := newTestBot(t)
	ctx := context.Background()

	f.tap(t, 1, cbPresetAdd)
	f.say(t, 1, "Берпи")
	f.say(t, 1, btnSkip)

	presets, err := f.fitnessRepo.ListPresets(ctx)
	require.NoError(t, err)
	require.Len(t, presets, 1)
	assert.Equal(t, "Берпи", presets[0].Name)
	assert.Equal(t, defaultPresetIcon, presets[0].Icon)
	assert.False(t, presets[0].IsBuiltIn)

	f.tap(t, 1, fmt.Sprintf("%s%d", cbPresetDelPfx, presets[0].ID))

	presets, err = f.fitnessRepo.ListPresets(ctx)
	require.NoError(t, err)
	assert.Empty(t, presets)
}

func TestIngredientManagement(t *testing.T) {
	f := newTestBot(t)
	ctx := context.Background()

	f.tap(t, 1, cbCookCatAdd)
	f.say(t, 1, "Крупы")
	f.say(t, 1, "🌾")

	categories, err := f.cookRepo.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, "Крупы", categories[0].Name)
	assert.Equal(t, "🌾", categories[0].Icon)

	f.tap(t, 1, fmt.Sprintf("%s%d", cbIngAddPrefix, categories[0].ID))
	f.say(t, 1, "Гречка")
	f.say(t, 1, btnSkip)

	ingredients, err := f.cookRepo.ListIngredients(ctx, categories[0].ID)
	require.NoError(t, err)
	require.Len(t, ingredients, 1)
	assert.Equal(t, "Гречка", ingredients[0].Name)
	assert.Equal(t, defaultIngredientIcon, ingredients[0].Icon)

	f.tap(t, 1, fmt.Sprintf("%s%d:%d", cbIngDelPrefix, categories[0].ID, ingredients[0].ID))

	ingredients, err = f.cookRepo.ListIngredients(ctx, categories[0].ID)
	require.NoError(t, err)
	assert.Empty(t, ingredients)
}

func TestChatRegisteredOnFirstMessage(t *testing.T) {
	f := newTestBot(t)
	ctx := context.Background()

	f.say(t, 77, "/start")
	f.say(t, 77, "/tasks")

	ids, err := f.chatRepo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{77}, ids)

	require.NoError(t, f.bot.SendDailyReports(ctx))
}

func TestApplyCategoryChoice(t *testing.T) {
	summaries := []service.CategorySummary{
		{Category: model.Category{ID: 3, Name: "Физика"}},
		{Category: model.Category{ID: 5, Name: "История"}},
	}

	var input service.TaskInput
	assert.False(t, applyCategoryChoice(&input, "Химия", summaries))
	assert.Equal(t, model.SectionPrimary, input.Section)
	assert.Nil(t, input.CategoryID)

	require.True(t, applyCategoryChoice(&input, "история", summaries))
	assert.Equal(t, model.SectionSecondary, input.Section)
	require.NotNil(t, input.CategoryID)
	assert.Equal(t, uint(5), *input.CategoryID)
}
