package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"pocket-organizer/internal/apperr"
	"pocket-organizer/internal/config"
	"pocket-organizer/internal/model"
	"pocket-organizer/internal/query"
	"pocket-organizer/internal/repository"
	"pocket-organizer/internal/service"
)

type conversationStage int

const (
	stageNone conversationStage = iota
	stageTitle
	stageNotes
	stagePriority
	stageCategory
	stageDueDate
	stagePIN
	stagePlanText
	stageEditTitle
	stagePresetName
	stagePresetIcon
	stageCookCatName
	stageCookCatIcon
	stageIngredientName
	stageIngredientIcon
)

// planTarget remembers which record a stagePlanText reply should land in.
type planTarget struct {
	isMeal bool
	meal   model.MealKind
	period model.PeriodKind
}

type conversationState struct {
	stage  conversationStage
	input  service.TaskInput
	target planTarget
	refID  uint   // the record a single-record dialog acts on
	draft  string // name collected by the first step of a two-step dialog
}

const (
	cbCompletePrefix = "complete:"
	cbDeletePrefix   = "delete:"
	cbEditPrefix     = "edit:"
	cbCategoryPrefix = "cat:"
	cbMealPrefix     = "meal:"
	cbPeriodPrefix   = "plan:"
	cbExTogglePrefix = "ex:"
	cbExAddPrefix    = "exadd:"
	cbExDelPrefix    = "exdel:"
	cbMoveUpPrefix   = "hup:"
	cbMoveDownPrefix = "hdown:"
	cbHiddenAdd      = "hadd"
	cbPresetList     = "pmgmt"
	cbPresetAdd      = "padd"
	cbPresetDelPfx   = "pdel:"
	cbCookCatPrefix  = "icat:"
	cbCookCatAdd     = "icatadd"
	cbCookCatDelPfx  = "icatdel:"
	cbIngAddPrefix   = "iadd:"
	cbIngDelPrefix   = "idel:"
)

const (
	btnSkip         = "⏭️ Пропустить"
	btnCancelDialog = "⏪ Отменить ввод"

	menuLabelTasks   = "📋 Задачи"
	menuLabelStudy   = "📚 Учёба"
	menuLabelFitness = "💪 Фитнес"
	menuLabelCook    = "🍳 Питание"
	menuLabelNewTask = "➕ Новая задача"
	menuLabelHidden  = "🔐 Скрытый список"
	menuLabelHelp    = "ℹ️ Помощь"

	defaultPresetIcon     = "🏋️"
	defaultIngredientIcon = "🥦"
	defaultCookCatIcon    = "🧺"
	defaultCookCatColor   = "#8E8E93"
)

// Bot aggregates the Telegram API with the organizer services. It is the only
// place that knows the PIN: the store itself has no access control, so the
// hidden section is reachable here strictly after a successful PIN entry.
type Bot struct {
	api         *tgbotapi.BotAPI
	taskSvc     *service.TaskService
	reminderSvc *service.ReminderService
	chatRepo    *repository.ChatRepository
	fitnessRepo *repository.FitnessRepository
	cookRepo    *repository.CookRepository
	planRepo    *repository.PlanRepository
	cfg         *config.Config
	log         zerolog.Logger

	conversations map[int64]*conversationState
	unlocked      map[int64]bool
	mu            sync.Mutex
}

func New(
	token string,
	taskSvc *service.TaskService,
	reminderSvc *service.ReminderService,
	chatRepo *repository.ChatRepository,
	fitnessRepo *repository.FitnessRepository,
	cookRepo *repository.CookRepository,
	planRepo *repository.PlanRepository,
	cfg *config.Config,
	log zerolog.Logger,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Info().Str("account", api.Self.UserName).Msg("bot authorized")

	return newWithAPI(api, taskSvc, reminderSvc, chatRepo, fitnessRepo, cookRepo, planRepo, cfg, log), nil
}

func newWithAPI(
	api *tgbotapi.BotAPI,
	taskSvc *service.TaskService,
	reminderSvc *service.ReminderService,
	chatRepo *repository.ChatRepository,
	fitnessRepo *repository.FitnessRepository,
	cookRepo *repository.CookRepository,
	planRepo *repository.PlanRepository,
	cfg *config.Config,
	log zerolog.Logger,
) *Bot {
	return &Bot{
		api:           api,
		taskSvc:       taskSvc,
		reminderSvc:   reminderSvc,
		chatRepo:      chatRepo,
		fitnessRepo:   fitnessRepo,
		cookRepo:      cookRepo,
		planRepo:      planRepo,
		cfg:           cfg,
		log:           log,
		conversations: make(map[int64]*conversationState),
		unlocked:      make(map[int64]bool),
	}
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	b.log.Info().Msg("start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
				b.log.Error().Err(err).Msg("callback")
			}
		case update.Message != nil:
			if err := b.handleMessage(ctx, update.Message); err != nil {
				b.log.Error().Err(err).Msg("message")
			}
		}
	}
	return ctx.Err()
}

// SendDailyReports pushes the digest to every registered chat.
func (b *Bot) SendDailyReports(ctx context.Context) error {
	chats, err := b.chatRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("list recipients: %w", err)
	}
	if len(chats) == 0 {
		return nil
	}

	summary, err := b.reminderSvc.DailySummary(ctx, time.Now())
	if err != nil {
		return fmt.Errorf("build summary: %w", err)
	}
	for _, chatID := range chats {
		if err := b.sendHTML(chatID, summary, nil); err != nil {
			b.log.Error().Err(err).Int64("chat", chatID).Msg("send report")
		}
	}
	return nil
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	if err := b.chatRepo.Register(ctx, chatID); err != nil {
		b.log.Error().Err(err).Int64("chat", chatID).Msg("register chat")
	}

	b.mu.Lock()
	state := b.conversations[chatID]
	b.mu.Unlock()

	if text == btnCancelDialog {
		b.clearState(chatID)
		return b.sendMenu(chatID, "Ввод отменён.")
	}

	if state != nil && state.stage != stageNone {
		return b.continueConversation(ctx, chatID, state, text)
	}

	switch text {
	case "/start":
		return b.sendMenu(chatID, "Привет! Я твой карманный органайзер.")
	case menuLabelTasks, "/tasks":
		return b.sendTasks(ctx, chatID)
	case menuLabelStudy, "/study":
		return b.sendStudy(ctx, chatID)
	case menuLabelFitness, "/fitness":
		return b.sendFitness(ctx, chatID)
	case menuLabelCook, "/meals":
		return b.sendCook(ctx, chatID)
	case menuLabelNewTask, "/add":
		b.setState(chatID, &conversationState{stage: stageTitle})
		return b.sendText(chatID, "Введи название задачи:", cancelKeyboard())
	case menuLabelHidden, "/hidden":
		if b.isUnlocked(chatID) {
			return b.sendHidden(ctx, chatID)
		}
		b.setState(chatID, &conversationState{stage: stagePIN})
		return b.sendText(chatID, "Введи 4-значный код:", cancelKeyboard())
	case menuLabelHelp, "/help":
		return b.sendHTML(chatID, helpText(), menuKeyboard())
	default:
		return b.sendMenu(chatID, "Не понял. Выбери пункт меню.")
	}
}

func (b *Bot) continueConversation(ctx context.Context, chatID int64, state *conversationState, text string) error {
	switch state.stage {
	case stageTitle:
		if text == "" {
			return b.sendText(chatID, "Название не может быть пустым. Попробуй ещё раз:", cancelKeyboard())
		}
		state.input.Title = text
		state.stage = stageNotes
		b.setState(chatID, state)
		return b.sendText(chatID, "Добавь заметку или нажми «Пропустить»:", skipKeyboard())
	case stageNotes:
		if text != btnSkip {
			state.input.Notes = text
		}
		state.stage = stagePriority
		b.setState(chatID, state)
		return b.sendText(chatID, "Приоритет? (низкий / средний / высокий)", priorityKeyboard())
	case stagePriority:
		state.input.Priority = parsePriority(text)
		// Hidden tasks never carry a category.
		if state.input.Section == model.SectionHidden {
			state.stage = stageDueDate
			b.setState(chatID, state)
			return b.sendText(chatID, "Срок в формате ДД.ММ.ГГГГ или «Пропустить»:", skipKeyboard())
		}
		summaries, err := b.taskSvc.ListCategorySummaries(ctx)
		if err != nil {
			return err
		}
		if len(summaries) == 0 {
			state.stage = stageDueDate
			b.setState(chatID, state)
			return b.sendText(chatID, "Срок в формате ДД.ММ.ГГГГ или «Пропустить»:", skipKeyboard())
		}
		state.stage = stageCategory
		b.setState(chatID, state)
		return b.sendText(chatID, "Категория для задачи или «Пропустить»:", categoryKeyboard(summaries))
	case stageCategory:
		if text != btnSkip {
			summaries, err := b.taskSvc.ListCategorySummaries(ctx)
			if err != nil {
				return err
			}
			if !applyCategoryChoice(&state.input, text, summaries) {
				return b.sendText(chatID, "Нет такой категории. Выбери из списка или «Пропустить»:", categoryKeyboard(summaries))
			}
		}
		state.stage = stageDueDate
		b.setState(chatID, state)
		return b.sendText(chatID, "Срок в формате ДД.ММ.ГГГГ или «Пропустить»:", skipKeyboard())
	case stageDueDate:
		if text != btnSkip {
			due, err := time.ParseInLocation("02.01.2006", text, time.Local)
			if err != nil {
				return b.sendText(chatID, "Не понял дату. Формат: ДД.ММ.ГГГГ", skipKeyboard())
			}
			state.input.DueDate = &due
		}
		b.clearState(chatID)
		if _, err := b.taskSvc.CreateTask(ctx, state.input); err != nil {
			b.log.Error().Err(err).Msg("create task")
			return b.sendMenu(chatID, "Не удалось сохранить задачу.")
		}
		return b.sendMenu(chatID, "Задача добавлена ✅")
	case stageEditTitle:
		if text == "" {
			return b.sendText(chatID, "Название не может быть пустым. Попробуй ещё раз:", cancelKeyboard())
		}
		b.clearState(chatID)
		if _, err := b.taskSvc.RenameTask(ctx, state.refID, text); err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return b.sendMenu(chatID, "Задача не найдена.")
			}
			b.log.Error().Err(err).Msg("rename task")
			return b.sendMenu(chatID, "Не удалось переименовать задачу.")
		}
		return b.sendMenu(chatID, "Задача обновлена ✅")
	case stagePIN:
		b.clearState(chatID)
		if text != b.cfg.PINCode {
			return b.sendMenu(chatID, "Неверный код.")
		}
		b.mu.Lock()
		b.unlocked[chatID] = true
		b.mu.Unlock()
		return b.sendHidden(ctx, chatID)
	case stagePlanText:
		b.clearState(chatID)
		content := text
		if content == btnSkip {
			content = ""
		}
		var err error
		if state.target.isMeal {
			_, err = b.planRepo.UpsertMealPlan(ctx, time.Now(), state.target.meal, content)
		} else {
			_, err = b.planRepo.UpsertPeriodPlan(ctx, state.target.period, time.Now(), content)
		}
		if err != nil {
			b.log.Error().Err(err).Msg("save plan")
			return b.sendMenu(chatID, "Не удалось сохранить план.")
		}
		return b.sendMenu(chatID, "План сохранён ✅")
	case stagePresetName:
		if text == "" {
			return b.sendText(chatID, "Название не может быть пустым. Попробуй ещё раз:", cancelKeyboard())
		}
		state.draft = text
		state.stage = stagePresetIcon
		b.setState(chatID, state)
		return b.sendText(chatID, "Эмодзи для упражнения или «Пропустить»:", skipKeyboard())
	case stagePresetIcon:
		b.clearState(chatID)
		preset := model.ExercisePreset{Name: state.draft, Icon: iconOrDefault(text, defaultPresetIcon)}
		if err := b.fitnessRepo.CreatePreset(ctx, &preset); err != nil {
			b.log.Error().Err(err).Msg("create preset")
			return b.sendMenu(chatID, "Не удалось сохранить упражнение.")
		}
		return b.sendPresets(ctx, chatID)
	case stageCookCatName:
		if text == "" {
			return b.sendText(chatID, "Название не может быть пустым. Попробуй ещё раз:", cancelKeyboard())
		}
		state.draft = text
		state.stage = stageCookCatIcon
		b.setState(chatID, state)
		return b.sendText(chatID, "Эмодзи для категории или «Пропустить»:", skipKeyboard())
	case stageCookCatIcon:
		b.clearState(chatID)
		category := model.IngredientCategory{
			Name:     state.draft,
			Icon:     iconOrDefault(text, defaultCookCatIcon),
			ColorHex: defaultCookCatColor,
		}
		if err := b.cookRepo.CreateCategory(ctx, &category); err != nil {
			b.log.Error().Err(err).Msg("create ingredient category")
			return b.sendMenu(chatID, "Не удалось сохранить категорию.")
		}
		return b.sendCook(ctx, chatID)
	case stageIngredientName:
		if text == "" {
			return b.sendText(chatID, "Название не может быть пустым. Попробуй ещё раз:", cancelKeyboard())
		}
		state.draft = text
		state.stage = stageIngredientIcon
		b.setState(chatID, state)
		return b.sendText(chatID, "Эмодзи для продукта или «Пропустить»:", skipKeyboard())
	case stageIngredientIcon:
		b.clearState(chatID)
		categoryID := state.refID
		ingredient := model.Ingredient{
			CategoryID: &categoryID,
			Name:       state.draft,
			Icon:       iconOrDefault(text, defaultIngredientIcon),
		}
		if err := b.cookRepo.AddIngredient(ctx, &ingredient); err != nil {
			b.log.Error().Err(err).Msg("create ingredient")
			return b.sendMenu(chatID, "Не удалось сохранить продукт.")
		}
		return b.sendIngredients(ctx, chatID, categoryID)
	default:
		b.clearState(chatID)
		return b.sendMenu(chatID, "Продолжим из меню.")
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	defer func() {
		if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
			b.log.Error().Err(err).Msg("ack callback")
		}
	}()

	chatID := cb.Message.Chat.ID
	data := cb.Data

	switch {
	case strings.HasPrefix(data, cbCompletePrefix):
		id, err := parseID(strings.TrimPrefix(data, cbCompletePrefix))
		if err != nil {
			return err
		}
		if _, err := b.taskSvc.ToggleComplete(ctx, id); err != nil && !errors.Is(err, apperr.ErrNotFound) {
			return err
		}
		return b.sendTasks(ctx, chatID)
	case strings.HasPrefix(data, cbDeletePrefix):
		id, err := parseID(strings.TrimPrefix(data, cbDeletePrefix))
		if err != nil {
			return err
		}
		if err := b.taskSvc.DeleteTask(ctx, id); err != nil && !errors.Is(err, apperr.ErrNotFound) {
			return err
		}
		return b.sendTasks(ctx, chatID)
	case strings.HasPrefix(data, cbEditPrefix):
		id, err := parseID(strings.TrimPrefix(data, cbEditPrefix))
		if err != nil {
			return err
		}
		b.setState(chatID, &conversationState{stage: stageEditTitle, refID: id})
		return b.sendText(chatID, "Новое название задачи:", cancelKeyboard())
	case strings.HasPrefix(data, cbCategoryPrefix):
		id, err := parseID(strings.TrimPrefix(data, cbCategoryPrefix))
		if err != nil {
			return err
		}
		return b.sendCategory(ctx, chatID, id)
	case strings.HasPrefix(data, cbMealPrefix):
		code, err := strconv.Atoi(strings.TrimPrefix(data, cbMealPrefix))
		if err != nil {
			return fmt.Errorf("parse meal kind: %w", err)
		}
		kind := model.MealKind(code)
		if !kind.Valid() {
			return fmt.Errorf("unknown meal kind %d", code)
		}
		b.setState(chatID, &conversationState{
			stage:  stagePlanText,
			target: planTarget{isMeal: true, meal: kind},
		})
		return b.sendText(chatID, fmt.Sprintf("%s Что планируешь? Текст или «Пропустить», чтобы очистить:", kind.Icon()), skipKeyboard())
	case strings.HasPrefix(data, cbPeriodPrefix):
		code, err := strconv.Atoi(strings.TrimPrefix(data, cbPeriodPrefix))
		if err != nil {
			return fmt.Errorf("parse period kind: %w", err)
		}
		kind := model.PeriodKind(code)
		if !kind.Valid() {
			return fmt.Errorf("unknown period kind %d", code)
		}
		b.setState(chatID, &conversationState{
			stage:  stagePlanText,
			target: planTarget{period: kind},
		})
		return b.sendText(chatID, "Новый текст плана или «Пропустить», чтобы очистить:", skipKeyboard())
	case strings.HasPrefix(data, cbExTogglePrefix):
		id, err := parseID(strings.TrimPrefix(data, cbExTogglePrefix))
		if err != nil {
			return err
		}
		entry, err := b.fitnessRepo.FindEntry(ctx, id)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return b.sendFitness(ctx, chatID)
			}
			return err
		}
		if err := b.fitnessRepo.SetEntryCompleted(ctx, id, !entry.IsCompleted); err != nil {
			return err
		}
		return b.sendFitness(ctx, chatID)
	case strings.HasPrefix(data, cbExAddPrefix):
		id, err := parseID(strings.TrimPrefix(data, cbExAddPrefix))
		if err != nil {
			return err
		}
		if _, err := b.fitnessRepo.AddEntry(ctx, id, time.Now()); err != nil &&
			!errors.Is(err, apperr.ErrConstraintViolation) {
			return err
		}
		return b.sendFitness(ctx, chatID)
	case strings.HasPrefix(data, cbExDelPrefix):
		id, err := parseID(strings.TrimPrefix(data, cbExDelPrefix))
		if err != nil {
			return err
		}
		if err := b.fitnessRepo.DeleteEntry(ctx, id); err != nil && !errors.Is(err, apperr.ErrNotFound) {
			return err
		}
		return b.sendFitness(ctx, chatID)
	case data == cbPresetList:
		return b.sendPresets(ctx, chatID)
	case data == cbPresetAdd:
		b.setState(chatID, &conversationState{stage: stagePresetName})
		return b.sendText(chatID, "Название упражнения:", cancelKeyboard())
	case strings.HasPrefix(data, cbPresetDelPfx):
		id, err := parseID(strings.TrimPrefix(data, cbPresetDelPfx))
		if err != nil {
			return err
		}
		if err := b.fitnessRepo.DeletePreset(ctx, id); err != nil && !errors.Is(err, apperr.ErrNotFound) {
			return err
		}
		return b.sendPresets(ctx, chatID)
	case data == cbCookCatAdd:
		b.setState(chatID, &conversationState{stage: stageCookCatName})
		return b.sendText(chatID, "Название категории продуктов:", cancelKeyboard())
	case strings.HasPrefix(data, cbCookCatDelPfx):
		id, err := parseID(strings.TrimPrefix(data, cbCookCatDelPfx))
		if err != nil {
			return err
		}
		if err := b.cookRepo.DeleteCategory(ctx, id); err != nil && !errors.Is(err, apperr.ErrNotFound) {
			return err
		}
		return b.sendCook(ctx, chatID)
	case strings.HasPrefix(data, cbCookCatPrefix):
		id, err := parseID(strings.TrimPrefix(data, cbCookCatPrefix))
		if err != nil {
			return err
		}
		return b.sendIngredients(ctx, chatID, id)
	case strings.HasPrefix(data, cbIngAddPrefix):
		id, err := parseID(strings.TrimPrefix(data, cbIngAddPrefix))
		if err != nil {
			return err
		}
		b.setState(chatID, &conversationState{stage: stageIngredientName, refID: id})
		return b.sendText(chatID, "Название продукта:", cancelKeyboard())
	case strings.HasPrefix(data, cbIngDelPrefix):
		categoryID, ingredientID, err := parseIDPair(strings.TrimPrefix(data, cbIngDelPrefix))
		if err != nil {
			return err
		}
		if err := b.cookRepo.DeleteIngredient(ctx, ingredientID); err != nil && !errors.Is(err, apperr.ErrNotFound) {
			return err
		}
		return b.sendIngredients(ctx, chatID, categoryID)
	case data == cbHiddenAdd:
		if !b.isUnlocked(chatID) {
			return b.sendMenu(chatID, "Сначала введи код.")
		}
		b.setState(chatID, &conversationState{
			stage: stageTitle,
			input: service.TaskInput{Section: model.SectionHidden},
		})
		return b.sendText(chatID, "Введи название скрытой задачи:", cancelKeyboard())
	case strings.HasPrefix(data, cbMoveUpPrefix):
		return b.moveHidden(ctx, chatID, strings.TrimPrefix(data, cbMoveUpPrefix), -1)
	case strings.HasPrefix(data, cbMoveDownPrefix):
		return b.moveHidden(ctx, chatID, strings.TrimPrefix(data, cbMoveDownPrefix), 1)
	default:
		return nil
	}
}

func (b *Bot) moveHidden(ctx context.Context, chatID int64, raw string, delta int) error {
	if !b.isUnlocked(chatID) {
		return b.sendMenu(chatID, "Сначала введи код.")
	}
	id, err := parseID(raw)
	if err != nil {
		return err
	}
	if err := b.taskSvc.MoveHidden(ctx, id, delta); err != nil &&
		!errors.Is(err, apperr.ErrNotFound) && !errors.Is(err, apperr.ErrInvalidReorder) {
		return err
	}
	return b.sendHidden(ctx, chatID)
}

func (b *Bot) sendTasks(ctx context.Context, chatID int64) error {
	pending, completed, err := b.taskSvc.ListSection(ctx, model.SectionPrimary)
	if err != nil {
		return err
	}

	var builder strings.Builder
	builder.WriteString("📋 <b>Задачи</b>\n\n")
	writeTaskSection(&builder, "Открытые", pending)
	writeTaskSection(&builder, "Выполненные", completed)

	rows := taskButtons(pending)
	return b.sendHTML(chatID, builder.String(), inlineMarkup(rows))
}

func (b *Bot) sendStudy(ctx context.Context, chatID int64) error {
	summaries, err := b.taskSvc.ListCategorySummaries(ctx)
	if err != nil {
		return err
	}

	var builder strings.Builder
	builder.WriteString("📚 <b>Учёба</b>\n\n")
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, s := range summaries {
		builder.WriteString(fmt.Sprintf("%s %s — открыто: %d\n",
			s.Category.Icon, html.EscapeString(s.Category.Name), s.Incomplete))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("%s %s (%d)", s.Category.Icon, s.Category.Name, s.Incomplete),
				fmt.Sprintf("%s%d", cbCategoryPrefix, s.Category.ID),
			),
		))
	}
	if len(summaries) == 0 {
		builder.WriteString("Категорий пока нет.\n")
	}
	return b.sendHTML(chatID, builder.String(), inlineMarkup(rows))
}

func (b *Bot) sendCategory(ctx context.Context, chatID int64, categoryID uint) error {
	tasks, err := b.taskSvc.SearchSection(ctx, model.SectionSecondary, "")
	if err != nil {
		return err
	}
	pending, completed := query.Partition(query.ByCategory(tasks, categoryID))

	var builder strings.Builder
	builder.WriteString("📚 <b>Категория</b>\n\n")
	writeTaskSection(&builder, "Открытые", pending)
	writeTaskSection(&builder, "Выполненные", completed)

	rows := taskButtons(pending)
	return b.sendHTML(chatID, builder.String(), inlineMarkup(rows))
}

func (b *Bot) sendFitness(ctx context.Context, chatID int64) error {
	now := time.Now()
	entries, err := b.fitnessRepo.ListEntries(ctx, now)
	if err != nil {
		return err
	}
	presets, err := b.fitnessRepo.ListPresets(ctx)
	if err != nil {
		return err
	}
	weekly, err := b.planRepo.PeriodPlanFor(ctx, model.PeriodWeekly, now)
	if err != nil {
		return err
	}
	monthly, err := b.planRepo.PeriodPlanFor(ctx, model.PeriodMonthly, now)
	if err != nil {
		return err
	}

	var builder strings.Builder
	builder.WriteString("💪 <b>Фитнес</b>\n\n<b>Сегодня:</b>\n")
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, entry := range entries {
		name, icon := "упражнение", "🏋️"
		if entry.Preset != nil {
			name, icon = entry.Preset.Name, entry.Preset.Icon
		}
		mark := "⬜"
		if entry.IsCompleted {
			mark = "✅"
		}
		builder.WriteString(fmt.Sprintf("%s %s %s\n", mark, icon, html.EscapeString(name)))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%s %s", mark, name),
				fmt.Sprintf("%s%d", cbExTogglePrefix, entry.ID)),
			tgbotapi.NewInlineKeyboardButtonData("🗑",
				fmt.Sprintf("%s%d", cbExDelPrefix, entry.ID)),
		))
	}
	if len(entries) == 0 {
		builder.WriteString("— ничего не запланировано\n")
	}

	builder.WriteString("\n<b>План на неделю:</b>\n" + planText(periodContent(weekly)))
	builder.WriteString("\n<b>План на месяц:</b>\n" + planText(periodContent(monthly)))

	var presetRow []tgbotapi.InlineKeyboardButton
	for _, p := range presets {
		presetRow = append(presetRow, tgbotapi.NewInlineKeyboardButtonData(
			p.Icon, fmt.Sprintf("%s%d", cbExAddPrefix, p.ID)))
		if len(presetRow) == 4 {
			rows = append(rows, presetRow)
			presetRow = nil
		}
	}
	if len(presetRow) > 0 {
		rows = append(rows, presetRow)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("✏️ Неделя", fmt.Sprintf("%s%d", cbPeriodPrefix, model.PeriodWeekly)),
		tgbotapi.NewInlineKeyboardButtonData("✏️ Месяц", fmt.Sprintf("%s%d", cbPeriodPrefix, model.PeriodMonthly)),
		tgbotapi.NewInlineKeyboardButtonData("⚙️ Упражнения", cbPresetList),
	))

	return b.sendHTML(chatID, builder.String(), inlineMarkup(rows))
}

// sendPresets is the exercise management screen: every preset with a delete
// button plus a button to create a custom one.
func (b *Bot) sendPresets(ctx context.Context, chatID int64) error {
	presets, err := b.fitnessRepo.ListPresets(ctx)
	if err != nil {
		return err
	}

	var builder strings.Builder
	builder.WriteString("⚙️ <b>Упражнения</b>\n\n")
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, p := range presets {
		builder.WriteString(fmt.Sprintf("%s %s\n", p.Icon, html.EscapeString(p.Name)))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("%s %s", p.Icon, truncate(p.Name, 20)),
				fmt.Sprintf("%s%d", cbExAddPrefix, p.ID)),
			tgbotapi.NewInlineKeyboardButtonData("🗑", fmt.Sprintf("%s%d", cbPresetDelPfx, p.ID)),
		))
	}
	if len(presets) == 0 {
		builder.WriteString("— пусто\n")
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("➕ Упражнение", cbPresetAdd),
	))
	return b.sendHTML(chatID, builder.String(), inlineMarkup(rows))
}

func (b *Bot) sendCook(ctx context.Context, chatID int64) error {
	now := time.Now()
	categories, err := b.cookRepo.ListCategories(ctx)
	if err != nil {
		return err
	}

	var builder strings.Builder
	builder.WriteString("🍳 <b>Питание</b>\n\n<b>Сегодняшнее меню:</b>\n")
	var rows [][]tgbotapi.InlineKeyboardButton
	var mealRow []tgbotapi.InlineKeyboardButton
	for _, kind := range []model.MealKind{model.MealBreakfast, model.MealLunch, model.MealDinner} {
		plan, err := b.planRepo.MealPlanFor(ctx, now, kind)
		if err != nil {
			return err
		}
		content := ""
		if plan != nil {
			content = plan.Content
		}
		builder.WriteString(fmt.Sprintf("%s %s", kind.Icon(), planText(content)))
		mealRow = append(mealRow, tgbotapi.NewInlineKeyboardButtonData(
			fmt.Sprintf("✏️ %s", kind.Icon()), fmt.Sprintf("%s%d", cbMealPrefix, kind)))
	}
	rows = append(rows, mealRow)

	builder.WriteString("\n<b>Продукты:</b>\n")
	for _, c := range categories {
		ingredients, err := b.cookRepo.ListIngredients(ctx, c.ID)
		if err != nil {
			return err
		}
		builder.WriteString(fmt.Sprintf("%s %s — %d\n", c.Icon, html.EscapeString(c.Name), len(ingredients)))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("%s %s (%d)", c.Icon, truncate(c.Name, 20), len(ingredients)),
				fmt.Sprintf("%s%d", cbCookCatPrefix, c.ID)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("➕ Категория", cbCookCatAdd),
	))

	return b.sendHTML(chatID, builder.String(), inlineMarkup(rows))
}

// sendIngredients is one ingredient category's screen: items with delete
// buttons, plus adding an item and deleting the whole category.
func (b *Bot) sendIngredients(ctx context.Context, chatID int64, categoryID uint) error {
	category, err := b.cookRepo.FindCategory(ctx, categoryID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return b.sendCook(ctx, chatID)
		}
		return err
	}
	ingredients, err := b.cookRepo.ListIngredients(ctx, categoryID)
	if err != nil {
		return err
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("%s <b>%s</b>\n\n", category.Icon, html.EscapeString(category.Name)))
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, ing := range ingredients {
		builder.WriteString(fmt.Sprintf("%s %s\n", ing.Icon, html.EscapeString(ing.Name)))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("🗑 %s %s", ing.Icon, truncate(ing.Name, 20)),
				fmt.Sprintf("%s%d:%d", cbIngDelPrefix, categoryID, ing.ID)),
		))
	}
	if len(ingredients) == 0 {
		builder.WriteString("— пусто\n")
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("➕ Продукт", fmt.Sprintf("%s%d", cbIngAddPrefix, categoryID)),
		tgbotapi.NewInlineKeyboardButtonData("🗑 Категория", fmt.Sprintf("%s%d", cbCookCatDelPfx, categoryID)),
	))
	return b.sendHTML(chatID, builder.String(), inlineMarkup(rows))
}

func (b *Bot) sendHidden(ctx context.Context, chatID int64) error {
	pending, completed, err := b.taskSvc.ListSection(ctx, model.SectionHidden)
	if err != nil {
		return err
	}

	var builder strings.Builder
	builder.WriteString("🔐 <b>Скрытый список</b>\n\n")
	writeTaskSection(&builder, "Открытые", pending)
	writeTaskSection(&builder, "Выполненные", completed)

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, t := range pending {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬆️", fmt.Sprintf("%s%d", cbMoveUpPrefix, t.ID)),
			tgbotapi.NewInlineKeyboardButtonData("⬇️", fmt.Sprintf("%s%d", cbMoveDownPrefix, t.ID)),
			tgbotapi.NewInlineKeyboardButtonData("✅ "+truncate(t.Title, 16),
				fmt.Sprintf("%s%d", cbCompletePrefix, t.ID)),
			tgbotapi.NewInlineKeyboardButtonData("🗑", fmt.Sprintf("%s%d", cbDeletePrefix, t.ID)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("➕ Задача", cbHiddenAdd),
	))
	return b.sendHTML(chatID, builder.String(), inlineMarkup(rows))
}

func writeTaskSection(builder *strings.Builder, title string, tasks []model.Task) {
	builder.WriteString(fmt.Sprintf("<b>%s (%d)</b>\n", title, len(tasks)))
	if len(tasks) == 0 {
		builder.WriteString("— пусто\n\n")
		return
	}
	now := time.Now()
	for _, t := range tasks {
		icon := "🟢"
		if query.IsOverdue(t, now) {
			icon = "⚠️"
		} else if t.IsCompleted {
			icon = "✔️"
		}
		line := fmt.Sprintf("%s %s", icon, html.EscapeString(t.Title))
		if t.DueDate != nil {
			line += fmt.Sprintf(" — до %s", t.DueDate.Format("02.01"))
		}
		builder.WriteString(line + "\n")
	}
	builder.WriteString("\n")
}

func taskButtons(pending []model.Task) [][]tgbotapi.InlineKeyboardButton {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, t := range pending {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ "+truncate(t.Title, 24),
				fmt.Sprintf("%s%d", cbCompletePrefix, t.ID)),
			tgbotapi.NewInlineKeyboardButtonData("✏️", fmt.Sprintf("%s%d", cbEditPrefix, t.ID)),
			tgbotapi.NewInlineKeyboardButtonData("🗑", fmt.Sprintf("%s%d", cbDeletePrefix, t.ID)),
		))
	}
	return rows
}

func (b *Bot) sendMenu(chatID int64, text string) error {
	return b.sendText(chatID, text, menuKeyboard())
}

func (b *Bot) sendText(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

func (b *Bot) sendHTML(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

func (b *Bot) setState(chatID int64, state *conversationState) {
	b.mu.Lock()
	b.conversations[chatID] = state
	b.mu.Unlock()
}

func (b *Bot) clearState(chatID int64) {
	b.mu.Lock()
	delete(b.conversations, chatID)
	b.mu.Unlock()
}

func (b *Bot) isUnlocked(chatID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.unlocked[chatID]
}

func menuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelTasks),
			tgbotapi.NewKeyboardButton(menuLabelStudy),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelFitness),
			tgbotapi.NewKeyboardButton(menuLabelCook),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelNewTask),
			tgbotapi.NewKeyboardButton(menuLabelHidden),
			tgbotapi.NewKeyboardButton(menuLabelHelp),
		),
	)
}

func cancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancelDialog)),
	)
}

func skipKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnSkip),
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
}

func priorityKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("Низкий"),
			tgbotapi.NewKeyboardButton("Средний"),
			tgbotapi.NewKeyboardButton("Высокий"),
		),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancelDialog)),
	)
}

// categoryKeyboard lays out category names two per row, skip/cancel last.
func categoryKeyboard(summaries []service.CategorySummary) tgbotapi.ReplyKeyboardMarkup {
	var rows [][]tgbotapi.KeyboardButton
	var row []tgbotapi.KeyboardButton
	for _, s := range summaries {
		row = append(row, tgbotapi.NewKeyboardButton(s.Category.Name))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButton(btnSkip),
		tgbotapi.NewKeyboardButton(btnCancelDialog),
	))
	return tgbotapi.NewReplyKeyboard(rows...)
}

// applyCategoryChoice resolves a typed category name. A match binds the task
// to that category and moves it to the secondary section.
func applyCategoryChoice(input *service.TaskInput, choice string, summaries []service.CategorySummary) bool {
	for _, s := range summaries {
		if strings.EqualFold(s.Category.Name, choice) {
			id := s.Category.ID
			input.CategoryID = &id
			input.Section = model.SectionSecondary
			return true
		}
	}
	return false
}

func inlineMarkup(rows [][]tgbotapi.InlineKeyboardButton) interface{} {
	if len(rows) == 0 {
		return nil
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func parsePriority(text string) model.Priority {
	switch strings.ToLower(text) {
	case "низкий", "low":
		return model.PriorityLow
	case "высокий", "high":
		return model.PriorityHigh
	default:
		return model.PriorityMedium
	}
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse id %q: %w", raw, err)
	}
	return uint(id), nil
}

// parseIDPair splits "a:b" callback payloads.
func parseIDPair(raw string) (uint, uint, error) {
	first, rest, found := strings.Cut(raw, ":")
	if !found {
		return 0, 0, fmt.Errorf("parse id pair %q: missing separator", raw)
	}
	a, err := parseID(first)
	if err != nil {
		return 0, 0, err
	}
	b, err := parseID(rest)
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

func iconOrDefault(text, fallback string) string {
	if text == "" || text == btnSkip {
		return fallback
	}
	return text
}

func periodContent(plan *model.PeriodPlan) string {
	if plan == nil {
		return ""
	}
	return plan.Content
}

func planText(content string) string {
	if content == "" {
		return "— не задан\n"
	}
	return html.EscapeString(content) + "\n"
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

func helpText() string {
	return strings.Join([]string{
		"<b>Команды:</b>",
		"/tasks — список задач",
		"/add — новая задача",
		"/study — учебные категории",
		"/fitness — тренировки и планы",
		"/meals — меню и продукты",
		"/hidden — скрытый список (по коду)",
	}, "\n")
}
