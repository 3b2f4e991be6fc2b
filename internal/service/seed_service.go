package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"pocket-organizer/internal/model"
	"pocket-organizer/internal/repository"
)

// Built-in rows inserted on first run. The guard is per collection: a
// collection that already has rows is left alone, so reseeding after the user
// deleted a built-in never happens.
var (
	seedCategories = []model.Category{
		{Name: "AI 学习", Icon: "🤖", ColorHex: "#63B3FF"},
		{Name: "产品学习", Icon: "💡", ColorHex: "#FF9F63"},
		{Name: "Python/大模型", Icon: "🐍", ColorHex: "#63FFB3"},
		{Name: "文学阅读", Icon: "📖", ColorHex: "#FF63B3"},
	}

	seedPresets = []model.ExercisePreset{
		{Name: "去健身房", Icon: "🏋️", IsBuiltIn: true},
		{Name: "跑步5公里", Icon: "🏃", IsBuiltIn: true},
		{Name: "10个俯卧撑", Icon: "💪", IsBuiltIn: true},
		{Name: "30分钟瑜伽", Icon: "🧘", IsBuiltIn: true},
		{Name: "骑行30分钟", Icon: "🚴", IsBuiltIn: true},
		{Name: "游泳", Icon: "🏊", IsBuiltIn: true},
		{Name: "跳绳10分钟", Icon: "🪢", IsBuiltIn: true},
		{Name: "拉伸运动", Icon: "🙆", IsBuiltIn: true},
	}

	seedIngredients = []struct {
		category model.IngredientCategory
		items    []model.Ingredient
	}{
		{
			category: model.IngredientCategory{Name: "肉类", Icon: "🥩", ColorHex: "#FF6B6B"},
			items: []model.Ingredient{
				{Name: "猪肉", Icon: "🥩"}, {Name: "牛肉", Icon: "🥩"}, {Name: "鸡肉", Icon: "🍗"},
				{Name: "羊肉", Icon: "🍖"}, {Name: "鱼肉", Icon: "🐟"}, {Name: "虾", Icon: "🦐"},
			},
		},
		{
			category: model.IngredientCategory{Name: "蔬菜", Icon: "🥬", ColorHex: "#6BCB77"},
			items: []model.Ingredient{
				{Name: "白菜", Icon: "🥬"}, {Name: "西兰花", Icon: "🥦"}, {Name: "黄瓜", Icon: "🥒"},
				{Name: "番茄", Icon: "🍅"}, {Name: "胡萝卜", Icon: "🥕"}, {Name: "土豆", Icon: "🥔"},
			},
		},
		{
			category: model.IngredientCategory{Name: "主食", Icon: "🍚", ColorHex: "#FFD93D"},
			items: []model.Ingredient{
				{Name: "米饭", Icon: "🍚"}, {Name: "馒头", Icon: "🫓"}, {Name: "面条", Icon: "🍜"},
				{Name: "饼", Icon: "🥯"}, {Name: "方便面", Icon: "🍝"},
			},
		},
		{
			category: model.IngredientCategory{Name: "水果", Icon: "🍎", ColorHex: "#FF9F63"},
			items: []model.Ingredient{
				{Name: "苹果", Icon: "🍎"}, {Name: "香蕉", Icon: "🍌"}, {Name: "橙子", Icon: "🍊"},
				{Name: "葡萄", Icon: "🍇"}, {Name: "草莓", Icon: "🍓"}, {Name: "西瓜", Icon: "🍉"},
			},
		},
		{
			category: model.IngredientCategory{Name: "零食", Icon: "🍪", ColorHex: "#9B59B6"},
			items: []model.Ingredient{
				{Name: "饼干", Icon: "🍪"}, {Name: "薯片", Icon: "🥜"}, {Name: "巧克力", Icon: "🍫"},
				{Name: "糖果", Icon: "🍬"}, {Name: "坚果", Icon: "🌰"},
			},
		},
	}
)

// SeedService inserts the built-in rows on first launch.
type SeedService struct {
	categoryRepo *repository.CategoryRepository
	fitnessRepo  *repository.FitnessRepository
	cookRepo     *repository.CookRepository
	log          zerolog.Logger
}

func NewSeedService(
	categoryRepo *repository.CategoryRepository,
	fitnessRepo *repository.FitnessRepository,
	cookRepo *repository.CookRepository,
	log zerolog.Logger,
) *SeedService {
	return &SeedService{
		categoryRepo: categoryRepo,
		fitnessRepo:  fitnessRepo,
		cookRepo:     cookRepo,
		log:          log,
	}
}

// Run seeds every empty collection. Safe to call on each start.
func (s *SeedService) Run(ctx context.Context) error {
	if err := s.seedCategories(ctx); err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}
	if err := s.seedPresets(ctx); err != nil {
		return fmt.Errorf("seed presets: %w", err)
	}
	if err := s.seedIngredients(ctx); err != nil {
		return fmt.Errorf("seed ingredients: %w", err)
	}
	return nil
}

func (s *SeedService) seedCategories(ctx context.Context) error {
	existing, err := s.categoryRepo.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	for _, c := range seedCategories {
		category := c
		if err := s.categoryRepo.Create(ctx, &category); err != nil {
			return err
		}
	}
	s.log.Info().Int("count", len(seedCategories)).Msg("seeded study categories")
	return nil
}

func (s *SeedService) seedPresets(ctx context.Context) error {
	existing, err := s.fitnessRepo.ListPresets(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	for _, p := range seedPresets {
		preset := p
		if err := s.fitnessRepo.CreatePreset(ctx, &preset); err != nil {
			return err
		}
	}
	s.log.Info().Int("count", len(seedPresets)).Msg("seeded exercise presets")
	return nil
}

func (s *SeedService) seedIngredients(ctx context.Context) error {
	existing, err := s.cookRepo.ListCategories(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	total := 0
	for _, group := range seedIngredients {
		category := group.category
		if err := s.cookRepo.CreateCategory(ctx, &category); err != nil {
			return err
		}
		for _, item := range group.items {
			ingredient := item
			ingredient.CategoryID = &category.ID
			if err := s.cookRepo.AddIngredient(ctx, &ingredient); err != nil {
				return err
			}
			total++
		}
	}
	s.log.Info().
		Int("categories", len(seedIngredients)).
		Int("ingredients", total).
		Msg("seeded ingredient catalog")
	return nil
}
