package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/pageza/recipe-catalog/backend/config"
	"github.com/pageza/recipe-catalog/backend/internal/database"
	"github.com/pageza/recipe-catalog/backend/internal/logging"
	"github.com/pageza/recipe-catalog/backend/internal/service"
)

var (
	defaultKitchens = []string{
		"Русская", "Украинская", "Грузинская", "Итальянская", "Французская",
		"Японская", "Китайская", "Мексиканская",
	}
	defaultIngredients = []string{
		"Мука", "Молоко", "Яйца", "Сахар", "Соль", "Масло сливочное",
		"Масло растительное", "Картофель", "Лук", "Морковь", "Свёкла",
		"Капуста", "Говядина", "Свинина", "Курица", "Сметана", "Творог",
		"Сыр", "Рис", "Гречка", "Чеснок", "Томаты", "Спагетти", "Бекон",
	}
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := &cli.Command{
		Name:  "seed",
		Usage: "Insert kitchens and ingredients that are missing from the catalog",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "kitchen",
				Usage: "kitchen name to ensure (repeatable, default: built-in list)",
			},
			&cli.StringSliceFlag{
				Name:  "ingredient",
				Usage: "ingredient name to ensure (repeatable, default: built-in list)",
			},
		},
		Action: seed,
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func seed(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	zl, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = zl.Sync() }()

	db, err := database.New(cfg, zl)
	if err != nil {
		return err
	}
	defer db.Close()

	kitchens := cmd.StringSlice("kitchen")
	if len(kitchens) == 0 {
		kitchens = defaultKitchens
	}
	ingredients := cmd.StringSlice("ingredient")
	if len(ingredients) == 0 {
		ingredients = defaultIngredients
	}

	catalog := service.NewCatalogService(db.DB)
	addedKitchens, err := catalog.EnsureKitchens(ctx, kitchens)
	if err != nil {
		return err
	}
	addedIngredients, err := catalog.EnsureIngredients(ctx, ingredients)
	if err != nil {
		return err
	}

	zl.Info("catalog seeded",
		zap.Int64("kitchens_added", addedKitchens),
		zap.Int64("ingredients_added", addedIngredients),
	)
	return nil
}
