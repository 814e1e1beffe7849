package main

import (
	"ImageEditor/internal/app/editor"
	"ImageEditor/internal/config"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	os.Exit(run())
}

// run выполняет одно редактирование и возвращает код выхода.
func run() int {
	cfg, cfgErr := config.NewConfig()

	// создаём предустановленный регистратор zap
	zcfg := zap.NewDevelopmentConfig()
	zcfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if cfg != nil && cfg.DebugMode {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := zcfg.Build()
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		return 1
	}

	// делаем регистратор SugaredLogger
	sugar := logger.Sugar()
	//сброс буфера логгера
	defer func() {
		_ = logger.Sync()
	}()

	if cfgErr != nil {
		sugar.Errorw("Ошибка настроек", "error", fmt.Errorf("%w: %w", editor.ErrConfiguration, cfgErr))
		return 1
	}

	sugar.Infow(
		"Starting app",
		"DebugMode", cfg.DebugMode,
		"DryRun", cfg.DryRun,
		"Model", cfg.OpenRouter.Model,
		"PromptInfo", cfg.PromptInfoPath,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ed, err := editor.Build(cfg, sugar)
	if err != nil {
		sugar.Errorw("Не удалось запустить редактор", "error", err)
		return 1
	}

	path, err := ed.RunOnce(ctx)
	if err != nil {
		sugar.Errorw("Редактирование не выполнено", "error", err)
		return 1
	}

	fmt.Println(path)
	return 0
}
