package editor

import (
	"ImageEditor/internal/ai"
	"ImageEditor/internal/config"
	"ImageEditor/internal/service/image"
	"ImageEditor/internal/service/output"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"
)

// Editor выполняет одно редактирование: задание → картинка → запрос → файл.
type Editor struct {
	cfg       *config.Config
	client    ai.ImageClient
	processor *image.Processor
	writer    *output.Writer
	logger    *zap.SugaredLogger
}

func New(cfg *config.Config, client ai.ImageClient, logger *zap.SugaredLogger) *Editor {
	return &Editor{
		cfg:       cfg,
		client:    client,
		processor: image.NewProcessor(cfg.Input.MaxWidth),
		writer:    output.NewWriter(logger, cfg.Output.DateSubfolders, cfg.Output.SaveMetadata),
		logger:    logger,
	}
}

// Build собирает Editor по настройкам. Ключ проверяется до создания клиента,
// поэтому без ключа ни одного сетевого запроса не будет.
func Build(cfg *config.Config, logger *zap.SugaredLogger, opts ...option.RequestOption) (*Editor, error) {
	if strings.TrimSpace(cfg.OpenRouter.APIKey) == "" {
		return nil, fmt.Errorf("%w: OPENROUTER_API_KEY is not set", ErrAuthentication)
	}

	var client ai.ImageClient
	if cfg.DryRun {
		logger.Infow("DRY_RUN: запросы в сеть не отправляются, вернётся исходная картинка")
		client = ai.NewStubClient()
	} else {
		c, err := ai.NewImageEditClient(cfg.OpenRouter, logger, opts...)
		if err != nil {
			return nil, err
		}
		client = c
	}
	return New(cfg, client, logger), nil
}

// LoadConfig читает файл задания.
func (e *Editor) LoadConfig(path string) (*config.EditConfig, error) {
	job, err := config.LoadEditConfig(path, e.cfg.Output.BaseFolder)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	return job, nil
}

// ReadInputImage читает входную картинку и готовит её к отправке.
func (e *Editor) ReadInputImage(path string) (image.Payload, error) {
	img, resized, err := e.processor.Load(path)
	if err != nil {
		return image.Payload{}, fmt.Errorf("%w: %w", ErrInputNotFound, err)
	}
	e.logger.Debugw("Входная картинка прочитана", "path", path, "mime", img.MimeType, "bytes", len(img.Data), "resized", resized)
	return img, nil
}

// SubmitEdit делает единственный запрос к модели. Ошибки уже разложены клиентом по таксономии.
func (e *Editor) SubmitEdit(ctx context.Context, prompt string, img image.Payload, model string) (ai.EditResult, error) {
	res, err := e.client.EditImage(ctx, ai.EditRequest{Prompt: prompt, Image: img, Model: model})
	if err != nil {
		if errors.Is(err, ErrAuthentication) || errors.Is(err, ErrNetwork) || errors.Is(err, ErrRemoteService) {
			return ai.EditResult{}, err
		}
		return ai.EditResult{}, fmt.Errorf("%w: %w", ErrRemoteService, err)
	}
	return res, nil
}

// WriteOutput сохраняет результат и возвращает путь к файлу.
func (e *Editor) WriteOutput(folder string, res ai.EditResult, job *config.EditConfig) (string, error) {
	path, err := e.writer.Write(folder, res.Image, output.Record{
		ID:        res.ID,
		Prompt:    job.Prompt,
		InputPath: job.InputImagePath,
		Model:     res.Model,
		Response:  res.Raw,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrOutputWrite, err)
	}
	return path, nil
}

// RunOnce выполняет сценарий один раз. Первая же ошибка прерывает запуск,
// файл результата пишется только после успешного ответа.
func (e *Editor) RunOnce(ctx context.Context) (string, error) {
	// 1. Задание
	job, err := e.LoadConfig(e.cfg.PromptInfoPath)
	if err != nil {
		return "", err
	}
	e.logger.Infow("Задание загружено", "input", job.InputImagePath, "output", job.OutputFolderPath)

	// 2. Входная картинка
	img, err := e.ReadInputImage(job.InputImagePath)
	if err != nil {
		return "", err
	}

	// 3. Запрос
	res, err := e.SubmitEdit(ctx, job.Prompt, img, job.Model)
	if err != nil {
		return "", err
	}
	if res.Text != "" {
		e.logger.Debugw("Текст ответа модели", "text", res.Text)
	}

	// 4. Результат
	path, err := e.WriteOutput(job.OutputFolderPath, res, job)
	if err != nil {
		return "", err
	}
	e.logger.Infow("Картинка сохранена", "path", path, "bytes", len(res.Image.Data))
	return path, nil
}
