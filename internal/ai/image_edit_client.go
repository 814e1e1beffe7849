package ai

import (
	"ImageEditor/internal/config"
	"ImageEditor/internal/service/image"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// ImageEditClient отправляет промпт и картинку в OpenRouter (OpenAI‑совместимый chat completions)
// и достаёт картинку из message.images ответа.
type ImageEditClient struct {
	client *openai.Client
	model  string
	logger *zap.SugaredLogger
}

// NewImageEditClient создаёт клиента. Пустой ключ даёт ErrAuthentication, сетевых запросов при этом нет.
// Повторов нет: один вызов делает один запрос.
func NewImageEditClient(cfg config.OpenRouterConfig, logger *zap.SugaredLogger, opts ...option.RequestOption) (*ImageEditClient, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: OPENROUTER_API_KEY is not set", ErrAuthentication)
	}

	base := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
		option.WithJSONSet("modalities", []string{"image", "text"}),
	}
	if cfg.BaseURL != "" {
		base = append(base, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.RequestTimeout > 0 {
		base = append(base, option.WithRequestTimeout(cfg.RequestTimeout))
	}
	// Заголовки атрибуции OpenRouter, необязательные
	if cfg.Referer != "" {
		base = append(base, option.WithHeader("HTTP-Referer", cfg.Referer))
	}
	if cfg.AppTitle != "" {
		base = append(base, option.WithHeader("X-Title", cfg.AppTitle))
	}

	client := openai.NewClient(append(base, opts...)...)
	return &ImageEditClient{client: &client, model: cfg.Model, logger: logger}, nil
}

func (c *ImageEditClient) EditImage(ctx context.Context, req EditRequest) (EditResult, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}
	if model == "" {
		return EditResult{}, fmt.Errorf("%w: model is not set", ErrRemoteService)
	}

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(req.Prompt),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
					URL: req.Image.DataURL(),
				}),
			}),
		},
	}

	start := time.Now()
	c.logger.Infow("Запрос в OpenRouter...", "model", model, "image_bytes", len(req.Image.Data))
	completion, err := c.client.Chat.Completions.New(ctx, params)
	dur := time.Since(start)
	if err != nil {
		c.logger.Errorw("Ошибка ответа OpenRouter", "duration", dur.String(), "error", err)
		return EditResult{}, classify(err)
	}
	c.logger.Infow("Ответ OpenRouter получен", "duration", dur.String(), "id", completion.ID)

	res, err := parseCompletion(completion.RawJSON())
	if err != nil {
		return EditResult{}, err
	}
	if res.Model == "" {
		res.Model = model
	}
	if res.ExtraImages > 0 {
		c.logger.Warnw("Модель вернула несколько картинок, сохраняем только первую", "ignored", res.ExtraImages)
	}
	return res, nil
}

// parseCompletion разбирает сырой JSON ответа. Поле images является расширением OpenRouter, в типах SDK его нет.
func parseCompletion(raw string) (EditResult, error) {
	if !gjson.Valid(raw) {
		return EditResult{}, fmt.Errorf("%w: response is not valid json", ErrRemoteService)
	}
	body := gjson.Parse(raw)

	// OpenRouter может вернуть 200 с объектом error внутри
	if e := body.Get("error"); e.Exists() {
		code := e.Get("code").Int()
		msg := e.Get("message").String()
		if code == http.StatusUnauthorized || code == http.StatusForbidden {
			return EditResult{}, fmt.Errorf("%w: %s", ErrAuthentication, msg)
		}
		return EditResult{}, fmt.Errorf("%w: code=%d: %s", ErrRemoteService, code, msg)
	}

	choice := body.Get("choices.0")
	if !choice.Exists() {
		return EditResult{}, fmt.Errorf("%w: response has no choices", ErrRemoteService)
	}

	res := EditResult{
		ID:           body.Get("id").String(),
		Model:        body.Get("model").String(),
		Text:         choice.Get("message.content").String(),
		FinishReason: choice.Get("native_finish_reason").String(),
		Raw:          []byte(raw),
	}
	if res.FinishReason == "" {
		res.FinishReason = choice.Get("finish_reason").String()
	}

	images := choice.Get("message.images").Array()
	if len(images) == 0 {
		return EditResult{}, fmt.Errorf("%w: model returned no image (finish reason %q): %s", ErrRemoteService, res.FinishReason, res.Text)
	}

	payload, err := image.ParseDataURL(images[0].Get("image_url.url").String())
	if err != nil {
		return EditResult{}, fmt.Errorf("%w: %w", ErrRemoteService, err)
	}
	res.Image = payload
	res.ExtraImages = len(images) - 1
	return res, nil
}

// classify раскладывает ошибку SDK по таксономии: по статусу HTTP или по типу транспортной ошибки.
func classify(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %w", ErrAuthentication, err)
		default:
			return fmt.Errorf("%w: %w", ErrRemoteService, err)
		}
	}

	var urlErr *url.Error
	var netErr net.Error
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", ErrNetwork, err)
	case errors.As(err, &urlErr), errors.As(err, &netErr):
		return fmt.Errorf("%w: %w", ErrNetwork, err)
	default:
		// например, тело ответа не разобралось
		return fmt.Errorf("%w: %w", ErrRemoteService, err)
	}
}
