package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	DebugMode      bool   `env:"DEBUG_MODE"`       // Режим дебага (уровень логов debug)
	DryRun         bool   `env:"DRY_RUN"`          // Не ходить в сеть: заглушка возвращает исходную картинку
	PromptInfoPath string `env:"PROMPT_INFO_PATH"` // Путь к файлу задания (prompt_info.yaml)

	OpenRouter OpenRouterConfig // Доступ к шлюзу моделей
	Output     OutputConfig     // Куда и как сохранять результат
	Input      InputConfig      // Подготовка входной картинки
}

// OpenRouterConfig настройки OpenAI‑совместимого шлюза.
type OpenRouterConfig struct {
	APIKey         string        `env:"OPENROUTER_API_KEY"`         // Ключ берём из .env/ENV. Пустой ключ даёт ошибку аутентификации
	BaseURL        string        `env:"OPENROUTER_BASE_URL"`        // Базовый URL API, по умолчанию https://openrouter.ai/api/v1/
	Model          string        `env:"OPENROUTER_MODEL"`           // Модель, может быть перекрыта в файле задания
	RequestTimeout time.Duration `env:"OPENROUTER_REQUEST_TIMEOUT"` // Таймаут единственного запроса
	Referer        string        `env:"OPENROUTER_HTTP_REFERER"`    // Необязательный заголовок HTTP-Referer для атрибуции
	AppTitle       string        `env:"OPENROUTER_APP_TITLE"`       // Необязательный заголовок X-Title
}

// OutputConfig параметры сохранения результата.
type OutputConfig struct {
	BaseFolder     string `env:"OUTPUT_BASE_FOLDER"`     // Папка по умолчанию, если в задании не указана output_folder_path
	DateSubfolders bool   `env:"OUTPUT_DATE_SUBFOLDERS"` // Складывать результаты в подпапки YYYY-MM-DD
	SaveMetadata   bool   `env:"OUTPUT_SAVE_METADATA"`   // Рядом с картинкой сохранять ответ API и prompt_info
}

// InputConfig параметры подготовки входной картинки.
type InputConfig struct {
	MaxWidth int `env:"INPUT_MAX_WIDTH"` // Если > 0, картинка шире этого значения уменьшается перед отправкой
}

// Defaults возвращает конфигурацию с предустановленными значениями по умолчанию.
// Эти значения перекрываются .env и переменными окружения.
func Defaults() *Config {
	return &Config{
		DebugMode:      false,
		DryRun:         false,
		PromptInfoPath: "prompt_info.yaml",
		OpenRouter: OpenRouterConfig{
			BaseURL:        "https://openrouter.ai/api/v1/",
			Model:          "google/gemini-3-pro-image-preview",
			RequestTimeout: 5 * time.Minute,
		},
		Output: OutputConfig{
			DateSubfolders: false,
			SaveMetadata:   false,
		},
		Input: InputConfig{
			MaxWidth: 0, // отправляем как есть
		},
	}
}

// NewConfig загружает конфигурацию приложения.
// Флагов нет: всё поведение задаётся окружением и файлом задания.
func NewConfig() (*Config, error) {
	// .env необязателен
	_ = godotenv.Load()

	// Стартуем с дефолтов, затем перекрываем .env/окружением
	cfg := Defaults()
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.OpenRouter.RequestTimeout < 0 {
		return nil, fmt.Errorf("OPENROUTER_REQUEST_TIMEOUT must not be negative, got %s", cfg.OpenRouter.RequestTimeout)
	}
	if cfg.Input.MaxWidth < 0 {
		return nil, fmt.Errorf("INPUT_MAX_WIDTH must not be negative, got %d", cfg.Input.MaxWidth)
	}
	return cfg, nil
}
