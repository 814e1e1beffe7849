package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// EditConfig описывает одно задание на редактирование. После загрузки не меняется.
type EditConfig struct {
	InputImagePath   string `yaml:"input_image_path"`
	OutputFolderPath string `yaml:"output_folder_path"`
	Prompt           string `yaml:"prompt"`
	Model            string `yaml:"model,omitempty"`
}

// editFile то, что реально лежит в файле. text и image_paths из старого формата prompt_info.yaml.
type editFile struct {
	EditConfig `yaml:",inline"`
	Text       string   `yaml:"text"`
	ImagePaths []string `yaml:"image_paths"`
}

// LoadEditConfig читает файл задания. defaultOutputFolder подставляется, если в файле нет output_folder_path.
// Существование входной картинки здесь не проверяется: это забота этапа чтения.
func LoadEditConfig(path string, defaultOutputFolder string) (*EditConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var raw editFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg := raw.EditConfig
	if strings.TrimSpace(cfg.Prompt) == "" {
		cfg.Prompt = raw.Text
	}
	if cfg.InputImagePath == "" {
		switch len(raw.ImagePaths) {
		case 0:
		case 1:
			cfg.InputImagePath = raw.ImagePaths[0]
		default:
			return nil, fmt.Errorf("config %s: image_paths has %d entries, only one input image is supported", path, len(raw.ImagePaths))
		}
	}

	cfg.InputImagePath = cleanPath(cfg.InputImagePath)
	cfg.OutputFolderPath = cleanPath(cfg.OutputFolderPath)
	if cfg.OutputFolderPath == "" {
		cfg.OutputFolderPath = cleanPath(defaultOutputFolder)
	}
	cfg.Model = strings.TrimSpace(cfg.Model)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate проверяет обязательные поля.
func (c *EditConfig) Validate() error {
	var errs []error
	if c.InputImagePath == "" {
		errs = append(errs, errors.New("input_image_path is required"))
	}
	if c.OutputFolderPath == "" {
		errs = append(errs, errors.New("output_folder_path is required"))
	}
	if strings.TrimSpace(c.Prompt) == "" {
		errs = append(errs, errors.New("prompt must not be empty"))
	}
	return errors.Join(errs...)
}

// cleanPath убирает пробелы и кавычки вокруг пути (пути часто копируют из проводника в кавычках).
func cleanPath(p string) string {
	return strings.Trim(strings.TrimSpace(p), `"`)
}
