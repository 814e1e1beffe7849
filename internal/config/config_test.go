package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestNewConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir()) // без .env
	t.Setenv("OPENROUTER_API_KEY", "sk-test")

	cfg, err := NewConfig()
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	if cfg.OpenRouter.APIKey != "sk-test" {
		t.Errorf("APIKey = %q", cfg.OpenRouter.APIKey)
	}
	if cfg.OpenRouter.BaseURL != "https://openrouter.ai/api/v1/" {
		t.Errorf("BaseURL = %q", cfg.OpenRouter.BaseURL)
	}
	if cfg.OpenRouter.RequestTimeout != 5*time.Minute {
		t.Errorf("RequestTimeout = %s", cfg.OpenRouter.RequestTimeout)
	}
	if cfg.PromptInfoPath != "prompt_info.yaml" {
		t.Errorf("PromptInfoPath = %q", cfg.PromptInfoPath)
	}
}

func TestNewConfigOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("OPENROUTER_MODEL", "black-forest-labs/flux.2-pro")
	t.Setenv("OPENROUTER_REQUEST_TIMEOUT", "30s")
	t.Setenv("OUTPUT_SAVE_METADATA", "true")
	t.Setenv("INPUT_MAX_WIDTH", "1024")
	t.Setenv("DRY_RUN", "true")

	cfg, err := NewConfig()
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	if cfg.OpenRouter.Model != "black-forest-labs/flux.2-pro" {
		t.Errorf("Model = %q", cfg.OpenRouter.Model)
	}
	if cfg.OpenRouter.RequestTimeout != 30*time.Second {
		t.Errorf("RequestTimeout = %s", cfg.OpenRouter.RequestTimeout)
	}
	if !cfg.Output.SaveMetadata || !cfg.DryRun || cfg.Input.MaxWidth != 1024 {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestNewConfigReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, dir, ".env", "OUTPUT_BASE_FOLDER=./from-dotenv\n")
	// godotenv не перезаписывает уже заданные переменные, поэтому чистим
	t.Setenv("OUTPUT_BASE_FOLDER", "")
	os.Unsetenv("OUTPUT_BASE_FOLDER")

	cfg, err := NewConfig()
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	if cfg.Output.BaseFolder != "./from-dotenv" {
		t.Errorf("BaseFolder = %q", cfg.Output.BaseFolder)
	}
}

func TestNewConfigRejectsBadValues(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("INPUT_MAX_WIDTH", "wide")
	if _, err := NewConfig(); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadEditConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "prompt_info.yaml", `
input_image_path: "cat.png"
output_folder_path: ./out
prompt: make the cat blue
`)
	cfg, err := LoadEditConfig(path, "")
	if err != nil {
		t.Fatalf("LoadEditConfig: %v", err)
	}
	want := EditConfig{InputImagePath: "cat.png", OutputFolderPath: "./out", Prompt: "make the cat blue"}
	if *cfg != want {
		t.Errorf("got %+v, want %+v", *cfg, want)
	}
}

func TestLoadEditConfigLegacyKeys(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "prompt_info.yaml", `
text: add a hat
image_paths:
  - '"C:\images\dog.jpg"'
model: black-forest-labs/flux.2-pro
`)
	cfg, err := LoadEditConfig(path, "/var/out")
	if err != nil {
		t.Fatalf("LoadEditConfig: %v", err)
	}
	if cfg.Prompt != "add a hat" {
		t.Errorf("Prompt = %q", cfg.Prompt)
	}
	if cfg.InputImagePath != `C:\images\dog.jpg` {
		t.Errorf("InputImagePath = %q", cfg.InputImagePath)
	}
	if cfg.OutputFolderPath != "/var/out" {
		t.Errorf("OutputFolderPath = %q", cfg.OutputFolderPath)
	}
	if cfg.Model != "black-forest-labs/flux.2-pro" {
		t.Errorf("Model = %q", cfg.Model)
	}
}

func TestLoadEditConfigErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"malformed", "input_image_path: [unclosed", "parse config"},
		{"not a mapping", "- a\n- b\n", "parse config"},
		{"empty file", "", "input_image_path is required"},
		{"missing prompt", "input_image_path: a.png\noutput_folder_path: out\n", "prompt must not be empty"},
		{"blank prompt", "input_image_path: a.png\noutput_folder_path: out\nprompt: '   '\n", "prompt must not be empty"},
		{"missing output", "input_image_path: a.png\nprompt: x\n", "output_folder_path is required"},
		{"several images", "image_paths: [a.png, b.png]\noutput_folder_path: out\nprompt: x\n", "only one input image"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, strings.ReplaceAll(tt.name, " ", "_")+".yaml", tt.content)
			_, err := LoadEditConfig(path, "")
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadEditConfigMissingFile(t *testing.T) {
	_, err := LoadEditConfig(filepath.Join(t.TempDir(), "nope.yaml"), "")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}
