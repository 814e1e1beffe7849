package output

import (
	"ImageEditor/internal/service/image"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Record — то, что известно о результате кроме самой картинки.
type Record struct {
	ID        string // id ответа API, идёт в имя файла
	Prompt    string
	InputPath string
	Model     string
	Response  []byte // сырой JSON ответа, для сайдкара
}

// promptInfo повторяет формат prompt_info.yaml, чтобы сохранённое задание можно было перезапустить.
type promptInfo struct {
	Text       string   `yaml:"text"`
	ImagePaths []string `yaml:"image_paths"`
	Model      string   `yaml:"model,omitempty"`
}

// staleTempTTL — через сколько чужой временный файл считается брошенным.
const staleTempTTL = time.Hour

// Writer сохраняет результат в папку вывода.
type Writer struct {
	logger         *zap.SugaredLogger
	dateSubfolders bool
	saveMetadata   bool
	cleaner        *Cleaner
	now            func() time.Time
}

func NewWriter(logger *zap.SugaredLogger, dateSubfolders, saveMetadata bool) *Writer {
	return &Writer{
		logger:         logger,
		dateSubfolders: dateSubfolders,
		saveMetadata:   saveMetadata,
		cleaner:        NewCleaner(logger, staleTempTTL),
		now:            time.Now,
	}
}

// Write пишет картинку как <YYYYMMDDhhmmss>_<id>.<ext> и возвращает путь.
// Запись идёт через временный файл и rename, так что недописанного файла не остаётся.
func (w *Writer) Write(folder string, img image.Payload, rec Record) (string, error) {
	if len(img.Data) == 0 {
		return "", errors.New("refusing to write empty image")
	}

	now := w.now()
	dir := folder
	if w.dateSubfolders {
		dir = filepath.Join(folder, now.Format("2006-01-02"))
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output folder: %w", err)
	}
	w.cleaner.Clean(dir)

	id := sanitizeID(rec.ID)
	if id == "" {
		id = uuid.NewString()
	}
	base := fmt.Sprintf("%s_%s", now.Format("20060102150405"), id)
	path := filepath.Join(dir, base+img.Extension())

	if err := writeAtomic(path, img.Data); err != nil {
		return "", err
	}

	if w.saveMetadata {
		w.writeMetadata(dir, base, rec)
	}
	return path, nil
}

// writeMetadata пишет сайдкары. Ошибки здесь не роняют запуск: картинка уже сохранена.
func (w *Writer) writeMetadata(dir, base string, rec Record) {
	if len(rec.Response) > 0 {
		var pretty bytes.Buffer
		data := rec.Response
		if err := json.Indent(&pretty, rec.Response, "", "  "); err == nil {
			data = pretty.Bytes()
		}
		p := filepath.Join(dir, base+"_response.json")
		if err := writeAtomic(p, data); err != nil {
			w.logger.Warnw("Не удалось сохранить ответ API", "path", p, "error", err)
		}
	}

	info := promptInfo{Text: rec.Prompt, ImagePaths: []string{rec.InputPath}, Model: rec.Model}
	data, err := yaml.Marshal(&info)
	if err != nil {
		w.logger.Warnw("Не удалось сериализовать prompt_info", "error", err)
		return
	}
	p := filepath.Join(dir, base+"_prompt_info.yaml")
	if err := writeAtomic(p, data); err != nil {
		w.logger.Warnw("Не удалось сохранить prompt_info", "path", p, "error", err)
	}
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), tempPrefix+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	// после успешного rename удалять уже нечего
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	return nil
}

// sanitizeID оставляет в id только символы, безопасные для имени файла.
func sanitizeID(id string) string {
	id = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, strings.TrimSpace(id))
	return strings.Trim(id, "._")
}
