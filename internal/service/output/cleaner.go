package output

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// tempPrefix помечает недописанные файлы writeAtomic.
const tempPrefix = ".tmp-"

// Cleaner убирает временные файлы, оставшиеся от прерванных запусков.
type Cleaner struct {
	logger *zap.SugaredLogger
	ttl    time.Duration
	now    func() time.Time
}

func NewCleaner(logger *zap.SugaredLogger, ttl time.Duration) *Cleaner {
	return &Cleaner{logger: logger, ttl: ttl, now: time.Now}
}

// Clean удаляет из dir временные файлы старше ttl и возвращает их число.
// Свежие файлы не трогаются: их может писать соседний запуск.
func (c *Cleaner) Clean(dir string) int {
	if c == nil || c.ttl <= 0 || dir == "" {
		return 0
	}
	deadline := c.now().Add(-c.ttl)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			c.logger.Warnw("Не удалось прочитать папку для очистки", "dir", dir, "error", err)
		}
		return 0
	}

	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), tempPrefix) {
			continue
		}
		fi, statErr := e.Info()
		if statErr != nil {
			c.logger.Warnw("Не удалось получить информацию о файле при очистке", "name", e.Name(), "error", statErr)
			continue
		}
		if !fi.ModTime().Before(deadline) {
			continue
		}
		full := filepath.Join(dir, e.Name())
		if err := os.Remove(full); err != nil {
			c.logger.Warnw("Не удалось удалить временный файл", "path", full, "error", err)
			continue
		}
		removed++
	}
	if removed > 0 {
		c.logger.Debugw("Удалены старые временные файлы", "dir", dir, "removed", removed)
	}
	return removed
}
