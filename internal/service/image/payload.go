package image

import (
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

const defaultMimeType = "image/png"

// Payload — сырые байты картинки и их MIME‑тип.
type Payload struct {
	Data     []byte
	MimeType string
}

// DataURL кодирует картинку для передачи в API: data:<mime>;base64,<data>.
func (p Payload) DataURL() string {
	contentType := p.MimeType
	if contentType == "" {
		contentType = "image/jpeg"
	}
	return fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(p.Data))
}

// Extension возвращает расширение файла (с точкой) по формату байтов, а не по заявленному типу.
func (p Payload) Extension() string {
	switch DetectMimeType(p.Data, p.MimeType) {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	case "image/bmp":
		return ".bmp"
	default:
		return ".png"
	}
}

// ParseDataURL разбирает data URL вида data:image/{format};base64,{data}.
// Строка без префикса считается уже чистым base64.
func ParseDataURL(s string) (Payload, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Payload{}, errors.New("empty image data")
	}

	declared := ""
	encoded := s
	if strings.HasPrefix(s, "data:") {
		header, data, ok := strings.Cut(s, ",")
		if !ok {
			return Payload{}, errors.New("malformed data url: no comma")
		}
		if !strings.HasSuffix(header, ";base64") {
			return Payload{}, fmt.Errorf("unsupported data url encoding: %q", header)
		}
		declared = strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
		encoded = data
	} else if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		return Payload{}, fmt.Errorf("remote image urls are not supported: %s", s)
	}

	data, err := decodeBase64(encoded)
	if err != nil {
		return Payload{}, fmt.Errorf("decode base64 image: %w", err)
	}
	if len(data) == 0 {
		return Payload{}, errors.New("empty image data")
	}
	return Payload{Data: data, MimeType: DetectMimeType(data, declared)}, nil
}

// decodeBase64 принимает и стандартный алфавит с паддингом, и без него.
func decodeBase64(s string) ([]byte, error) {
	if data, err := base64.StdEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
}

// DetectMimeType определяет тип по содержимому; fallback — заявленный тип, затем png.
func DetectMimeType(data []byte, fallback string) string {
	if len(data) > 0 {
		if ct := http.DetectContentType(data); strings.HasPrefix(ct, "image/") {
			return ct
		}
	}
	if fallback != "" {
		return fallback
	}
	return defaultMimeType
}

// mimeTypeByPath — тип по расширению файла, пусто если неизвестно.
func mimeTypeByPath(path string) string {
	ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if !strings.HasPrefix(ct, "image/") {
		return ""
	}
	ct, _, _ = strings.Cut(ct, ";")
	return ct
}
