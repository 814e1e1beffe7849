package image

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/webp"
)

const (
	defaultMaxSizeBytes = 4 * 1024 * 1024
	defaultQuality      = 85
	minWidth            = 320
)

// Processor читает входную картинку и при необходимости уменьшает её перед отправкой.
type Processor struct {
	maxWidth    int
	maxSizeByte int
	quality     int
}

// NewProcessor создаёт процессор. maxWidth <= 0 — картинка отправляется без изменений.
func NewProcessor(maxWidth int) *Processor {
	return &Processor{
		maxWidth:    maxWidth,
		maxSizeByte: defaultMaxSizeBytes,
		quality:     defaultQuality,
	}
}

// Load читает файл с диска. Ошибки чтения возвращаются как есть, пустой файл — ошибка.
// Второе значение сообщает, была ли картинка пережата.
func (p *Processor) Load(path string) (Payload, bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Payload{}, false, err
	}
	if info.IsDir() {
		return Payload{}, false, fmt.Errorf("%s is a directory", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Payload{}, false, err
	}
	if len(data) == 0 {
		return Payload{}, false, fmt.Errorf("image file is empty: %s", path)
	}

	payload := Payload{Data: data, MimeType: DetectMimeType(data, mimeTypeByPath(path))}
	if p.maxWidth <= 0 {
		return payload, false, nil
	}

	resized, ok, err := p.downscale(data)
	if err != nil {
		return Payload{}, false, err
	}
	if !ok {
		return payload, false, nil
	}
	return resized, true, nil
}

// downscale уменьшает картинку до maxWidth и ужимает JPEG до maxSizeByte.
// Нераспознанный формат или узкая картинка — ok=false, отправляем оригинал.
func (p *Processor) downscale(data []byte) (Payload, bool, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Payload{}, false, nil
	}

	origBounds := img.Bounds()
	origWidth := origBounds.Dx()
	origHeight := origBounds.Dy()
	if origWidth == 0 || origHeight == 0 {
		return Payload{}, false, fmt.Errorf("invalid image size: %dx%d", origWidth, origHeight)
	}
	if origWidth <= p.maxWidth {
		return Payload{}, false, nil
	}

	quality := min(max(p.quality, 1), 100)

	resizedWidth := p.maxWidth
	resizedHeight := max(1, origHeight*resizedWidth/origWidth)

	var encoded []byte
	for {
		resized := resizeNearest(img, resizedWidth, resizedHeight)
		encoded, err = encodeJPEG(resized, quality)
		if err != nil {
			return Payload{}, false, err
		}

		if len(encoded) <= p.maxSizeByte {
			break
		}

		if resizedWidth <= minWidth {
			return Payload{}, false, fmt.Errorf("image exceeds max size %d bytes even after downscale", p.maxSizeByte)
		}

		resizedWidth = max(1, int(float64(resizedWidth)*0.9))
		resizedHeight = max(1, origHeight*resizedWidth/origWidth)
	}

	return Payload{Data: encoded, MimeType: "image/jpeg"}, true, nil
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func resizeNearest(src image.Image, width int, height int) *image.RGBA {
	if width <= 0 || height <= 0 {
		return image.NewRGBA(image.Rect(0, 0, 1, 1))
	}

	srcBounds := src.Bounds()
	srcWidth := srcBounds.Dx()
	srcHeight := srcBounds.Dy()
	if srcWidth == 0 || srcHeight == 0 {
		return image.NewRGBA(image.Rect(0, 0, width, height))
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		srcY := srcBounds.Min.Y + y*srcHeight/height
		for x := range width {
			srcX := srcBounds.Min.X + x*srcWidth/width
			dst.Set(x, y, src.At(srcX, srcY))
		}
	}

	return dst
}
