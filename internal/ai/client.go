package ai

import (
	"ImageEditor/internal/service/image"
	"context"
	"errors"
)

// Ошибки удалённой стороны. Проверять через errors.Is.
var (
	ErrAuthentication = errors.New("authentication failed")
	ErrRemoteService  = errors.New("remote service error")
	ErrNetwork        = errors.New("network error")
)

// EditRequest описывает одно редактирование: промпт и исходная картинка.
type EditRequest struct {
	Prompt string
	Image  image.Payload
	Model  string // если пусто, берётся модель клиента
}

// EditResult разобранный ответ модели.
type EditResult struct {
	ID           string        // id ответа, если прислали
	Model        string        // модель, которой выполнялся запрос
	Image        image.Payload // первая картинка из ответа
	ExtraImages  int           // сколько картинок отброшено
	Text         string        // текстовая часть ответа
	FinishReason string
	Raw          []byte // ответ целиком, для сохранения рядом с картинкой
}

// ImageClient интерфейс для редактирования картинок. Все реализации должны быть взаимозаменяемыми.
type ImageClient interface {
	EditImage(ctx context.Context, req EditRequest) (EditResult, error)
}
