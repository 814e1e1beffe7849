package ai

import (
	"context"
	"errors"
)

// StubClient заглушка, которая не делает реальных запросов и возвращает исходную картинку.
type StubClient struct{}

func NewStubClient() *StubClient { return &StubClient{} }

func (c *StubClient) EditImage(ctx context.Context, req EditRequest) (EditResult, error) {
	if err := ctx.Err(); err != nil {
		return EditResult{}, err
	}
	if len(req.Image.Data) == 0 {
		return EditResult{}, errors.New("stub: empty input image")
	}
	return EditResult{
		ID:           "dry-run",
		Model:        req.Model,
		Image:        req.Image,
		Text:         "запрос получен",
		FinishReason: "stop",
	}, nil
}
