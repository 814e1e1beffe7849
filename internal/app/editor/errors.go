package editor

import (
	"ImageEditor/internal/ai"
	"errors"
)

// Ошибки этапов. Любая из них завершает запуск, повторов нет.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrInputNotFound = errors.New("input image not found")
	ErrOutputWrite   = errors.New("output write error")

	ErrAuthentication = ai.ErrAuthentication
	ErrNetwork        = ai.ErrNetwork
	ErrRemoteService  = ai.ErrRemoteService
)
