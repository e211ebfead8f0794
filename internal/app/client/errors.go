package client

import (
	"errors"
)

var (
	// ErrDraftUnavailable — черновика нет ни на сервере, ни в локальном кэше.
	// Единственная фатальная для пользователя ошибка загрузки.
	ErrDraftUnavailable = errors.New("draft unavailable")

	// ErrRemoteUnavailable — сервер недоступен, таймаут или 5xx.
	// Для сохранения не фатальна: запись деградирует до локальной.
	ErrRemoteUnavailable = errors.New("remote store unavailable")

	// ErrUnauthorized — токен отсутствует или отклонен сервером.
	ErrUnauthorized = errors.New("unauthorized")

	ErrNotAuthenticated = errors.New("not authenticated")
)
