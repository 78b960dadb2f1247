package cache

import "errors"

var (
	// ErrMiss возвращается, когда ключа нет в кеше
	ErrMiss = errors.New("cache: miss")

	// ErrUnavailable возвращается при ошибках обращения к Redis
	ErrUnavailable = errors.New("cache: redis unavailable")
)
