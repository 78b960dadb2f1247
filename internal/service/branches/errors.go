package branches

import "errors"

var (
	// ErrBranchNotFound возвращается, когда отделение не найдено
	ErrBranchNotFound = errors.New("branch not found")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
