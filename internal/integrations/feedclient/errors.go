package feedclient

import "errors"

var (
	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("feed client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе источника фида
	ErrInvalidResponse = errors.New("feed client: invalid response")

	// ErrFeedTooLarge возвращается, когда фид больше допустимого размера
	ErrFeedTooLarge = errors.New("feed client: feed exceeds size limit")
)
