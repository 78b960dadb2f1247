package ptr

// Ptr возвращает указатель на переданное значение
func Ptr[T any](v T) *T {
	return &v
}

// StringOrNil возвращает nil для пустой строки
func StringOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

