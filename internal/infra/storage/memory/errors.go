package memory

import "github.com/m04kA/SMC-BranchDirectory/internal/infra/storage/branch"

// ErrBranchNotFound тот же sentinel, что и у PostgreSQL-репозитория,
// чтобы сервис одинаково обрабатывал оба драйвера
var ErrBranchNotFound = branch.ErrBranchNotFound
