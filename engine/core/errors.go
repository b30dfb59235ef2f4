package core

import (
	"errors"
)

var (
	ErrWindowCreate      = errors.New("failed to create window")
	ErrEngineNotReady    = errors.New("engine is not initialized")
	ErrConfigLoad        = errors.New("failed to load configuration")
	ErrAssetNotFound     = errors.New("asset not found")
	ErrUnsupportedFormat = errors.New("unsupported asset format")
)
