package models

import (
	"errors"
)

var (
	ErrValidation          = errors.New("invalid record")
	ErrUnknownSettingsList = errors.New("unknown settings list")
	ErrMalformedDocument   = errors.New("stored document is malformed")
)
