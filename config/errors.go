package config

import "errors"

var (
	ErrAPIURLInvalid  = errors.New("poussetaches API URL is invalid")
	ErrBaseURLInvalid = errors.New("callback base URL is invalid")
)
