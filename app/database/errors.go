package database

import (
	"errors"
)

var (
	ErrDuplicateSource = errors.New("source with this feed URL already registered")
	ErrSourceNotFound  = errors.New("source not found")
	ErrArticleNotFound = errors.New("article not found")
)
