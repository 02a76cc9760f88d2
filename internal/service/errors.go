package service

import "errors"

var (
	// ErrTemplateNotFound means the catalog has no template with the
	// requested name.
	ErrTemplateNotFound = errors.New("TemplateNotFound: template no existe")

	// ErrTemplateNotActive means the catalog entry exists but is not
	// active; an inactive template is a terminal error, never a fallback.
	ErrTemplateNotActive = errors.New("TemplateNotActive: template *no activo*")
)
