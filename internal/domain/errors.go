package domain

import "errors"

var (
	ErrUnknownDefinition = errors.New("unknown component definition")
	ErrUnknownInstance   = errors.New("unknown component instance")
	ErrTemplateNotFound  = errors.New("template not found")
	ErrNoAdapter         = errors.New("no framework adapter registered")
	ErrUnknownHandle     = errors.New("unknown resize handle")
	ErrUnsupportedFormat = errors.New("unsupported template format")
)
