package core

import "errors"

var ErrTemplateNotFound = errors.New("firstapp: template not found")
