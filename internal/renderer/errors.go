package renderer

import (
	"errors"
	"fmt"
)

var (
	ErrPluginNotRegistered = errors.New("renderer: plugin not registered")
	ErrPluginTypeRequired  = errors.New("renderer: plugin type is required")
	ErrRenderFuncNil       = errors.New("renderer: render func is nil")
	ErrTemplateSourceNil   = errors.New("renderer: template source is nil")
	ErrTemplatesMissing    = errors.New("renderer: template renderer is not configured")
	ErrTemplateNotFound    = errors.New("renderer: template not found")
	ErrTemplatesLoaded     = errors.New("renderer: templates already parsed")
)

// PluginNotRegisteredError names the plugin type that has no renderer.
type PluginNotRegisteredError struct {
	Type string
}

func (e *PluginNotRegisteredError) Error() string {
	return fmt.Sprintf("renderer: plugin %q is not registered", e.Type)
}

func (e *PluginNotRegisteredError) Unwrap() error {
	return ErrPluginNotRegistered
}

// TemplateNotFoundError lists the template names that were tried.
type TemplateNotFoundError struct {
	Type  string
	Names []string
}

func (e *TemplateNotFoundError) Error() string {
	return fmt.Sprintf("renderer: no template found for plugin %q (tried %v)", e.Type, e.Names)
}

func (e *TemplateNotFoundError) Unwrap() error {
	return ErrTemplateNotFound
}
