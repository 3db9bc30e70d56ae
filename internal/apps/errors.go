package apps

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrModuleNameRequired   = errors.New("apps: url module name is required")
	ErrModuleTableRequired  = errors.New("apps: url module table is required")
	ErrModuleDuplicate      = errors.New("apps: url module already registered")
	ErrModuleMissing        = errors.New("apps: application type references an unregistered url module")
	ErrSourceRequired       = errors.New("apps: application source is required")
	ErrRootTableRequired    = errors.New("apps: root routing table is required")
	ErrTableNotRegistered   = errors.New("apps: routing table is not registered")
	ErrNoReverseMatch       = errors.New("apps: no application url matches")
	ErrNotApplicationMatch  = errors.New("apps: request was not routed to an application")
	ErrMountingPageNotFound = errors.New("apps: page mounting the application was not found")
)

// MissingModulesError lists application types whose url module is not
// registered.
type MissingModulesError struct {
	Types []string
}

func (e *MissingModulesError) Error() string {
	return fmt.Sprintf("apps: url modules missing for application types %s", strings.Join(e.Types, ", "))
}

func (e *MissingModulesError) Unwrap() error {
	return ErrModuleMissing
}

// NoReverseMatchError carries every view name tried by ReverseApp and
// ReverseAny.
type NoReverseMatchError struct {
	ViewNames []string
}

func (e *NoReverseMatchError) Error() string {
	return fmt.Sprintf("apps: reverse not found, tried %s", strings.Join(e.ViewNames, ", "))
}

func (e *NoReverseMatchError) Unwrap() error {
	return ErrNoReverseMatch
}
