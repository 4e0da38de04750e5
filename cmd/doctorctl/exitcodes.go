package main

import (
	"errors"

	"doctor-registry/internal/auditlog"
	"doctor-registry/internal/editor"
	"doctor-registry/internal/trash"
	"doctor-registry/internal/users"
)

type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string {
	return e.err.Error()
}

func (e *cliError) Unwrap() error {
	return e.err
}

const (
	exitOK         = 0
	exitValidation = 2
	exitUsage      = 3
	exitAPI        = 4
	exitPermission = 5
	exitIO         = 6
)

func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &cliError{code: code, err: err}
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ce *cliError
	if errors.As(err, &ce) {
		return ce.code
	}
	return 1
}

// editorCode 把编辑器、审计和回收站流程的错误映射为退出码
func editorCode(err error) int {
	switch {
	case errors.Is(err, editor.ErrValidation), errors.Is(err, auditlog.ErrValidation), errors.Is(err, auditlog.ErrCancelled),
		errors.Is(err, trash.ErrValidation):
		return exitValidation
	case errors.Is(err, editor.ErrPermissionDenied), errors.Is(err, auditlog.ErrPermissionDenied),
		errors.Is(err, trash.ErrPermissionDenied):
		return exitPermission
	case errors.Is(err, editor.ErrInvalidState), errors.Is(err, auditlog.ErrInvalidState):
		return exitUsage
	}
	return exitAPI
}

// usersCode 用户管理错误的退出码
func usersCode(err error) int {
	switch {
	case errors.Is(err, users.ErrValidation):
		return exitValidation
	case errors.Is(err, users.ErrPermissionDenied):
		return exitPermission
	}
	return exitAPI
}
