package editor

import (
	"errors"
	"net/http"
)

var (
	ErrInvalidState     = errors.New("invalid state")
	ErrPermissionDenied = errors.New("permission denied")
	ErrValidation       = errors.New("validation error")
	ErrPersistence      = errors.New("persistence error")
)

// Error 带用户可见信息的控制器错误，errors.Is 匹配 Kind
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// PersistenceError 保存失败，Message 为服务端返回的原始信息
type PersistenceError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *PersistenceError) Error() string { return e.Message }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

func (e *PersistenceError) Unwrap() error { return e.Err }

// remoteError 由存储层实现（如 *client.APIError），用于提取状态码和服务端信息
type remoteError interface {
	HTTPStatus() int
	ServerMessage() string
}

func toPersistenceError(err error) *PersistenceError {
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return pe
	}
	var re remoteError
	if errors.As(err, &re) {
		return &PersistenceError{StatusCode: re.HTTPStatus(), Message: re.ServerMessage(), Err: err}
	}
	return &PersistenceError{Message: err.Error(), Err: err}
}

func isNotFound(err error) bool {
	var re remoteError
	return errors.As(err, &re) && re.HTTPStatus() == http.StatusNotFound
}
