// internal/service/errors.go

package service

import (
	"errors"
	"fmt"
)

// ErrorKind 引擎错误分类, HTTP 层据此映射状态码
type ErrorKind int

const (
	KindNotFound ErrorKind = iota + 1
	KindPrecondition
	KindOutOfRange
	KindInvalidArgument
	KindInternal
)

// EngineError 带分类的引擎错误
type EngineError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *EngineError) Error() string {
	return e.Message
}

func (e *EngineError) Unwrap() error {
	return e.Cause
}

func errNotFound(format string, v ...interface{}) *EngineError {
	return &EngineError{Kind: KindNotFound, Message: fmt.Sprintf(format, v...)}
}

func errPrecondition(format string, v ...interface{}) *EngineError {
	return &EngineError{Kind: KindPrecondition, Message: fmt.Sprintf(format, v...)}
}

func errOutOfRange(format string, v ...interface{}) *EngineError {
	return &EngineError{Kind: KindOutOfRange, Message: fmt.Sprintf(format, v...)}
}

func errInvalidArgument(format string, v ...interface{}) *EngineError {
	return &EngineError{Kind: KindInvalidArgument, Message: fmt.Sprintf(format, v...)}
}

func errInternal(cause error, format string, v ...interface{}) *EngineError {
	return &EngineError{Kind: KindInternal, Message: fmt.Sprintf(format, v...), Cause: cause}
}

// KindOf 提取错误分类, 非引擎错误一律视为内部错误
func KindOf(err error) ErrorKind {
	if err == nil {
		return 0
	}
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee.Kind
	}
	return KindInternal
}
