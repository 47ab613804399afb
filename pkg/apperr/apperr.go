// Package apperr 定义带错误码的结构化错误，并映射到 HTTP 状态码
package apperr

import (
	"errors"
	"fmt"
)

// Code 错误码
type Code string

const (
	CodeValidationFailed Code = "VALIDATION_FAILED"
	CodeNoFieldsToUpdate Code = "NO_FIELDS_TO_UPDATE"
	CodeNotFound         Code = "NOT_FOUND"
	CodeStoreFailure     Code = "STORE_FAILURE"
)

// Category 错误分类，用于 HTTP 状态码映射
type Category int

const (
	CategoryUnknown Category = iota
	CategoryBadRequest
	CategoryNotFound
	CategoryInternal
)

var codeCategories = map[Code]Category{
	CodeValidationFailed: CategoryBadRequest,
	CodeNoFieldsToUpdate: CategoryBadRequest,
	CodeNotFound:         CategoryNotFound,
	CodeStoreFailure:     CategoryInternal,
}

// HTTPStatus 返回分类对应的 HTTP 状态码
func (c Category) HTTPStatus() int {
	switch c {
	case CategoryBadRequest:
		return 400
	case CategoryNotFound:
		return 404
	default:
		return 500
	}
}

// Error 结构化错误
// Message 可以直接返回给客户端，Cause 只写日志
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is 按错误码比较
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Category 返回错误分类
func (e *Error) Category() Category {
	if cat, ok := codeCategories[e.Code]; ok {
		return cat
	}
	return CategoryUnknown
}

// HTTPStatus 返回 HTTP 状态码
func (e *Error) HTTPStatus() int {
	return e.Category().HTTPStatus()
}

// Validation 参数校验失败
func Validation(format string, args ...any) *Error {
	return &Error{Code: CodeValidationFailed, Message: fmt.Sprintf(format, args...)}
}

// NoFieldsToUpdate 部分更新未提供任何字段
func NoFieldsToUpdate() *Error {
	return &Error{Code: CodeNoFieldsToUpdate, Message: "No fields to update"}
}

// NotFound 目标资源不存在，resource 如 "Project"
func NotFound(resource string) *Error {
	return &Error{Code: CodeNotFound, Message: resource + " not found"}
}

// Store 存储层失败，message 是对外的通用描述
func Store(message string, cause error) *Error {
	return &Error{Code: CodeStoreFailure, Message: message, Cause: cause}
}

// As 从错误链中取出 *Error
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsNotFound 判断是否为 NOT_FOUND
func IsNotFound(err error) bool {
	e, ok := As(err)
	return ok && e.Code == CodeNotFound
}

// HTTPStatus 返回任意错误对应的状态码，非 *Error 一律 500
func HTTPStatus(err error) int {
	if e, ok := As(err); ok {
		return e.HTTPStatus()
	}
	return 500
}
