package services

import (
	"errors"
)

// 服务层错误分类，handler 据此映射 HTTP 状态码。
var (
	ErrNotFound            = errors.New("not found")
	ErrForbidden           = errors.New("forbidden")
	ErrInsufficientBalance = errors.New("insufficient points")
	ErrInvalidInput        = errors.New("invalid input")
)
