package errs

import (
	"errors"
	"net/http"
)

// Kind 错误分类（对应 HTTP 状态码的映射见 HTTPStatus）。
type Kind int

const (
	KindUnknown     Kind = iota
	KindValidation       // 请求字段缺失/非法
	KindAuthMissing      // 缺少 Authorization: Bearer 头
	KindAuthInvalid      // 签名错误 / 载荷不合法 / 角色不匹配
	KindAuthExpired      // token 已过期
	KindConflict         // 唯一键冲突 / 重复关联
	KindNotFound         // 资源不存在
	KindInternal         // 内部错误（不向客户端透出细节）
)

// Error 领域层统一错误。Fields 用于字段级校验信息，Err 保留底层原因，
// 仅用于日志，永远不会回传给客户端。
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New 创建指定分类的错误。
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap 包装底层错误（底层信息只进日志）。
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// Validation 带字段明细的校验错误。
func Validation(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: "validation failed", Fields: fields}
}

// KindOf 提取错误分类；非 *Error 一律视为 Internal。
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind 判断错误是否属于指定分类。
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus 错误分类到 HTTP 状态码。
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindAuthMissing, KindAuthInvalid, KindAuthExpired:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
