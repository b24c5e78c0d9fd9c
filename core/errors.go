package core

import "errors"

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 支持 errors.Is / errors.As，调用方可以用 %w 包装后继续判断
//
// 使用场景：
//   - 推荐入口：NOT_FOUND（未知用户）、NO_CANDIDATES（候选为空）
//   - 打分：SCHEMA_MISMATCH（特征矩阵与模型声明的特征列不一致）
//   - Store：NOT_FOUND
type DomainError struct {
	Code    string // 错误代码（如 "NOT_FOUND", "SCHEMA_MISMATCH"）
	Message string // 错误消息
	Module  string // 模块名称（如 "recommend", "model", "store"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is 按 Module + Code 判等，包装后的错误同样可以被 errors.Is 识别。
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Module == t.Module && e.Code == t.Code
}

// IsDomainError 检查错误链上是否存在 DomainError
func IsDomainError(err error) bool {
	return GetDomainError(err) != nil
}

// GetDomainError 获取错误链上的 DomainError，如果没有则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// 错误代码常量
const (
	ErrorCodeNotFound       = "NOT_FOUND"       // 资源不存在
	ErrorCodeNoCandidates   = "NO_CANDIDATES"   // 候选集为空（合法的空结果）
	ErrorCodeSchemaMismatch = "SCHEMA_MISMATCH" // 特征列数量/顺序与模型不一致
	ErrorCodeInvalidInput   = "INVALID_INPUT"   // 输入无效
	ErrorCodeNotSupported   = "NOT_SUPPORTED"   // 操作不支持
)

// 模块名称常量
const (
	ModuleRecommend = "recommend"
	ModuleModel     = "model"
	ModuleStore     = "store"
	ModuleFeature   = "feature"
)

var (
	// ErrUnknownUser 用户不在 UserStats 中，不会进入打分流程。
	ErrUnknownUser = NewDomainError(ModuleRecommend, ErrorCodeNotFound, "recommend: unknown user")

	// ErrNoCandidates 排除已评分电影后候选集为空，不做任何兜底填充。
	ErrNoCandidates = NewDomainError(ModuleRecommend, ErrorCodeNoCandidates, "recommend: no candidates")

	// ErrSchemaMismatch 特征矩阵与模型声明的特征 schema 不一致，致命错误，不重试。
	ErrSchemaMismatch = NewDomainError(ModuleModel, ErrorCodeSchemaMismatch, "model: feature schema mismatch")

	// ErrStoreNotFound 表示 key 不存在
	ErrStoreNotFound = NewDomainError(ModuleStore, ErrorCodeNotFound, "store: key not found")
)

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeNotFound
	}
	return false
}

// IsNoCandidates 检查错误是否为 NO_CANDIDATES
func IsNoCandidates(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeNoCandidates
	}
	return false
}

// IsSchemaMismatch 检查错误是否为 SCHEMA_MISMATCH
func IsSchemaMismatch(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeSchemaMismatch
	}
	return false
}
