package errors

import "errors"

// ErrAllTiersFailed 主表、兜底表与本地缓存全部写入失败
var ErrAllTiersFailed = errors.New("所有存储层写入失败")
