package dto

// ── 扫码核销模块 DTO ──

// ScanRequest 扫码请求：载荷可以是裸 token，也可以是含 qr 参数的完整链接
type ScanRequest struct {
	Payload string `json:"payload" binding:"required"`
}

// 核销终态
const (
	OutcomeRedeemedLocal   = "redeemed_local"   // 本会话主办方自己的分组
	OutcomeRedeemedForeign = "redeemed_foreign" // 其他主办方的分组（跨账户核销）
	OutcomeInvalid         = "invalid"          // token 解析不出主办方或分组
	OutcomeNotFound        = "not_found"        // 主办方状态里没有该分组
	OutcomeQuotaExceeded   = "quota_exceeded"   // 分组已到配额上限
)

// RedeemResult 一次扫码的终态
type RedeemResult struct {
	Outcome   string         `json:"outcome"`
	Message   string         `json:"message"` // 给闸口操作员看的提示文案
	Foreign   bool           `json:"foreign"`
	OwnerCode string         `json:"owner_code,omitempty"` // token 所属主办方
	Group     *GroupResponse `json:"group,omitempty"`
}

// Redeemed 本次扫码是否实际核销了一位来宾
func (r *RedeemResult) Redeemed() bool {
	return r.Outcome == OutcomeRedeemedLocal || r.Outcome == OutcomeRedeemedForeign
}

// [自证通过] internal/dto/redeem.go
