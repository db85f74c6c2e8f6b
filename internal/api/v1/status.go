package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// StatusResponse 系统状态响应
type StatusResponse struct {
	TotalImages  int    `json:"totalImages"`  // 图片总数
	CodedCount   int    `json:"codedCount"`   // 已编码数量
	ContextCount int    `json:"contextCount"` // 已标记场景数量
	CurrentIndex int    `json:"currentIndex"` // 当前光标位置
	Complete     bool   `json:"complete"`     // 是否全部编码完成
	SessionID    string `json:"sessionId"`    // 当前会话 ID
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	summary := h.session.Summarize()

	sessionID := ""
	if h.journal != nil {
		sessionID = h.journal.SessionID()
	}

	c.JSON(http.StatusOK, StatusResponse{
		TotalImages:  summary.Total,
		CodedCount:   summary.CodedCount,
		ContextCount: summary.ContextCount,
		CurrentIndex: h.session.Cursor(),
		Complete:     summary.Complete,
		SessionID:    sessionID,
	})
}
