package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bennoble/image-coding-tool/internal/model"
)

// labelRequest 标注请求
type labelRequest struct {
	Code int `json:"code"`
}

// labelResponse 标注操作后的条目标签状态
type labelResponse struct {
	Index        int                 `json:"index"`
	GroupLabel   *model.GroupLabel   `json:"groupLabel"`
	ContextLabel *model.ContextLabel `json:"contextLabel"`
	CodedCount   int                 `json:"codedCount"`
	Complete     bool                `json:"complete"`
}

func (h *Handler) labelState(c *gin.Context, index int) {
	group, context, err := h.session.Labels(index)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取标签状态失败"})
		return
	}

	summary := h.session.Summarize()
	c.JSON(http.StatusOK, labelResponse{
		Index:        index,
		GroupLabel:   group,
		ContextLabel: context,
		CodedCount:   summary.CodedCount,
		Complete:     summary.Complete,
	})
}

// SetGroupLabel 设置人数分类标签
// PUT /api/items/:index/label
func (h *Handler) SetGroupLabel(c *gin.Context) {
	index, ok := h.parseIndexParam(c)
	if !ok {
		return
	}

	var req labelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求体"})
		return
	}

	code := model.GroupLabel(req.Code)
	if !code.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的分类编码"})
		return
	}

	if err := h.session.SetGroupLabel(index, code); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "保存进度失败"})
		return
	}

	h.labelState(c, index)
}

// ToggleContextLabel 切换场景标签
// PUT /api/items/:index/context
func (h *Handler) ToggleContextLabel(c *gin.Context) {
	index, ok := h.parseIndexParam(c)
	if !ok {
		return
	}

	var req labelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求体"})
		return
	}

	code := model.ContextLabel(req.Code)
	if !code.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的场景编码"})
		return
	}

	if err := h.session.ToggleContextLabel(index, code); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "保存进度失败"})
		return
	}

	h.labelState(c, index)
}

// ClearLabels 清除条目的全部标签
// DELETE /api/items/:index/labels
func (h *Handler) ClearLabels(c *gin.Context) {
	index, ok := h.parseIndexParam(c)
	if !ok {
		return
	}

	if err := h.session.Clear(index); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "保存进度失败"})
		return
	}

	h.labelState(c, index)
}
