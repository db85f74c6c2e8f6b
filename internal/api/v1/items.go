package v1

import (
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bennoble/image-coding-tool/internal/model"
)

// itemResponse 条目详情响应
type itemResponse struct {
	Index        int                 `json:"index"`
	Filename     string              `json:"filename"` // basename，前端展示用
	TotalImages  int                 `json:"totalImages"`
	GroupLabel   *model.GroupLabel   `json:"groupLabel"`
	GroupName    string              `json:"groupName,omitempty"`
	ContextLabel *model.ContextLabel `json:"contextLabel"`
	ContextName  string              `json:"contextName,omitempty"`
}

// parseIndexParam 解析并校验 :index 路径参数
func (h *Handler) parseIndexParam(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 || index >= h.data.Len() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的图片索引"})
		return 0, false
	}
	return index, true
}

// GetItem 获取条目及其当前标签
// GET /api/items/:index
func (h *Handler) GetItem(c *gin.Context) {
	index, ok := h.parseIndexParam(c)
	if !ok {
		return
	}

	item, err := h.data.Item(index)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的图片索引"})
		return
	}

	group, context, err := h.session.Labels(index)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的图片索引"})
		return
	}

	resp := itemResponse{
		Index:        index,
		Filename:     filepath.Base(item.Filename),
		TotalImages:  h.data.Len(),
		GroupLabel:   group,
		ContextLabel: context,
	}
	if group != nil {
		resp.GroupName = group.Name()
	}
	if context != nil {
		resp.ContextName = context.Name()
	}

	c.JSON(http.StatusOK, resp)
}

// GetItemImage 获取条目图片内容
// 解析失败只影响当前条目，返回 404，不影响其他索引的浏览
// GET /api/items/:index/image
func (h *Handler) GetItemImage(c *gin.Context) {
	index, ok := h.parseIndexParam(c)
	if !ok {
		return
	}

	item, err := h.data.Item(index)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的图片索引"})
		return
	}

	data, contentType, err := h.images.Resolve(item.Filename)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "图片不可用: " + filepath.Base(item.Filename)})
		return
	}

	c.Data(http.StatusOK, contentType, data)
}

// NextUncoded 查找指定位置之后第一个未编码的索引
// GET /api/items/next-uncoded?after=i
func (h *Handler) NextUncoded(c *gin.Context) {
	after, err := strconv.Atoi(c.DefaultQuery("after", "-1"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的 after 参数"})
		return
	}

	index, found := h.session.FindNextUncoded(after)
	if !found {
		c.JSON(http.StatusOK, gin.H{"found": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"found": true, "index": index})
}

// cursorRequest 光标移动请求
type cursorRequest struct {
	Index int `json:"index"`
}

// SetCursor 移动当前光标
// PUT /api/session/cursor
func (h *Handler) SetCursor(c *gin.Context) {
	var req cursorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的请求体"})
		return
	}

	if err := h.session.SetCursor(req.Index); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的图片索引"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"currentIndex": h.session.Cursor()})
}
