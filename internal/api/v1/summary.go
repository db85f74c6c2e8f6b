package v1

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"github.com/bennoble/image-coding-tool/internal/model"
)

// summaryEntry 单个标签的统计信息
type summaryEntry struct {
	Code  int    `json:"code"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// summaryResponse 标注进度统计响应
type summaryResponse struct {
	Total         int            `json:"total"`
	CodedCount    int            `json:"codedCount"`
	ContextCount  int            `json:"contextCount"`
	Complete      bool           `json:"complete"`
	GroupCounts   []summaryEntry `json:"groupCounts"`
	ContextCounts []summaryEntry `json:"contextCounts"`
}

// GetSummary 获取标注进度统计
// GET /api/summary
func (h *Handler) GetSummary(c *gin.Context) {
	summary := h.session.Summarize()

	groupCounts := make([]summaryEntry, 0, len(summary.GroupCounts))
	for code, count := range summary.GroupCounts {
		groupCounts = append(groupCounts, summaryEntry{
			Code:  int(code),
			Name:  model.GroupLabelNames[code],
			Count: count,
		})
	}
	sort.Slice(groupCounts, func(i, j int) bool { return groupCounts[i].Code < groupCounts[j].Code })

	contextCounts := make([]summaryEntry, 0, len(summary.ContextCounts))
	for code, count := range summary.ContextCounts {
		contextCounts = append(contextCounts, summaryEntry{
			Code:  int(code),
			Name:  model.ContextLabelNames[code],
			Count: count,
		})
	}
	sort.Slice(contextCounts, func(i, j int) bool { return contextCounts[i].Code < contextCounts[j].Code })

	c.JSON(http.StatusOK, summaryResponse{
		Total:         summary.Total,
		CodedCount:    summary.CodedCount,
		ContextCount:  summary.ContextCount,
		Complete:      summary.Complete,
		GroupCounts:   groupCounts,
		ContextCounts: contextCounts,
	})
}
