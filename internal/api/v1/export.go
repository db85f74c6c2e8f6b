package v1

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bennoble/image-coding-tool/internal/exporter"
)

const downloadTTL = 10 * time.Minute

// exportResponse 导出响应
type exportResponse struct {
	Token    string `json:"token"`    // 下载令牌
	Filename string `json:"filename"` // 导出文件名
	RowCount int    `json:"rowCount"`
	Status   string `json:"status"`
}

// Export 导出最终结果
// 仍有未编码条目时拒绝（409），不产生文件
// POST /api/export?format=csv|xlsx
func (h *Handler) Export(c *gin.Context) {
	outputPath := h.paths.OutputFile
	if strings.EqualFold(c.Query("format"), "xlsx") {
		outputPath = strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + ".xlsx"
	}

	exp := exporter.NewExporter(h.data, h.progress)
	result, err := exp.ExportFinal(outputPath)
	if err != nil {
		if errors.Is(err, exporter.ErrIncomplete) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "导出失败: " + err.Error()})
		return
	}

	if h.journal != nil {
		h.journal.RecordExport("final", result.FilePath, result.RowCount, result.CodedCount)
	}

	token := h.downloads.put(result.FilePath, "final", downloadTTL)
	c.JSON(http.StatusOK, exportResponse{
		Token:    token,
		Filename: filepath.Base(result.FilePath),
		RowCount: result.RowCount,
		Status:   result.Status,
	})
}

// ExportPartial 导出阶段性结果
// 任意完成度均可导出
// POST /api/export/partial?format=csv|xlsx
func (h *Handler) ExportPartial(c *gin.Context) {
	ext := ".csv"
	if strings.EqualFold(c.Query("format"), "xlsx") {
		ext = ".xlsx"
	}
	outputPath := filepath.Join(h.paths.ExportsDir,
		fmt.Sprintf("coding_partial_%s%s", time.Now().Format("20060102_150405"), ext))

	exp := exporter.NewExporter(h.data, h.progress)
	result, err := exp.ExportPartial(outputPath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "导出失败: " + err.Error()})
		return
	}

	if h.journal != nil {
		h.journal.RecordExport("partial", result.FilePath, result.RowCount, result.CodedCount)
	}

	token := h.downloads.put(result.FilePath, "partial", downloadTTL)
	c.JSON(http.StatusOK, exportResponse{
		Token:    token,
		Filename: filepath.Base(result.FilePath),
		RowCount: result.RowCount,
		Status:   result.Status,
	})
}

// DownloadExport 下载导出文件
// GET /api/export/download/:token
func (h *Handler) DownloadExport(c *gin.Context) {
	token := c.Param("token")

	download, ok := h.downloads.get(token)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "下载链接不存在或已过期"})
		return
	}

	c.FileAttachment(download.filePath, filepath.Base(download.filePath))
}

// Backup 下载进度备份
// 任意完成度均可用，同时在备份目录保留一份副本
// GET /api/backup
func (h *Handler) Backup(c *gin.Context) {
	now := time.Now()
	path, data, err := exporter.WriteBackup(h.progress, h.paths.BackupsDir, now)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "备份失败: " + err.Error()})
		return
	}

	if h.journal != nil {
		h.journal.RecordExport("backup", path, h.progress.Count(), h.progress.Count())
	}

	filename := exporter.BackupFilename(now)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/json", data)
}

// ListJournalEvents 获取最近的标注操作日志
// GET /api/journal/events?limit=n
func (h *Handler) ListJournalEvents(c *gin.Context) {
	if h.journal == nil {
		c.JSON(http.StatusOK, gin.H{"events": []any{}})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		limit = 50
	}

	events, err := h.journal.RecentEvents(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取操作日志失败"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"events": events})
}
