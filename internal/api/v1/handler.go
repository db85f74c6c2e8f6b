package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/bennoble/image-coding-tool/internal/dataset"
	"github.com/bennoble/image-coding-tool/internal/imagesource"
	"github.com/bennoble/image-coding-tool/internal/progress"
	"github.com/bennoble/image-coding-tool/internal/session"
	"github.com/bennoble/image-coding-tool/internal/store"
)

// Paths 导出相关路径配置
type Paths struct {
	OutputFile string // 最终结果输出文件
	ExportsDir string // 阶段性导出目录
	BackupsDir string // 进度备份目录
}

// Handler API 处理器
type Handler struct {
	data      *dataset.Dataset
	session   *session.Session
	progress  *progress.Store
	images    imagesource.Source
	journal   *store.Journal
	paths     Paths
	downloads *exportDownloadStore
}

// NewHandler 创建 API 处理器
func NewHandler(data *dataset.Dataset, sess *session.Session, prog *progress.Store, images imagesource.Source, journal *store.Journal, paths Paths) *Handler {
	return &Handler{
		data:      data,
		session:   sess,
		progress:  prog,
		images:    images,
		journal:   journal,
		paths:     paths,
		downloads: newExportDownloadStore(),
	}
}

// RegisterRoutes 注册 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 系统状态
	router.GET("/status", h.GetStatus)

	// 条目与图片
	router.GET("/items/next-uncoded", h.NextUncoded)
	router.GET("/items/:index", h.GetItem)
	router.GET("/items/:index/image", h.GetItemImage)

	// 标注操作
	router.PUT("/items/:index/label", h.SetGroupLabel)
	router.PUT("/items/:index/context", h.ToggleContextLabel)
	router.DELETE("/items/:index/labels", h.ClearLabels)

	// 导航
	router.PUT("/session/cursor", h.SetCursor)

	// 统计
	router.GET("/summary", h.GetSummary)

	// 导出与备份
	router.POST("/export", h.Export)
	router.POST("/export/partial", h.ExportPartial)
	router.GET("/export/download/:token", h.DownloadExport)
	router.GET("/backup", h.Backup)

	// 操作日志
	router.GET("/journal/events", h.ListJournalEvents)
}
