package store

import (
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/bennoble/image-coding-tool/internal/model"
)

// Journal 标注操作日志记录器
// 每个进程一个会话 ID；写入失败只打日志，不影响标注流程
type Journal struct {
	store     *Store
	sessionID string
}

// NewJournal 创建日志记录器并登记会话信息
func NewJournal(store *Store) *Journal {
	j := &Journal{
		store:     store,
		sessionID: uuid.New().String(),
	}

	if err := store.SetMeta("last_session_id", j.sessionID); err != nil {
		log.Printf("记录会话信息失败: %v", err)
	}
	if err := store.SetMeta("last_session_start", time.Now().Format(time.RFC3339)); err != nil {
		log.Printf("记录会话信息失败: %v", err)
	}

	return j
}

// SessionID 当前会话 ID
func (j *Journal) SessionID() string {
	return j.sessionID
}

// RecordEvent 记录一条标注操作，失败时仅打日志
func (j *Journal) RecordEvent(itemIndex int, action string, group *model.GroupLabel, context *model.ContextLabel) {
	if _, err := j.store.CreateCodingEvent(j.sessionID, itemIndex, action, group, context); err != nil {
		log.Printf("记录标注操作失败: %v", err)
	}
}

// RecentEvents 按时间倒序获取最近的标注操作
func (j *Journal) RecentEvents(limit int) ([]CodingEvent, error) {
	return j.store.RecentCodingEvents(limit)
}

// RecordExport 记录一次导出，失败时仅打日志
func (j *Journal) RecordExport(kind, filePath string, rowCount, codedCount int) {
	if err := j.store.CreateExportLog(kind, filePath, rowCount, codedCount); err != nil {
		log.Printf("记录导出失败: %v", err)
	}
}
