package store

import (
	"fmt"
	"time"

	"github.com/bennoble/image-coding-tool/internal/model"
)

// CodingEvent 一条标注操作日志
type CodingEvent struct {
	ID           int64               `json:"id"`
	SessionID    string              `json:"sessionId"`
	ItemIndex    int                 `json:"itemIndex"`
	Action       string              `json:"action"`
	GroupLabel   *model.GroupLabel   `json:"groupLabel"`
	ContextLabel *model.ContextLabel `json:"contextLabel"`
	CreatedAt    time.Time           `json:"createdAt"`
}

// CreateCodingEvent 记录一条标注操作
func (s *Store) CreateCodingEvent(sessionID string, itemIndex int, action string, group *model.GroupLabel, context *model.ContextLabel) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO coding_events (session_id, item_index, action, group_label, context_label)
		VALUES (?, ?, ?, ?, ?)
	`, sessionID, itemIndex, action, nullableGroup(group), nullableContext(context))
	if err != nil {
		return 0, fmt.Errorf("failed to create coding event: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get coding event id: %w", err)
	}
	return id, nil
}

// RecentCodingEvents 按时间倒序获取最近的标注操作
func (s *Store) RecentCodingEvents(limit int) ([]CodingEvent, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(`
		SELECT id, session_id, item_index, action, group_label, context_label, created_at
		FROM coding_events
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query coding events: %w", err)
	}
	defer rows.Close()

	events := make([]CodingEvent, 0, limit)
	for rows.Next() {
		var evt CodingEvent
		var group, context *int64
		if err := rows.Scan(&evt.ID, &evt.SessionID, &evt.ItemIndex, &evt.Action, &group, &context, &evt.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan coding event: %w", err)
		}
		if group != nil {
			g := model.GroupLabel(*group)
			evt.GroupLabel = &g
		}
		if context != nil {
			c := model.ContextLabel(*context)
			evt.ContextLabel = &c
		}
		events = append(events, evt)
	}
	return events, rows.Err()
}

// CountCodingEvents 标注操作总数
func (s *Store) CountCodingEvents() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM coding_events").Scan(&count)
	return count, err
}

// CreateExportLog 记录一次导出
func (s *Store) CreateExportLog(kind, filePath string, rowCount, codedCount int) error {
	_, err := s.db.Exec(`
		INSERT INTO export_logs (kind, file_path, row_count, coded_count)
		VALUES (?, ?, ?, ?)
	`, kind, filePath, rowCount, codedCount)
	if err != nil {
		return fmt.Errorf("failed to create export log: %w", err)
	}
	return nil
}

// SetMeta 写入会话元信息
func (s *Store) SetMeta(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO session_meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = ?, updated_at = CURRENT_TIMESTAMP
	`, key, value, value)
	return err
}

// GetMeta 读取会话元信息
func (s *Store) GetMeta(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM session_meta WHERE key = ?", key).Scan(&value)
	if err != nil {
		return "", err
	}
	return value, nil
}

func nullableGroup(g *model.GroupLabel) any {
	if g == nil {
		return nil
	}
	return int64(*g)
}

func nullableContext(c *model.ContextLabel) any {
	if c == nil {
		return nil
	}
	return int64(*c)
}
