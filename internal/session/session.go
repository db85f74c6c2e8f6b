package session

import (
	"fmt"
	"sync"

	"github.com/bennoble/image-coding-tool/internal/model"
	"github.com/bennoble/image-coding-tool/internal/progress"
)

// Journal 标注操作日志接口（可选，写入失败不影响标注结果）
type Journal interface {
	RecordEvent(itemIndex int, action string, group *model.GroupLabel, context *model.ContextLabel)
}

// Session 标注会话状态
// 持有两个与数据集等长的并行标签序列，所有变更先持久化再修改内存，
// 保证内存状态与进度文件不发生分歧
type Session struct {
	mu sync.RWMutex

	codedLabels   []*model.GroupLabel
	contextLabels []*model.ContextLabel
	currentIndex  int
	hasAutoJumped bool // 初始定位只执行一次

	store   *progress.Store
	journal Journal
}

// Summary 标注进度统计
type Summary struct {
	Total         int                        `json:"total"`
	CodedCount    int                        `json:"codedCount"`
	ContextCount  int                        `json:"contextCount"`
	GroupCounts   map[model.GroupLabel]int   `json:"groupCounts"`
	ContextCounts map[model.ContextLabel]int `json:"contextCounts"`
	Complete      bool                       `json:"complete"`
}

// New 创建标注会话
// 将进度存储中的记录重建为标签序列：越界索引忽略，不中断初始化；
// 之后定位到第一个未编码的索引（全部已编码时保持 0）
func New(total int, store *progress.Store, journal Journal) *Session {
	s := &Session{
		codedLabels:   make([]*model.GroupLabel, total),
		contextLabels: make([]*model.ContextLabel, total),
		store:         store,
		journal:       journal,
	}

	for index, entry := range store.Entries() {
		if index < 0 || index >= total {
			continue
		}
		s.codedLabels[index] = entry.GroupLabel
		s.contextLabels[index] = entry.Context
	}

	s.autoJumpOnce()

	return s
}

// autoJumpOnce 会话启动时定位到第一个未编码的索引，仅执行一次
func (s *Session) autoJumpOnce() {
	if s.hasAutoJumped {
		return
	}
	s.hasAutoJumped = true

	for i, label := range s.codedLabels {
		if label == nil {
			s.currentIndex = i
			return
		}
	}
}

// Total 条目总数
func (s *Session) Total() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.codedLabels)
}

// Cursor 当前光标位置
func (s *Session) Cursor() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentIndex
}

// SetCursor 移动光标
func (s *Session) SetCursor(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.codedLabels) {
		return fmt.Errorf("索引越界: %d", index)
	}
	s.currentIndex = index
	return nil
}

// Labels 获取指定索引的当前标签
func (s *Session) Labels(index int) (*model.GroupLabel, *model.ContextLabel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if index < 0 || index >= len(s.codedLabels) {
		return nil, nil, fmt.Errorf("索引越界: %d", index)
	}
	return s.codedLabels[index], s.contextLabels[index], nil
}

// SetGroupLabel 设置人数分类标签
// 不改变场景标签，也不移动光标；先持久化成功后才修改内存
func (s *Session) SetGroupLabel(index int, code model.GroupLabel) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.codedLabels) {
		return fmt.Errorf("索引越界: %d", index)
	}
	if !code.Valid() {
		return fmt.Errorf("无效的分类编码: %d", code)
	}

	label := code
	entry := model.ProgressEntry{
		GroupLabel: &label,
		Context:    s.contextLabels[index],
	}
	if err := s.store.Put(index, entry); err != nil {
		return fmt.Errorf("保存进度失败: %w", err)
	}

	s.codedLabels[index] = &label

	if s.journal != nil {
		s.journal.RecordEvent(index, "set_group_label", &label, s.contextLabels[index])
	}
	return nil
}

// ToggleContextLabel 切换场景标签
// 已是该值则取消，否则设置（两个场景值互斥，只保留一个）
func (s *Session) ToggleContextLabel(index int, code model.ContextLabel) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.contextLabels) {
		return fmt.Errorf("索引越界: %d", index)
	}
	if !code.Valid() {
		return fmt.Errorf("无效的场景编码: %d", code)
	}

	var next *model.ContextLabel
	if current := s.contextLabels[index]; current == nil || *current != code {
		label := code
		next = &label
	}

	entry := model.ProgressEntry{
		GroupLabel: s.codedLabels[index],
		Context:    next,
	}

	// 两个标签均为空时直接移除记录，保持存储不含空记录
	var err error
	if entry.Empty() {
		err = s.store.Remove(index)
	} else {
		err = s.store.Put(index, entry)
	}
	if err != nil {
		return fmt.Errorf("保存进度失败: %w", err)
	}

	s.contextLabels[index] = next

	if s.journal != nil {
		s.journal.RecordEvent(index, "toggle_context_label", s.codedLabels[index], next)
	}
	return nil
}

// Clear 清除指定索引的全部标签，并从存储中整条移除
func (s *Session) Clear(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.codedLabels) {
		return fmt.Errorf("索引越界: %d", index)
	}

	if err := s.store.Remove(index); err != nil {
		return fmt.Errorf("保存进度失败: %w", err)
	}

	s.codedLabels[index] = nil
	s.contextLabels[index] = nil

	if s.journal != nil {
		s.journal.RecordEvent(index, "clear", nil, nil)
	}
	return nil
}

// FindNextUncoded 查找 after 之后第一个未编码的索引
// 纯查询，无副作用；不存在时返回 found=false
func (s *Session) FindNextUncoded(after int) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := after + 1; i < len(s.codedLabels); i++ {
		if s.codedLabels[i] == nil {
			return i, true
		}
	}
	return 0, false
}

// Summarize 统计各标签出现次数
// 最终导出仅在所有条目都有人数分类标签时允许；场景标签始终可选
func (s *Session) Summarize() Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summary := Summary{
		Total:         len(s.codedLabels),
		GroupCounts:   make(map[model.GroupLabel]int),
		ContextCounts: make(map[model.ContextLabel]int),
	}

	for _, label := range s.codedLabels {
		if label != nil {
			summary.CodedCount++
			summary.GroupCounts[*label]++
		}
	}
	for _, context := range s.contextLabels {
		if context != nil {
			summary.ContextCount++
			summary.ContextCounts[*context]++
		}
	}

	summary.Complete = summary.CodedCount == summary.Total
	return summary
}
