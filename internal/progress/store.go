package progress

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/bennoble/image-coding-tool/internal/model"
)

// Store 标注进度持久化存储
// 磁盘格式为 JSON 对象：字符串索引 -> 记录 {group_label, context}
// 兼容旧格式（裸标签值），加载时统一解码为 ProgressEntry
// 每次变更整体重写文件（先写后改内存的契约由 session 层保证）
type Store struct {
	path    string
	entries map[int]model.ProgressEntry
}

// Load 从文件加载进度存储
// 文件不存在视为空存储；非数字索引或无法解析的值跳过，不报错
func Load(path string) (*Store, error) {
	s := &Store{
		path:    path,
		entries: make(map[int]model.ProgressEntry),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("读取进度文件失败: %w", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("解析进度文件失败: %w", err)
	}

	for key, value := range raw {
		index, err := strconv.Atoi(key)
		if err != nil || index < 0 {
			// 非数字索引，跳过
			continue
		}

		entry, ok := decodeEntry(value)
		if !ok || entry.Empty() {
			// 无法解析或两个标签均为空的记录不保留
			continue
		}
		s.entries[index] = entry
	}

	return s, nil
}

// decodeEntry 解码单条进度记录，兼容新旧两种格式
func decodeEntry(value json.RawMessage) (model.ProgressEntry, bool) {
	// 新格式：{group_label, context}
	var entry model.ProgressEntry
	if err := json.Unmarshal(value, &entry); err == nil {
		return entry, true
	}

	// 旧格式：裸标签值
	var bare model.GroupLabel
	if err := json.Unmarshal(value, &bare); err == nil {
		return model.ProgressEntry{GroupLabel: &bare}, true
	}

	return model.ProgressEntry{}, false
}

// Get 获取指定索引的进度记录
func (s *Store) Get(index int) (model.ProgressEntry, bool) {
	entry, ok := s.entries[index]
	return entry, ok
}

// Entries 获取全部进度记录（副本）
func (s *Store) Entries() map[int]model.ProgressEntry {
	result := make(map[int]model.ProgressEntry, len(s.entries))
	for k, v := range s.entries {
		result[k] = v
	}
	return result
}

// Count 记录条数
func (s *Store) Count() int {
	return len(s.entries)
}

// Put 写入进度记录并立即持久化
// 持久化失败时不修改内存状态
func (s *Store) Put(index int, entry model.ProgressEntry) error {
	prev, existed := s.entries[index]
	s.entries[index] = entry
	if err := s.save(); err != nil {
		// 回滚内存变更，保持内存与磁盘一致
		if existed {
			s.entries[index] = prev
		} else {
			delete(s.entries, index)
		}
		return err
	}
	return nil
}

// Remove 删除进度记录并立即持久化
// 记录不存在时为空操作
func (s *Store) Remove(index int) error {
	prev, existed := s.entries[index]
	if !existed {
		return nil
	}
	delete(s.entries, index)
	if err := s.save(); err != nil {
		s.entries[index] = prev
		return err
	}
	return nil
}

// Dump 序列化当前存储内容（用于备份下载）
func (s *Store) Dump() ([]byte, error) {
	return json.MarshalIndent(s.encode(), "", "  ")
}

// Path 进度文件路径
func (s *Store) Path() string {
	return s.path
}

func (s *Store) encode() map[string]model.ProgressEntry {
	out := make(map[string]model.ProgressEntry, len(s.entries))
	for index, entry := range s.entries {
		out[strconv.Itoa(index)] = entry
	}
	return out
}

// save 原子化整体重写进度文件
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.encode(), "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// SortedIndexes 升序返回所有已记录的索引（用于调试输出与测试）
func (s *Store) SortedIndexes() []int {
	indexes := make([]int, 0, len(s.entries))
	for k := range s.entries {
		indexes = append(indexes, k)
	}
	sort.Ints(indexes)
	return indexes
}
