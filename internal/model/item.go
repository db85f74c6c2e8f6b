package model

// Item 数据集中的一条待标注记录
type Item struct {
	Index    int      `json:"index"`    // 0-based 位置，会话期间稳定
	Filename string   `json:"filename"` // 图片文件标识
	Fields   []string `json:"-"`        // 原始行数据（导出时原样保留）
}

// ProgressEntry 单条标注进度记录
// 持久化文件中存在新旧两种格式（记录 / 裸标签值），
// 加载时统一解码为该结构，内部逻辑不再区分格式
type ProgressEntry struct {
	GroupLabel *GroupLabel   `json:"group_label"`
	Context    *ContextLabel `json:"context"`
}

// Empty 判断是否两个标签都为空
func (e ProgressEntry) Empty() bool {
	return e.GroupLabel == nil && e.Context == nil
}
