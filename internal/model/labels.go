package model

// GroupLabel 人数分类编码（主标签）
type GroupLabel int

// 人数分类
const (
	GroupInfographic GroupLabel = 0 // 信息图/无人物
	GroupSolo        GroupLabel = 1 // 单人
	GroupSmallGroup  GroupLabel = 2 // 小群体
	GroupCrowd       GroupLabel = 3 // 人群
)

// GroupLabelNames 人数分类显示名称
var GroupLabelNames = map[GroupLabel]string{
	GroupInfographic: "Infographic",
	GroupSolo:        "Solo",
	GroupSmallGroup:  "Small group",
	GroupCrowd:       "Crowd",
}

// Valid 判断是否为合法的人数分类编码
func (g GroupLabel) Valid() bool {
	_, ok := GroupLabelNames[g]
	return ok
}

// Name 获取显示名称
func (g GroupLabel) Name() string {
	return GroupLabelNames[g]
}

// ContextLabel 场景分类编码（次标签，互斥，可不选）
type ContextLabel int

// 场景分类
const (
	ContextNewscast ContextLabel = 1 // 新闻播报
	ContextCongress ContextLabel = 2 // 国会场景
)

// ContextLabelNames 场景分类显示名称
var ContextLabelNames = map[ContextLabel]string{
	ContextNewscast: "Newscast",
	ContextCongress: "Congress",
}

// Valid 判断是否为合法的场景分类编码
func (c ContextLabel) Valid() bool {
	_, ok := ContextLabelNames[c]
	return ok
}

// Name 获取显示名称
func (c ContextLabel) Name() string {
	return ContextLabelNames[c]
}
