package boards

// 开放的板块 slug（与管理后台保持一致）
var allowed = map[string]struct{}{
	"invest":  {},
	"best":    {},
	"game":    {},
	"sports":  {},
	"gallery": {},
	"free":    {},
	"humor":   {},
	"report":  {},
}

// 预留路径，避免与顶级路由冲突
var reserved = map[string]struct{}{
	"admin": {}, "login": {}, "logout": {}, "static": {}, "api": {}, "posts": {}, "users": {},
}

// 各板块的标签页（选填的帖子分类）
var tabs = map[string][]string{
	"invest":  {"人气", "比特币", "国内股市", "海外股市", "个股讨论", "信息分享", "活动", "公告", "闲聊"},
	"best":    {"人气", "公告"},
	"game":    {"公告", "闲聊"},
	"sports":  {"足球", "棒球", "篮球", "其他", "公告"},
	"gallery": {"一般", "公告"},
	"free":    {"一般", "公告"},
	"humor":   {"幽默", "公告"},
	"report":  {"举报", "建议", "公告"},
}

// 板块展示名
var labels = map[string]string{
	"invest":  "投资",
	"best":    "精华",
	"game":    "游戏",
	"sports":  "体育",
	"gallery": "图库",
	"free":    "杂谈",
	"humor":   "幽默",
	"report":  "意见箱",
}

// Valid 判断 board 是否为开放板块且不在预留字里。
func Valid(board string) bool {
	if _, bad := reserved[board]; bad {
		return false
	}
	_, ok := allowed[board]
	return ok
}

// TabsOf 返回板块的标签页列表，未配置时为 nil。
func TabsOf(board string) []string {
	return tabs[board]
}

// Label 返回板块展示名，未配置时回退 slug 本身。
func Label(board string) string {
	if l, ok := labels[board]; ok {
		return l
	}
	return board
}

// NormalizeCategory 校正帖子标签页：不在配置内的值回退到第一个标签。
// 没有标签页配置的板块原样返回。
func NormalizeCategory(board, category string) string {
	ts := tabs[board]
	if len(ts) == 0 {
		return category
	}
	for _, t := range ts {
		if t == category {
			return category
		}
	}
	return ts[0]
}

// ValidCategory 判断 category 是否属于该板块的标签页。
func ValidCategory(board, category string) bool {
	for _, t := range tabs[board] {
		if t == category {
			return true
		}
	}
	return false
}

// All 返回全部板块 slug（固定顺序，供导航/后台使用）。
func All() []string {
	return []string{"best", "invest", "game", "sports", "gallery", "free", "humor", "report"}
}
