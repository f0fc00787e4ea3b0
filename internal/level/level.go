package level

// 等级经验值门槛，下标 0 对应 1 级。
var thresholds = [10]int{0, 100, 300, 600, 1000, 1500, 2100, 2800, 3600, 4500}

// 等级称号
var names = [10]string{
	"萌芽", "破土", "幼苗", "新竹", "翠竹",
	"劲竹", "茂林", "成林", "竹海", "传说",
}

const MaxLevel = 10

// Of 根据经验值计算当前等级 (1-10)。
func Of(exp int) int {
	for lvl := MaxLevel; lvl >= 1; lvl-- {
		if exp >= thresholds[lvl-1] {
			return lvl
		}
	}
	return 1
}

// Name 返回等级称号，越界时退回 1 级称号。
func Name(lvl int) string {
	if lvl < 1 || lvl > MaxLevel {
		return names[0]
	}
	return names[lvl-1]
}

// NextExp 返回升到下一级所需的经验值，满级时返回满级门槛。
func NextExp(lvl int) int {
	if lvl >= MaxLevel {
		return thresholds[MaxLevel-1]
	}
	if lvl < 1 {
		lvl = 1
	}
	return thresholds[lvl]
}

// Progress 返回当前等级内的经验进度 (0-100)。满级恒为 100。
func Progress(exp, lvl int) float64 {
	if lvl < 1 {
		lvl = 1
	}
	if lvl >= MaxLevel {
		return 100.0
	}
	cur := thresholds[lvl-1]
	next := NextExp(lvl)
	if next == cur {
		return 100.0
	}
	p := float64(exp-cur) / float64(next-cur) * 100
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
