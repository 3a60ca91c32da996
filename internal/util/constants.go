package util

// 课程统计缓存键前缀
const CourseStatsKeyPrefix = "onlinecourse:course_stats:"

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)
