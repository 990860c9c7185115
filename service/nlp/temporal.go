/*
 * @module service/nlp/temporal
 * @description 时间工具模块，负责时间值分类、粒度推断和时间桶格式化
 * @architecture 分层架构 - 业务服务层（纯函数，无状态）
 * @documentReference ai_docs/nlp_chart_engine.md
 * @stateFlow 值分类 -> 粒度推断 -> 时间桶构建 -> 时序排序
 * @rules 解析失败一律视为"值缺失"，不向上传播错误；同一输入必须产生相同输出
 * @dependencies time, regexp
 * @refs extraction.go, chart_builder.go
 */

package nlp

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Granularity 时间粒度，从粗到细为 year < quarter < month < date < datetime
type Granularity string

const (
	GranularityNone     Granularity = ""
	GranularityYear     Granularity = "year"
	GranularityQuarter  Granularity = "quarter"
	GranularityMonth    Granularity = "month"
	GranularityDate     Granularity = "date"
	GranularityDatetime Granularity = "datetime"
)

// 常见日期格式，按可能性排列
var dateLayouts = []string{
	"2006-1-2",
	"2006/1/2",
	"2006-1",
	"2006/1",
	"2006",
	"Jan 2006",
	"January 2006",
	"2006 Jan",
	"2006 January",
	"2-Jan-2006",
	"1/2/2006",
	"2006-1-2 15:04:05",
	"2006-1-2T15:04:05",
	time.RFC3339,
}

var (
	quarterCompact   = regexp.MustCompile(`(?i)^(\d{4})\s*[-/]?\s*q([1-4])$`)
	quarterPrefix    = regexp.MustCompile(`(?i)\bq([1-4])\b`)
	quarterSuffix    = regexp.MustCompile(`(?i)\b([1-4])q\b`)
	fourDigitPattern = regexp.MustCompile(`\b(\d{4})\b`)
	bareYearPattern  = regexp.MustCompile(`^\d{4}$`)
	yearMonthPattern = regexp.MustCompile(`^\d{4}[-/]\d{1,2}$`)
	monthYearPattern = regexp.MustCompile(`^\d{1,2}[-/]\d{4}$`)
	monthNamePattern = regexp.MustCompile(`(?i)^(?:(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\s+\d{4}|\d{4}\s+(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*)$`)
)

// parseDateSafe 尝试用已知格式解析时间值，失败返回false
func parseDateSafe(value interface{}) (time.Time, bool) {
	switch v := value.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return v, true
	case string:
		text := strings.TrimSpace(v)
		if text == "" {
			return time.Time{}, false
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, text); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// hasClock 是否带有日内时间成分
func hasClock(t time.Time) bool {
	return t.Hour() != 0 || t.Minute() != 0 || t.Second() != 0 || t.Nanosecond() != 0
}

// inYearRange 是否为可信的年份值
func inYearRange(year float64) bool {
	return year >= 1800 && year <= 2200 && year == float64(int(year))
}

// classifyTemporalValue 将单个值归入时间粒度
// datetime对象按是否含日内成分归为datetime/date；[1800,2200]内整数归为year；
// 含季度标记与四位年份的文本归为quarter；YYYY-M、M-YYYY及"月份名+年份"归为month
func classifyTemporalValue(value interface{}) Granularity {
	if value == nil {
		return GranularityNone
	}

	if t, ok := value.(time.Time); ok {
		if hasClock(t) {
			return GranularityDatetime
		}
		return GranularityDate
	}

	if num, ok := SafeFloat(value); ok {
		if _, isStr := value.(string); !isStr {
			if inYearRange(num) {
				return GranularityYear
			}
			return GranularityNone
		}
	}

	text := strings.TrimSpace(fmt.Sprintf("%v", value))
	if text == "" {
		return GranularityNone
	}

	if _, _, ok := parseQuarter(text); ok {
		return GranularityQuarter
	}

	if bareYearPattern.MatchString(text) {
		if num, ok := SafeFloat(text); ok && inYearRange(num) {
			return GranularityYear
		}
		return GranularityNone
	}

	if yearMonthPattern.MatchString(text) || monthYearPattern.MatchString(text) {
		return GranularityMonth
	}

	if monthNamePattern.MatchString(text) {
		return GranularityMonth
	}

	if t, ok := parseDateSafe(text); ok {
		if hasClock(t) {
			return GranularityDatetime
		}
		return GranularityDate
	}

	return GranularityNone
}

// extractYear 从文本中提取第一个四位年份
func extractYear(text string) (int, bool) {
	match := fourDigitPattern.FindStringSubmatch(text)
	if match == nil {
		return 0, false
	}
	var year int
	fmt.Sscanf(match[1], "%d", &year)
	return year, true
}

// parseQuarter 识别季度文本，要求同时出现季度标记与可信的四位年份
// 支持 "2023Q1"、"2023-Q1"、"Q1 2023"、"1Q 2023" 等写法
func parseQuarter(text string) (year, quarter int, ok bool) {
	if match := quarterCompact.FindStringSubmatch(text); match != nil {
		fmt.Sscanf(match[1], "%d", &year)
		quarter = int(match[2][0] - '0')
		if inYearRange(float64(year)) {
			return year, quarter, true
		}
		return 0, 0, false
	}

	digit := 0
	if match := quarterPrefix.FindStringSubmatch(text); match != nil {
		digit = int(match[1][0] - '0')
	} else if match := quarterSuffix.FindStringSubmatch(text); match != nil {
		digit = int(match[1][0] - '0')
	}
	if digit == 0 {
		return 0, 0, false
	}

	year, found := extractYear(text)
	if !found || !inYearRange(float64(year)) {
		return 0, 0, false
	}
	return year, digit, true
}

// inferGranularity 统计各粒度出现次数后选择占比最高的层级
// 从细到粗扫描，计数相同时偏向更粗的层级；datetime计入date
func inferGranularity(values []interface{}) Granularity {
	counts := map[Granularity]int{}
	for _, v := range values {
		switch classifyTemporalValue(v) {
		case GranularityDate, GranularityDatetime:
			counts[GranularityDate]++
		case GranularityMonth:
			counts[GranularityMonth]++
		case GranularityQuarter:
			counts[GranularityQuarter]++
		case GranularityYear:
			counts[GranularityYear]++
		}
	}

	best := GranularityNone
	bestCount := 0
	for _, level := range []Granularity{GranularityDate, GranularityMonth, GranularityQuarter, GranularityYear} {
		if counts[level] > 0 && counts[level] >= bestCount {
			best = level
			bestCount = counts[level]
		}
	}
	return best
}

// resolveTemporal 将任意时间值转换为time.Time
// 覆盖数值年份与季度文本等parseDateSafe无法直接处理的形式
func resolveTemporal(value interface{}) (time.Time, bool) {
	if t, ok := parseDateSafe(value); ok {
		return t, true
	}

	if num, ok := SafeFloat(value); ok {
		if _, isStr := value.(string); !isStr && inYearRange(num) {
			return time.Date(int(num), time.January, 1, 0, 0, 0, 0, time.UTC), true
		}
	}

	text := strings.TrimSpace(fmt.Sprintf("%v", value))
	if year, quarter, ok := parseQuarter(text); ok {
		return time.Date(year, time.Month((quarter-1)*3+1), 1, 0, 0, 0, 0, time.UTC), true
	}

	if monthYearPattern.MatchString(text) {
		normalized := strings.ReplaceAll(text, "/", "-")
		if t, err := time.Parse("1-2006", normalized); err == nil {
			return t, true
		}
	}

	if num, ok := SafeFloat(value); ok && inYearRange(num) {
		return time.Date(int(num), time.January, 1, 0, 0, 0, 0, time.UTC), true
	}

	return time.Time{}, false
}

// formatTimeBucket 按粒度生成规范化标签
// year: "2025"  quarter: "2025-Q1"  month: "2025-01"  date: "2025-01-31"
func formatTimeBucket(t time.Time, granularity Granularity) string {
	switch granularity {
	case GranularityYear:
		return t.Format("2006")
	case GranularityQuarter:
		quarter := (int(t.Month())-1)/3 + 1
		return fmt.Sprintf("%d-Q%d", t.Year(), quarter)
	case GranularityMonth:
		return t.Format("2006-01")
	default:
		return t.Format("2006-01-02")
	}
}

// bucketSortKey 按粒度生成可比较排序键，保证标签按时间顺序排列
func bucketSortKey(t time.Time, granularity Granularity) int64 {
	switch granularity {
	case GranularityYear:
		return int64(t.Year())
	case GranularityQuarter:
		return int64(t.Year())*10 + int64((int(t.Month())-1)/3+1)
	case GranularityMonth:
		return int64(t.Year())*100 + int64(t.Month())
	default:
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		return day.Unix()
	}
}

// timeBucket 将时间值归入指定粒度的时间桶，返回标签与排序键
func timeBucket(value interface{}, granularity Granularity) (string, int64, bool) {
	t, ok := resolveTemporal(value)
	if !ok {
		return "", 0, false
	}
	return formatTimeBucket(t, granularity), bucketSortKey(t, granularity), true
}
