/*
 * @module service/nlp/extraction
 * @description 数据集规范化与列分析模块，负责将任意JSON形态的载荷整理为有序记录列表并推断列语义类型
 * @architecture 分层架构 - 业务服务层（纯函数，无状态）
 * @documentReference ai_docs/nlp_chart_engine.md
 * @stateFlow 载荷规范化 -> 列集合收集 -> 类型打分 -> 列描述输出
 * @rules 规范化全程不抛错，无法识别的输入一律返回空数据集；每列最多采样200个值
 * @dependencies dataviz-service/service/models, github.com/spf13/cast
 * @refs temporal.go, interpreter.go
 */

package nlp

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cast"

	"dataviz-service/service/models"
)

// 上传与预览接口常用的包装键，按优先级排列
var datasetWrapperKeys = []string{"data_preview", "cleanedData", "uploadedData", "rows", "data", "preview"}

// 采样上限，控制列分析成本
const columnSampleLimit = 200

var (
	temporalNameKeywords = []string{"date", "time", "year", "month", "day", "week", "quarter", "timestamp"}
	numberPattern        = regexp.MustCompile(`-?\d+(?:\.\d+)?`)
	isoDatePattern       = regexp.MustCompile(`^\d{4}[-/]\d{1,2}(?:[-/]\d{1,2})?$`)
)

// ExtractDataset 将任意载荷规范化为记录列表
// 递归处理JSON字符串、记录数组、包装对象和对象套对象结构，无法识别时返回空
func ExtractDataset(datasetObj interface{}) models.Dataset {
	switch obj := datasetObj.(type) {
	case nil:
		return models.Dataset{}

	case string:
		var parsed interface{}
		if err := json.Unmarshal([]byte(obj), &parsed); err != nil {
			return models.Dataset{}
		}
		return ExtractDataset(parsed)

	case models.Dataset:
		return obj

	case []models.Record:
		dataset := make(models.Dataset, 0, len(obj))
		for _, row := range obj {
			dataset = append(dataset, row)
		}
		return dataset

	case []map[string]interface{}:
		dataset := make(models.Dataset, 0, len(obj))
		for _, row := range obj {
			dataset = append(dataset, models.Record(row))
		}
		return dataset

	case []interface{}:
		dataset := make(models.Dataset, 0, len(obj))
		for _, item := range obj {
			row, ok := item.(map[string]interface{})
			if !ok {
				return models.Dataset{}
			}
			dataset = append(dataset, models.Record(row))
		}
		return dataset

	case models.Record:
		return extractFromMap(map[string]interface{}(obj))

	case map[string]interface{}:
		return extractFromMap(obj)
	}

	return models.Dataset{}
}

// extractFromMap 依次尝试已知包装键，均不命中时识别对象套对象结构
func extractFromMap(obj map[string]interface{}) models.Dataset {
	for _, key := range datasetWrapperKeys {
		if inner, exists := obj[key]; exists {
			if extracted := ExtractDataset(inner); len(extracted) > 0 {
				return extracted
			}
		}
	}

	// 对象套对象：所有值均为记录时按键序取值，保证确定性
	if len(obj) > 0 {
		keys := make([]string, 0, len(obj))
		for key := range obj {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		dataset := make(models.Dataset, 0, len(obj))
		for _, key := range keys {
			row, ok := obj[key].(map[string]interface{})
			if !ok {
				return models.Dataset{}
			}
			dataset = append(dataset, models.Record(row))
		}
		return dataset
	}

	return models.Dataset{}
}

// isNull 判断值是否缺失
func isNull(value interface{}) bool {
	if value == nil {
		return true
	}
	if text, ok := value.(string); ok {
		return text == ""
	}
	return false
}

// SafeFloat 安全地将值转换为浮点数
// 字符串先去除千位分隔符，再提取第一段带符号小数子串
func SafeFloat(value interface{}) (float64, bool) {
	if value == nil {
		return 0, false
	}

	if text, ok := value.(string); ok {
		cleaned := strings.ReplaceAll(strings.TrimSpace(text), ",", "")
		if cleaned == "" {
			return 0, false
		}
		match := numberPattern.FindString(cleaned)
		if match == "" {
			return 0, false
		}
		num, err := cast.ToFloat64E(match)
		if err != nil {
			return 0, false
		}
		return num, true
	}

	num, err := cast.ToFloat64E(value)
	if err != nil {
		return 0, false
	}
	return num, true
}

// sampleValues 取前n个非空值
func sampleValues(values []interface{}, limit int) []interface{} {
	sampled := make([]interface{}, 0, limit)
	for _, v := range values {
		if len(sampled) >= limit {
			break
		}
		if isNull(v) {
			continue
		}
		sampled = append(sampled, v)
	}
	return sampled
}

// temporalScore 计算列为时间列的置信度，范围[0,1]
// 名称含时间关键词得0.4基础分，再按可解析比例、年份比例和ISO形态比例加权
func temporalScore(name string, values []interface{}) float64 {
	lowered := strings.ToLower(name)
	score := 0.0
	for _, keyword := range temporalNameKeywords {
		if strings.Contains(lowered, keyword) {
			score = 0.4
			break
		}
	}

	parsed, total, numericYears, isoLike := 0, 0, 0, 0
	for _, value := range sampleValues(values, columnSampleLimit) {
		total++

		if _, isTime := value.(time.Time); isTime {
			parsed++
			continue
		}

		text := strings.TrimSpace(fmt.Sprintf("%v", value))
		if text == "" {
			continue
		}

		if _, ok := parseDateSafe(text); ok {
			parsed++
			continue
		}

		if num, ok := SafeFloat(text); ok && inYearRange(num) {
			numericYears++
		}
		if isoDatePattern.MatchString(text) {
			isoLike++
		}
	}

	if total > 0 {
		score += 0.6 * float64(parsed) / float64(total)
		score += 0.25 * float64(numericYears) / float64(total)
		score += 0.15 * float64(isoLike) / float64(total)
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// numericRatio 计算可转换为数值的比例
func numericRatio(values []interface{}) float64 {
	numeric, total := 0, 0
	for _, value := range sampleValues(values, columnSampleLimit) {
		total++
		if _, ok := SafeFloat(value); ok {
			numeric++
		}
	}
	if total == 0 {
		return 0.0
	}
	return float64(numeric) / float64(total)
}

// AnalyseColumns 分析数据集的所有列，推断类型和元数据
// 列集合为所有记录键的并集；时间判定优先于数值判定，年份样的数值列归为时间列
func AnalyseColumns(dataset models.Dataset) []models.Column {
	if len(dataset) == 0 {
		return nil
	}

	seen := map[string]bool{}
	orderedNames := []string{}
	for _, row := range dataset {
		keys := make([]string, 0, len(row))
		for key := range row {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if !seen[key] {
				seen[key] = true
				orderedNames = append(orderedNames, key)
			}
		}
	}

	columns := make([]models.Column, 0, len(orderedNames))
	for _, name := range orderedNames {
		values := make([]interface{}, 0, len(dataset))
		for _, row := range dataset {
			values = append(values, row[name])
		}

		temporalConf := temporalScore(name, values)
		numericConf := numericRatio(values)

		nonNull := 0
		unique := map[string]bool{}
		for _, v := range values {
			if isNull(v) {
				continue
			}
			nonNull++
			unique[fmt.Sprintf("%v", v)] = true
		}

		colType := models.ColumnCategorical
		if temporalConf >= 0.6 {
			colType = models.ColumnTemporal
		} else if numericConf >= 0.6 {
			colType = models.ColumnNumeric
		}

		columns = append(columns, models.Column{
			Name:          name,
			Type:          colType,
			Values:        values,
			NonNullCount:  nonNull,
			UniqueCount:   len(unique),
			NumericRatio:  numericConf,
			TemporalScore: temporalConf,
		})
	}

	return columns
}
