/*
 * @module service/analysis
 * @description 数据集剖析服务，提供数值汇总、类别统计与描述性统计
 * @architecture 分层架构 - 业务服务层（纯函数，无状态）
 * @stateFlow 列分析 -> 按列类型分派统计 -> 汇总输出
 * @rules 数值列按可转换值求和；类别列统计值频次；输出键保持确定性顺序
 * @dependencies dataviz-service/service/nlp
 * @refs service/models, service/nlp
 */

package analysis

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"dataviz-service/service/models"
	"dataviz-service/service/nlp"
)

var (
	// ErrColumnNotFound 列不存在
	ErrColumnNotFound = errors.New("column does not exist in the dataset")
	// ErrColumnNotCategorical 列不是类别列
	ErrColumnNotCategorical = errors.New("column is not categorical")
	// ErrNoNumericColumns 没有数值列可统计
	ErrNoNumericColumns = errors.New("no numeric columns available for statistics calculation")
)

// Service 数据集剖析服务
type Service struct{}

// NewService 创建剖析服务实例
func NewService() *Service {
	return &Service{}
}

// CatStats 单个类别列的统计结果
type CatStats struct {
	Counts map[string]int `json:"counts"`
	Mode   []string       `json:"mode"`
}

// Stats 数值列描述性统计
type Stats struct {
	Mean   map[string]float64 `json:"mean"`
	Median map[string]float64 `json:"median"`
	Mode   map[string]float64 `json:"mode"`
}

// NumericSummary 数值列求和，键为列名
func (s *Service) NumericSummary(columns []models.Column) map[string]float64 {
	summary := map[string]float64{}
	for _, col := range columns {
		if col.Type != models.ColumnNumeric {
			continue
		}
		total := 0.0
		for _, value := range col.Values {
			if num, ok := nlp.SafeFloat(value); ok {
				total += num
			}
		}
		summary[col.Name] = total
	}
	return summary
}

// CategoricalSummary 非数值列的值频次，外层键为列名
func (s *Service) CategoricalSummary(columns []models.Column) map[string]map[string]int {
	summary := map[string]map[string]int{}
	for _, col := range columns {
		if col.Type == models.ColumnNumeric {
			continue
		}
		summary[col.Name] = valueCounts(col.Values)
	}
	return summary
}

// valueCounts 统计值频次，空值跳过
func valueCounts(values []interface{}) map[string]int {
	counts := map[string]int{}
	for _, value := range values {
		text := strings.TrimSpace(fmt.Sprintf("%v", value))
		if value == nil || text == "" || text == "<nil>" {
			continue
		}
		counts[text]++
	}
	return counts
}

// CategoricalColumns 类别列名列表，按分析顺序
func (s *Service) CategoricalColumns(columns []models.Column) []string {
	names := []string{}
	for _, col := range columns {
		if col.Type == models.ColumnCategorical {
			names = append(names, col.Name)
		}
	}
	return names
}

// CategoryStats 指定类别列的频次与众数
func (s *Service) CategoryStats(columns []models.Column, columnName string) (*CatStats, error) {
	var target *models.Column
	for i := range columns {
		if columns[i].Name == columnName {
			target = &columns[i]
			break
		}
	}
	if target == nil {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, columnName)
	}
	if target.Type != models.ColumnCategorical {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotCategorical, columnName)
	}

	counts := valueCounts(target.Values)
	best := 0
	for _, count := range counts {
		if count > best {
			best = count
		}
	}
	mode := []string{}
	for value, count := range counts {
		if count == best {
			mode = append(mode, value)
		}
	}
	sort.Strings(mode)

	return &CatStats{Counts: counts, Mode: mode}, nil
}

// NumericStats 数值列的均值、中位数和众数
func (s *Service) NumericStats(columns []models.Column) (*Stats, error) {
	stats := &Stats{
		Mean:   map[string]float64{},
		Median: map[string]float64{},
		Mode:   map[string]float64{},
	}
	for _, col := range columns {
		if col.Type != models.ColumnNumeric {
			continue
		}
		values := []float64{}
		for _, value := range col.Values {
			if num, ok := nlp.SafeFloat(value); ok {
				values = append(values, num)
			}
		}
		if len(values) == 0 {
			continue
		}
		sort.Float64s(values)

		total := 0.0
		for _, v := range values {
			total += v
		}
		stats.Mean[col.Name] = total / float64(len(values))
		stats.Median[col.Name] = median(values)
		stats.Mode[col.Name] = mode(values)
	}
	if len(stats.Mean) == 0 {
		return nil, ErrNoNumericColumns
	}
	return stats, nil
}

// median 已排序切片的中位数
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// mode 众数，频次相同时取较小值
func mode(sorted []float64) float64 {
	best := sorted[0]
	bestCount := 0
	current := sorted[0]
	currentCount := 0
	for _, v := range sorted {
		if v == current {
			currentCount++
		} else {
			current = v
			currentCount = 1
		}
		if currentCount > bestCount {
			best = current
			bestCount = currentCount
		}
	}
	return best
}

// Profile 数据集结构概览，类似表结构描述输出
func (s *Service) Profile(dataset models.Dataset, columns []models.Column) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dataset: %d rows, %d columns\n", len(dataset), len(columns))
	for i, col := range columns {
		fmt.Fprintf(&b, " %d  %-24s %-12s non-null=%d unique=%d\n",
			i, col.Name, string(col.Type), col.NonNullCount, col.UniqueCount)
	}
	return b.String()
}
