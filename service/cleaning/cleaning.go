/*
 * @module service/cleaning
 * @description 数据清洗服务，提供去空值、填充空值和字符串标准化任务
 * @architecture 分层架构 - 业务服务层（纯函数，无状态）
 * @stateFlow 任务名查表 -> 逐行变换 -> 返回新记录集
 * @rules 任务表闭合，未知任务报错；变换不修改输入数据集
 * @dependencies 无
 * @refs service/models
 */

package cleaning

import (
	"errors"
	"fmt"
	"strings"

	"dataviz-service/service/models"
)

// ErrInvalidTask 未知的清洗任务
var ErrInvalidTask = errors.New("invalid cleaning task")

// Options 清洗任务参数
type Options struct {
	FillValue interface{} `json:"fill_value"`
}

// handler 单个清洗任务的实现
type handler func(dataset models.Dataset, opts Options) models.Dataset

// Service 数据清洗服务
type Service struct {
	handlers map[string]handler
}

// NewService 创建清洗服务实例，注册全部内置任务
func NewService() *Service {
	return &Service{
		handlers: map[string]handler{
			"remove_nulls": removeNulls,
			"fill_nulls":   fillNulls,
			"standardize":  standardize,
		},
	}
}

// Tasks 支持的任务名，用于错误提示
func (s *Service) Tasks() []string {
	return []string{"fill_nulls", "remove_nulls", "standardize"}
}

// Clean 执行指定清洗任务
func (s *Service) Clean(dataset models.Dataset, task string, opts Options) (models.Dataset, error) {
	fn, ok := s.handlers[task]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTask, task)
	}
	return fn(dataset, opts), nil
}

// isNullValue 空值判定：nil、空串与NaN字面量
func isNullValue(value interface{}) bool {
	if value == nil {
		return true
	}
	if text, ok := value.(string); ok {
		trimmed := strings.TrimSpace(text)
		return trimmed == "" || strings.EqualFold(trimmed, "nan")
	}
	return false
}

// removeNulls 丢弃含任意空值的行
func removeNulls(dataset models.Dataset, _ Options) models.Dataset {
	cleaned := models.Dataset{}
	for _, row := range dataset {
		keep := true
		for _, value := range row {
			if isNullValue(value) {
				keep = false
				break
			}
		}
		if keep {
			cleaned = append(cleaned, copyRecord(row))
		}
	}
	return cleaned
}

// fillNulls 空值替换为填充值
func fillNulls(dataset models.Dataset, opts Options) models.Dataset {
	fill := opts.FillValue
	if fill == nil {
		fill = ""
	}
	cleaned := make(models.Dataset, 0, len(dataset))
	for _, row := range dataset {
		record := copyRecord(row)
		for key, value := range record {
			if isNullValue(value) {
				record[key] = fill
			}
		}
		cleaned = append(cleaned, record)
	}
	return cleaned
}

// standardize 字符串值转小写，其余类型原样保留
func standardize(dataset models.Dataset, _ Options) models.Dataset {
	cleaned := make(models.Dataset, 0, len(dataset))
	for _, row := range dataset {
		record := copyRecord(row)
		for key, value := range record {
			if text, ok := value.(string); ok {
				record[key] = strings.ToLower(text)
			}
		}
		cleaned = append(cleaned, record)
	}
	return cleaned
}

// copyRecord 浅拷贝记录，避免原地修改
func copyRecord(row models.Record) models.Record {
	record := make(models.Record, len(row))
	for key, value := range row {
		record[key] = value
	}
	return record
}
