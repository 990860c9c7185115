/*
 * @module service/export
 * @description 清洗结果导出服务，支持CSV与JSON格式
 * @architecture 分层架构 - 业务服务层（纯函数，无状态）
 * @stateFlow 列顺序推导 -> 格式化 -> 序列化输出
 * @rules 列顺序按首次出现（记录内键排序）保持确定性；不支持的格式报错
 * @dependencies encoding/csv, github.com/spf13/cast
 * @refs service/models
 */

package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cast"

	"dataviz-service/service/models"
)

var (
	// ErrUnsupportedFormat 不支持的导出格式
	ErrUnsupportedFormat = errors.New("unsupported export format")
	// ErrNothingToExport 没有可导出的数据
	ErrNothingToExport = errors.New("no cleaned data available to export")
)

// Result 导出产物与下载元信息
type Result struct {
	Content     []byte
	ContentType string
	Filename    string
}

// Service 数据导出服务
type Service struct{}

// NewService 创建导出服务实例
func NewService() *Service {
	return &Service{}
}

// Export 按格式导出数据集
func (s *Service) Export(dataset models.Dataset, format string) (*Result, error) {
	if len(dataset) == 0 {
		return nil, ErrNothingToExport
	}
	switch format {
	case "csv", "":
		return s.exportCSV(dataset)
	case "json":
		return s.exportJSON(dataset)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// columnOrder 列顺序：按首次出现，记录内键按字典序
func columnOrder(dataset models.Dataset) []string {
	seen := map[string]bool{}
	order := []string{}
	for _, row := range dataset {
		keys := make([]string, 0, len(row))
		for key := range row {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if !seen[key] {
				seen[key] = true
				order = append(order, key)
			}
		}
	}
	return order
}

// exportCSV 导出CSV，首行为列名
func (s *Service) exportCSV(dataset models.Dataset) (*Result, error) {
	columns := columnOrder(dataset)

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(columns); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range dataset {
		record := make([]string, len(columns))
		for i, name := range columns {
			value := row[name]
			if value == nil {
				continue
			}
			record[i] = cast.ToString(value)
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}

	return &Result{
		Content:     buf.Bytes(),
		ContentType: "text/csv",
		Filename:    "cleaned_data.csv",
	}, nil
}

// exportJSON 导出记录数组JSON
func (s *Service) exportJSON(dataset models.Dataset) (*Result, error) {
	content, err := json.MarshalIndent(dataset, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal json: %w", err)
	}
	return &Result{
		Content:     content,
		ContentType: "application/json",
		Filename:    "cleaned_data.json",
	}, nil
}
