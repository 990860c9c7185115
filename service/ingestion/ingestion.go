/*
 * @module service/ingestion
 * @description 文件摄取服务，解析CSV/JSON/GeoJSON上传内容为统一记录集
 * @architecture 分层架构 - 业务服务层
 * @stateFlow 扩展名分发 -> 字符集解码 -> 解析 -> 单元格类型转换
 * @rules 扩展名决定解析器；CSV剥离BOM并容忍UTF-16；数值单元格转为float64；不支持的类型返回明确错误
 * @dependencies encoding/csv, golang.org/x/text/encoding/unicode, golang.org/x/text/transform
 * @refs service/models, service/nlp
 */

package ingestion

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"dataviz-service/service/models"
	"dataviz-service/service/nlp"
)

var (
	// ErrUnsupportedType 不支持的文件类型
	ErrUnsupportedType = errors.New("unsupported file type")
	// ErrEmptyFile 文件内容为空
	ErrEmptyFile = errors.New("file contains no data")
)

// Service 文件摄取服务
type Service struct{}

// NewService 创建摄取服务实例
func NewService() *Service {
	return &Service{}
}

// Parse 按文件扩展名解析上传内容
// xls/xlsx没有可用的解析依赖，显式拒绝
func (s *Service) Parse(filename string, r io.Reader) (models.Dataset, error) {
	switch strings.ToLower(path.Ext(filename)) {
	case ".csv":
		return s.ParseCSV(r)
	case ".json":
		return s.ParseJSON(r)
	case ".geojson":
		return s.ParseGeoJSON(r)
	case ".xls", ".xlsx":
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, filename)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, filename)
	}
}

// decodeCharset 剥离BOM并把UTF-16输入转码为UTF-8
func decodeCharset(r io.Reader) io.Reader {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	return transform.NewReader(r, decoder)
}

// coerceCell 单元格类型转换：空串转nil，数值转float64，其余保留字符串
func coerceCell(raw string) interface{} {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil
	}
	if num, err := strconv.ParseFloat(value, 64); err == nil {
		return num
	}
	return value
}

// ParseCSV 解析CSV内容，首行为列名
func (s *Service) ParseCSV(r io.Reader) (models.Dataset, error) {
	reader := csv.NewReader(decodeCharset(r))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	for i, name := range header {
		header[i] = strings.TrimSpace(name)
	}

	dataset := models.Dataset{}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		record := models.Record{}
		for i, cell := range row {
			if i >= len(header) || header[i] == "" {
				continue
			}
			record[header[i]] = coerceCell(cell)
		}
		if len(record) > 0 {
			dataset = append(dataset, record)
		}
	}
	if len(dataset) == 0 {
		return nil, ErrEmptyFile
	}
	return dataset, nil
}

// ParseJSON 解析JSON内容，支持记录数组与常见包装对象
func (s *Service) ParseJSON(r io.Reader) (models.Dataset, error) {
	raw, err := io.ReadAll(decodeCharset(r))
	if err != nil {
		return nil, fmt.Errorf("read json: %w", err)
	}
	var payload interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	dataset := nlp.ExtractDataset(payload)
	if len(dataset) == 0 {
		return nil, ErrEmptyFile
	}
	return dataset, nil
}

// geoJSONDocument GeoJSON要素集合
type geoJSONDocument struct {
	Features []geoJSONFeature `json:"features"`
}

// geoJSONFeature 单个GeoJSON要素
type geoJSONFeature struct {
	Type       string                 `json:"type"`
	Properties map[string]interface{} `json:"properties"`
	Geometry   map[string]interface{} `json:"geometry"`
}

// ParseGeoJSON 解析GeoJSON，要素按properties/geometry前缀展平为记录
func (s *Service) ParseGeoJSON(r io.Reader) (models.Dataset, error) {
	raw, err := io.ReadAll(decodeCharset(r))
	if err != nil {
		return nil, fmt.Errorf("read geojson: %w", err)
	}
	var doc geoJSONDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse geojson: %w", err)
	}
	if len(doc.Features) == 0 {
		return nil, ErrEmptyFile
	}

	dataset := models.Dataset{}
	for _, feature := range doc.Features {
		record := models.Record{}
		if feature.Type != "" {
			record["type"] = feature.Type
		}
		flattenInto(record, "properties", feature.Properties)
		flattenInto(record, "geometry", feature.Geometry)
		dataset = append(dataset, record)
	}
	return dataset, nil
}

// flattenInto 把嵌套对象按点号前缀写入记录，键按字典序保证确定性
func flattenInto(record models.Record, prefix string, value map[string]interface{}) {
	keys := make([]string, 0, len(value))
	for key := range value {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		name := prefix + "." + key
		if nested, ok := value[key].(map[string]interface{}); ok {
			flattenInto(record, name, nested)
			continue
		}
		record[name] = value[key]
	}
}
