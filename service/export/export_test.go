/*
 * @module service/export/export_test
 * @description 数据导出服务单元测试
 * @architecture 测试层
 * @stateFlow 构造数据集 -> 导出 -> 断言内容与元信息
 * @rules 覆盖CSV列顺序与空值、JSON往返、格式拒绝
 * @dependencies testing, stretchr/testify
 */

package export

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataviz-service/service/models"
)

// TestExportCSV 列顺序确定，空值导出为空单元格
func TestExportCSV(t *testing.T) {
	svc := NewService()
	dataset := models.Dataset{
		{"Region": "East", "Sales": 100.0},
		{"Region": "West", "Sales": nil, "Note": "late"},
	}

	result, err := svc.Export(dataset, "csv")
	require.NoError(t, err)

	assert.Equal(t, "text/csv", result.ContentType)
	assert.Equal(t, "cleaned_data.csv", result.Filename)
	// Note列在第二行首次出现，排在已有列之后
	assert.Equal(t, "Region,Sales,Note\nEast,100,\nWest,,late\n", string(result.Content))
}

// TestExportJSON JSON导出可往返解析
func TestExportJSON(t *testing.T) {
	svc := NewService()
	dataset := models.Dataset{{"a": 1.0, "b": "x"}}

	result, err := svc.Export(dataset, "json")
	require.NoError(t, err)
	assert.Equal(t, "application/json", result.ContentType)

	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal(result.Content, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "x", decoded[0]["b"])
}

// TestExportDefaultFormat 缺省格式为CSV
func TestExportDefaultFormat(t *testing.T) {
	svc := NewService()
	result, err := svc.Export(models.Dataset{{"a": 1.0}}, "")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
}

// TestExportUnsupportedFormat pdf/excel等格式被拒绝
func TestExportUnsupportedFormat(t *testing.T) {
	svc := NewService()
	for _, format := range []string{"pdf", "excel", "xml"} {
		_, err := svc.Export(models.Dataset{{"a": 1.0}}, format)
		assert.ErrorIs(t, err, ErrUnsupportedFormat, format)
	}
}

// TestExportEmptyDataset 空数据集报错
func TestExportEmptyDataset(t *testing.T) {
	svc := NewService()
	_, err := svc.Export(models.Dataset{}, "csv")
	assert.ErrorIs(t, err, ErrNothingToExport)
}
