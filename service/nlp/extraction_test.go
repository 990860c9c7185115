/*
 * @module service/nlp/extraction_test
 * @description 数据集规范化与列分析单元测试
 * @architecture 测试层
 * @stateFlow 构造载荷 -> 规范化 -> 列分析 -> 断言
 * @rules 覆盖包装键优先级、对象套对象、类型推断阈值等关键行为
 * @dependencies testing, stretchr/testify
 */

package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataviz-service/service/models"
)

// ===================== 数据集规范化测试 =====================

// TestExtractDatasetNil 空载荷返回空数据集
func TestExtractDatasetNil(t *testing.T) {
	assert.Empty(t, ExtractDataset(nil))
}

// TestExtractDatasetRecordList 记录数组直接接受
func TestExtractDatasetRecordList(t *testing.T) {
	payload := []interface{}{
		map[string]interface{}{"a": 1.0},
		map[string]interface{}{"a": 2.0},
	}
	dataset := ExtractDataset(payload)
	require.Len(t, dataset, 2)
	assert.Equal(t, 1.0, dataset[0]["a"])
}

// TestExtractDatasetMixedList 含非记录元素的数组整体拒绝
func TestExtractDatasetMixedList(t *testing.T) {
	payload := []interface{}{
		map[string]interface{}{"a": 1.0},
		"not a record",
	}
	assert.Empty(t, ExtractDataset(payload))
}

// TestExtractDatasetJSONString JSON字符串先解析再递归
func TestExtractDatasetJSONString(t *testing.T) {
	dataset := ExtractDataset(`[{"Region":"East","Sales":"100"}]`)
	require.Len(t, dataset, 1)
	assert.Equal(t, "East", dataset[0]["Region"])

	assert.Empty(t, ExtractDataset("not json at all"))
}

// TestExtractDatasetWrapperPriority 包装键按优先级取第一个非空结果
func TestExtractDatasetWrapperPriority(t *testing.T) {
	payload := map[string]interface{}{
		"data": []interface{}{map[string]interface{}{"from": "data"}},
		"data_preview": []interface{}{
			map[string]interface{}{"from": "preview"},
		},
	}
	dataset := ExtractDataset(payload)
	require.Len(t, dataset, 1)
	assert.Equal(t, "preview", dataset[0]["from"])
}

// TestExtractDatasetWrapperEmptyFallthrough 高优先级键为空时继续尝试后续键
func TestExtractDatasetWrapperEmptyFallthrough(t *testing.T) {
	payload := map[string]interface{}{
		"data_preview": []interface{}{},
		"rows":         []interface{}{map[string]interface{}{"ok": true}},
	}
	dataset := ExtractDataset(payload)
	require.Len(t, dataset, 1)
	assert.Equal(t, true, dataset[0]["ok"])
}

// TestExtractDatasetNestedJSONString 包装键的值本身可以是JSON字符串
func TestExtractDatasetNestedJSONString(t *testing.T) {
	payload := map[string]interface{}{
		"data_preview": `[{"Region":"West"}]`,
	}
	dataset := ExtractDataset(payload)
	require.Len(t, dataset, 1)
	assert.Equal(t, "West", dataset[0]["Region"])
}

// TestExtractDatasetMapOfRecords 对象套对象按键序取值
func TestExtractDatasetMapOfRecords(t *testing.T) {
	payload := map[string]interface{}{
		"r2": map[string]interface{}{"id": 2.0},
		"r1": map[string]interface{}{"id": 1.0},
	}
	dataset := ExtractDataset(payload)
	require.Len(t, dataset, 2)
	assert.Equal(t, 1.0, dataset[0]["id"])
	assert.Equal(t, 2.0, dataset[1]["id"])
}

// TestExtractDatasetUnknownShape 无法识别的结构返回空
func TestExtractDatasetUnknownShape(t *testing.T) {
	assert.Empty(t, ExtractDataset(42))
	assert.Empty(t, ExtractDataset(map[string]interface{}{"a": "scalar"}))
}

// ===================== 数值转换测试 =====================

// TestSafeFloat 千位分隔符、货币符号与无效文本
func TestSafeFloat(t *testing.T) {
	cases := []struct {
		input    interface{}
		expected float64
		ok       bool
	}{
		{"$10.50", 10.50, true},
		{"1,234", 1234, true},
		{"-3.5", -3.5, true},
		{" 42 ", 42, true},
		{"abc", 0, false},
		{"", 0, false},
		{nil, 0, false},
		{12.5, 12.5, true},
		{7, 7, true},
	}
	for _, tc := range cases {
		num, ok := SafeFloat(tc.input)
		assert.Equal(t, tc.ok, ok, "input=%v", tc.input)
		if tc.ok {
			assert.Equal(t, tc.expected, num, "input=%v", tc.input)
		}
	}
}

// ===================== 列分析测试 =====================

// TestAnalyseColumnsTypes 时间列、数值列与分类列的推断
func TestAnalyseColumnsTypes(t *testing.T) {
	dataset := models.Dataset{
		{"order_date": "2023-01-05", "price": "$10.50", "region": "East"},
		{"order_date": "2023-02-01", "price": "$20", "region": "West"},
	}
	columns := AnalyseColumns(dataset)
	require.Len(t, columns, 3)

	byName := map[string]models.Column{}
	for _, col := range columns {
		byName[col.Name] = col
	}

	assert.Equal(t, models.ColumnTemporal, byName["order_date"].Type)
	assert.GreaterOrEqual(t, byName["order_date"].TemporalScore, 0.6)

	assert.Equal(t, models.ColumnNumeric, byName["price"].Type)
	assert.GreaterOrEqual(t, byName["price"].NumericRatio, 0.6)

	assert.Equal(t, models.ColumnCategorical, byName["region"].Type)
}

// TestAnalyseColumnsYearColumn 年份样数值列优先归为时间列
func TestAnalyseColumnsYearColumn(t *testing.T) {
	dataset := models.Dataset{}
	for i := 0; i < 10; i++ {
		dataset = append(dataset, models.Record{"year": 2015 + float64(i)})
	}
	columns := AnalyseColumns(dataset)
	require.Len(t, columns, 1)
	assert.Equal(t, models.ColumnTemporal, columns[0].Type)
}

// TestAnalyseColumnsCounts 非空计数与唯一值计数
func TestAnalyseColumnsCounts(t *testing.T) {
	dataset := models.Dataset{
		{"city": "Paris"},
		{"city": "Paris"},
		{"city": ""},
		{"city": nil},
		{"city": "Lyon"},
	}
	columns := AnalyseColumns(dataset)
	require.Len(t, columns, 1)
	assert.Equal(t, 3, columns[0].NonNullCount)
	assert.Equal(t, 2, columns[0].UniqueCount)
}

// TestAnalyseColumnsHeterogeneousKeys 键集合不一致时取并集
func TestAnalyseColumnsHeterogeneousKeys(t *testing.T) {
	dataset := models.Dataset{
		{"a": 1.0},
		{"b": "x"},
	}
	columns := AnalyseColumns(dataset)
	require.Len(t, columns, 2)
	assert.Equal(t, "a", columns[0].Name)
	assert.Equal(t, "b", columns[1].Name)
}

// TestAnalyseColumnsEmpty 空数据集没有列
func TestAnalyseColumnsEmpty(t *testing.T) {
	assert.Nil(t, AnalyseColumns(nil))
}
