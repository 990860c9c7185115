/*
 * @module service/nlp/chart_builder_test
 * @description 图表数据构建器单元测试
 * @architecture 测试层
 * @stateFlow 构造数据集 -> 聚合构建 -> 断言标签、序列与元信息
 * @rules 覆盖标签数据等长不变量、top-N截断、日粒度粗化、直方图分箱与失败路径
 * @dependencies testing, stretchr/testify
 */

package nlp

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataviz-service/service/models"
)

// requireParallel 校验labels与每个序列的data等长
func requireParallel(t *testing.T, data *models.ChartData) {
	t.Helper()
	for _, ds := range data.Datasets {
		if values, ok := ds.Data.([]float64); ok {
			require.Len(t, values, len(data.Labels))
		}
	}
}

// ===================== 分类聚合测试 =====================

// TestBuildBarByCategory 分类求和与配色
func TestBuildBarByCategory(t *testing.T) {
	dataset := models.Dataset{
		{"Region": "East", "Sales": 100.0},
		{"Region": "West", "Sales": 250.0},
		{"Region": "East", "Sales": 50.0},
	}
	interp := models.Interpretation{
		ChartType: models.ChartBar,
		Fields:    models.Fields{Value: "Sales", Category: "Region"},
	}

	result, err := BuildChart(dataset, interp)
	require.NoError(t, err)
	requireParallel(t, result.ChartData)

	assert.Equal(t, models.ChartBar, result.ChartType)
	assert.Equal(t, []string{"West", "East"}, result.ChartData.Labels)
	assert.Equal(t, []float64{250, 150}, result.ChartData.Datasets[0].Data)
	assert.False(t, result.Meta.Legend)
}

// TestBuildBarCountWithoutValue 无数值字段时按行计数
func TestBuildBarCountWithoutValue(t *testing.T) {
	dataset := models.Dataset{
		{"Region": "East"}, {"Region": "East"}, {"Region": "West"},
	}
	interp := models.Interpretation{
		ChartType: models.ChartBar,
		Fields:    models.Fields{Category: "Region"},
	}

	result, err := BuildChart(dataset, interp)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 1}, result.ChartData.Datasets[0].Data)
	assert.Equal(t, "Count of records", result.Meta.YLabel)
}

// TestBuildPieTopN 类目超过10个时截断且不设"其他"桶
func TestBuildPieTopN(t *testing.T) {
	dataset := models.Dataset{}
	for i := 0; i < 14; i++ {
		dataset = append(dataset, models.Record{
			"Region":  fmt.Sprintf("R%02d", i),
			"Revenue": float64((i + 1) * 10),
		})
	}
	interp := models.Interpretation{
		ChartType: models.ChartPie,
		Fields:    models.Fields{Value: "Revenue", Category: "Region"},
	}

	result, err := BuildChart(dataset, interp)
	require.NoError(t, err)
	requireParallel(t, result.ChartData)

	assert.Len(t, result.ChartData.Labels, 10)
	assert.Equal(t, "R13", result.ChartData.Labels[0], "按聚合值降序")
	assert.True(t, result.Meta.Legend)
	assert.True(t, result.Meta.Limited)
	assert.Equal(t, 14, result.Meta.TotalCategories)
}

// ===================== 过滤测试 =====================

// TestBuildChartAppliesFilters 过滤先于聚合
func TestBuildChartAppliesFilters(t *testing.T) {
	dataset := models.Dataset{}
	for i := 0; i < 100; i++ {
		year := 2022.0
		if i < 40 {
			year = 2023.0
		}
		dataset = append(dataset, models.Record{"Year": year, "Region": "East"})
	}
	interp := models.Interpretation{
		ChartType: models.ChartBar,
		Fields:    models.Fields{Category: "Region"},
		Filters:   []models.Filter{{Column: "Year", Operator: "=", Value: 2023.0}},
	}

	result, err := BuildChart(dataset, interp)
	require.NoError(t, err)
	assert.Equal(t, []float64{40}, result.ChartData.Datasets[0].Data)
}

// ===================== 时序聚合测试 =====================

// TestBuildLineChronological 时序标签按时间排序
func TestBuildLineChronological(t *testing.T) {
	dataset := models.Dataset{
		{"Date": "2023-03-01", "Sales": 30.0},
		{"Date": "2023-01-01", "Sales": 10.0},
		{"Date": "2023-02-01", "Sales": 20.0},
		{"Date": "2023-01-01", "Sales": 5.0},
	}
	interp := models.Interpretation{
		ChartType: models.ChartLine,
		Fields:    models.Fields{Value: "Sales", Time: "Date"},
	}

	result, err := BuildChart(dataset, interp)
	require.NoError(t, err)
	requireParallel(t, result.ChartData)

	assert.Equal(t, []string{"2023-01-01", "2023-02-01", "2023-03-01"}, result.ChartData.Labels)
	assert.Equal(t, []float64{15, 20, 30}, result.ChartData.Datasets[0].Data)
	assert.True(t, result.Meta.SortedLabels)
	assert.Equal(t, "date", result.Meta.TimeGranularity)
	assert.False(t, result.Meta.Legend)
}

// TestBuildLineAutoCoarsen 日粒度超过60桶自动粗化为月
func TestBuildLineAutoCoarsen(t *testing.T) {
	dataset := models.Dataset{}
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 90; i++ {
		dataset = append(dataset, models.Record{
			"Date":  start.AddDate(0, 0, i).Format("2006-01-02"),
			"Sales": 1.0,
		})
	}
	interp := models.Interpretation{
		ChartType: models.ChartLine,
		Fields:    models.Fields{Value: "Sales", Time: "Date"},
	}

	result, err := BuildChart(dataset, interp)
	require.NoError(t, err)

	assert.Equal(t, "month", result.Meta.TimeGranularity)
	assert.Equal(t, []string{"2023-01", "2023-02", "2023-03"}, result.ChartData.Labels)
	assert.Equal(t, []float64{31, 28, 31}, result.ChartData.Datasets[0].Data)
}

// TestBuildLineMultiSeries 维度字段产生多序列并按总量取前10
func TestBuildLineMultiSeries(t *testing.T) {
	dataset := models.Dataset{}
	for month := 1; month <= 3; month++ {
		for i := 0; i < 12; i++ {
			dataset = append(dataset, models.Record{
				"Date":   fmt.Sprintf("2023-%02d-01", month),
				"Region": fmt.Sprintf("R%02d", i),
				"Sales":  float64((i + 1) * 10),
			})
		}
	}
	interp := models.Interpretation{
		ChartType: models.ChartLine,
		Fields:    models.Fields{Value: "Sales", Category: "Region", Time: "Date"},
	}

	result, err := BuildChart(dataset, interp)
	require.NoError(t, err)
	requireParallel(t, result.ChartData)

	assert.Len(t, result.ChartData.Datasets, 10, "序列数量以总量前10为上限")
	assert.Equal(t, "R11", result.ChartData.Datasets[0].Label)
	assert.True(t, result.Meta.Legend)
	assert.Equal(t, "Region", result.Meta.SeriesField)
}

// TestBuildBarOverTime Bar与时间字段组合仍按时间聚合渲染为Bar
func TestBuildBarOverTime(t *testing.T) {
	dataset := models.Dataset{
		{"Date": "2022", "Sales": 10.0},
		{"Date": "2023", "Sales": 20.0},
	}
	interp := models.Interpretation{
		ChartType: models.ChartBar,
		Fields:    models.Fields{Value: "Sales", Time: "Date"},
	}

	result, err := BuildChart(dataset, interp)
	require.NoError(t, err)
	assert.Equal(t, models.ChartBar, result.ChartType)
	assert.Equal(t, []string{"2022", "2023"}, result.ChartData.Labels)
	assert.Equal(t, "year", result.Meta.TimeGranularity)
}

// ===================== 散点图测试 =====================

// TestBuildScatterDropsUnparseable 双轴均可转数值的行才产生坐标点
func TestBuildScatterDropsUnparseable(t *testing.T) {
	dataset := models.Dataset{
		{"Sales": 10.0, "Cost": 4.0},
		{"Sales": "n/a", "Cost": 5.0},
		{"Sales": 20.0, "Cost": nil},
		{"Sales": "30", "Cost": "12"},
	}
	interp := models.Interpretation{
		ChartType: models.ChartScatter,
		Fields:    models.Fields{Value: "Sales", SecondaryValue: "Cost"},
	}

	result, err := BuildChart(dataset, interp)
	require.NoError(t, err)

	points := result.ChartData.Datasets[0].Data.([]models.ScatterPoint)
	require.Len(t, points, 2)
	assert.Equal(t, models.ScatterPoint{X: 10, Y: 4}, points[0])
	assert.False(t, result.Meta.Legend)
}

// TestBuildScatterEmptyFails 没有可用坐标点时报错
func TestBuildScatterEmptyFails(t *testing.T) {
	dataset := models.Dataset{{"Sales": "n/a", "Cost": "n/a"}}
	interp := models.Interpretation{
		ChartType: models.ChartScatter,
		Fields:    models.Fields{Value: "Sales", SecondaryValue: "Cost"},
	}
	_, err := BuildChart(dataset, interp)
	assert.ErrorIs(t, err, ErrNoDataPoints)
}

// ===================== 直方图测试 =====================

// TestBuildHistogramBinning bin数量在[3,10]内且频次总和等于可转换值数
func TestBuildHistogramBinning(t *testing.T) {
	dataset := models.Dataset{}
	for i := 0; i < 1000; i++ {
		dataset = append(dataset, models.Record{"Price": float64(i % 97)})
	}
	interp := models.Interpretation{
		ChartType: models.ChartHistogram,
		Fields:    models.Fields{Value: "Price"},
	}

	result, err := BuildChart(dataset, interp)
	require.NoError(t, err)
	requireParallel(t, result.ChartData)

	bins := result.ChartData.Datasets[0].Data.([]float64)
	assert.GreaterOrEqual(t, len(bins), 3)
	assert.LessOrEqual(t, len(bins), 10)

	total := 0.0
	for _, count := range bins {
		total += count
	}
	assert.Equal(t, 1000.0, total)
}

// TestBuildHistogramSingleValue min==max时只有一个bin
func TestBuildHistogramSingleValue(t *testing.T) {
	dataset := models.Dataset{
		{"Price": 5.0}, {"Price": 5.0}, {"Price": "5"},
	}
	interp := models.Interpretation{
		ChartType: models.ChartHistogram,
		Fields:    models.Fields{Value: "Price"},
	}

	result, err := BuildChart(dataset, interp)
	require.NoError(t, err)
	assert.Equal(t, []string{"5"}, result.ChartData.Labels)
	assert.Equal(t, []float64{3}, result.ChartData.Datasets[0].Data)
}

// TestBuildHistogramSmallN 少量样本时bin数量下限为3
func TestBuildHistogramSmallN(t *testing.T) {
	dataset := models.Dataset{
		{"Price": 1.0}, {"Price": 2.0}, {"Price": 9.0},
	}
	interp := models.Interpretation{
		ChartType: models.ChartHistogram,
		Fields:    models.Fields{Value: "Price"},
	}

	result, err := BuildChart(dataset, interp)
	require.NoError(t, err)
	assert.Len(t, result.ChartData.Labels, 3)
}

// ===================== 失败路径测试 =====================

// TestBuildChartNoFields 无可用字段组合时返回类型化错误
func TestBuildChartNoFields(t *testing.T) {
	dataset := models.Dataset{{"a": 1.0}}
	interp := models.Interpretation{ChartType: models.ChartBar}

	_, err := BuildChart(dataset, interp)
	assert.ErrorIs(t, err, ErrNoResolvableFields)
}

// TestBuildChartDeterminism 相同输入产生相同输出
func TestBuildChartDeterminism(t *testing.T) {
	dataset := models.Dataset{
		{"Region": "East", "Sales": 100.0},
		{"Region": "West", "Sales": 100.0},
		{"Region": "North", "Sales": 100.0},
	}
	interp := models.Interpretation{
		ChartType: models.ChartBar,
		Fields:    models.Fields{Value: "Sales", Category: "Region"},
	}

	first, err := BuildChart(dataset, interp)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := BuildChart(dataset, interp)
		require.NoError(t, err)
		assert.Equal(t, first, again)
		assert.Equal(t, []string{"East", "West", "North"}, again.ChartData.Labels, "总量相同按首次出现顺序")
	}
}
