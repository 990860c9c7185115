/*
 * @module service/nlp/chart_builder
 * @description 图表数据构建器，负责过滤应用、多分支聚合和Chart.js兼容输出的组装
 * @architecture 分层架构 - 业务服务层（纯函数，无状态）
 * @stateFlow 过滤应用 -> 分支聚合 -> 标签排序 -> 元信息组装
 * @rules labels与每个序列的data必须等长；时间标签必须按时间顺序排列；日粒度超过60桶自动粗化为月
 * @dependencies dataviz-service/service/models
 * @refs temporal.go, interpreter.go
 */

package nlp

import (
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"sort"
	"strings"

	"dataviz-service/service/models"
)

// 固定配色盘，按标签哈希确定性取色
var colorPalette = []string{
	"#4e79a7", "#f28e2b", "#e15759", "#76b7b2", "#59a14f",
	"#edc949", "#af7aa1", "#ff9da7", "#9c755f", "#bab0ab",
}

// 聚合结果的类目上限
const topCategoryLimit = 10

// 日粒度桶数上限，超过后自动粗化为月
const maxDateBuckets = 60

var (
	// ErrNoResolvableFields 没有任何字段组合能构成图表
	ErrNoResolvableFields = errors.New("no resolvable fields for chart construction")
	// ErrNoDataPoints 过滤和类型转换后没有剩余数据点
	ErrNoDataPoints = errors.New("no usable data points after filtering")
)

// paletteColor 按标签FNV哈希在配色盘内确定性取色
func paletteColor(label string) string {
	h := fnv.New32a()
	h.Write([]byte(label))
	return colorPalette[int(h.Sum32())%len(colorPalette)]
}

// BuildChart 将过滤后的数据集按解析结果聚合为图表数据
// 先应用全部过滤条件（逻辑与），再按最终图表类型分支聚合
func BuildChart(dataset models.Dataset, interpretation models.Interpretation) (*models.ChartResult, error) {
	filtered := ApplyFilters(dataset, interpretation.Filters)
	fields := interpretation.Fields
	chartType := interpretation.ChartType

	switch {
	case chartType == models.ChartScatter && fields.Value != "" && fields.SecondaryValue != "":
		return buildScatter(filtered, fields)

	case (chartType == models.ChartPie || chartType == models.ChartDoughnut) && fields.Category != "":
		return buildCategorical(filtered, chartType, fields)

	case fields.Time != "" && chartType != models.ChartScatter && chartType != models.ChartHistogram:
		return buildTimeSeries(filtered, chartType, fields)

	case chartType == models.ChartHistogram && fields.Value != "":
		return buildHistogram(filtered, fields)

	case fields.Category != "":
		// 所需字段在冲突消解后缺失时确定性回退为Bar聚合
		return buildCategorical(filtered, models.ChartBar, fields)

	case fields.Value != "" && fields.SecondaryValue != "":
		return buildScatter(filtered, fields)
	}

	return nil, ErrNoResolvableFields
}

// yAxisLabel 聚合方式感知的Y轴标签
func yAxisLabel(fields models.Fields) string {
	if fields.Value != "" {
		return "Sum of " + fields.Value
	}
	return "Count of records"
}

// rowMetric 取行的聚合贡献值：有数值字段时转换取值，否则计数
func rowMetric(row models.Record, valueField string) (float64, bool) {
	if valueField == "" {
		return 1.0, true
	}
	return SafeFloat(row[valueField])
}

// buildScatter 散点图：双数值轴坐标点，转换失败的行丢弃
func buildScatter(dataset models.Dataset, fields models.Fields) (*models.ChartResult, error) {
	points := []models.ScatterPoint{}
	for _, row := range dataset {
		x, okX := SafeFloat(row[fields.Value])
		y, okY := SafeFloat(row[fields.SecondaryValue])
		if okX && okY {
			points = append(points, models.ScatterPoint{X: x, Y: y})
		}
	}
	if len(points) == 0 {
		return nil, ErrNoDataPoints
	}

	meta := &models.ChartMeta{
		XLabel:       fields.Value,
		YLabel:       fields.SecondaryValue,
		Type:         string(models.ChartScatter),
		Legend:       false,
		SortedLabels: false,
	}
	data := &models.ChartData{
		Labels: []string{},
		Datasets: []models.ChartDataset{{
			Label:           fmt.Sprintf("%s vs %s", fields.SecondaryValue, fields.Value),
			Data:            points,
			BackgroundColor: paletteColor(fields.Value + "_" + fields.SecondaryValue),
		}},
		Meta: meta,
	}
	return &models.ChartResult{ChartType: models.ChartScatter, ChartData: data, Meta: meta}, nil
}

// timeBucketEntry 单个时间桶的聚合状态
type timeBucketEntry struct {
	label string
	key   int64
	total float64
}

// buildTimeSeries 时序聚合：按推断粒度分桶并按时间排序
// 有维度字段时输出按总量取前10类目的多序列；日粒度超过60桶自动粗化为月
func buildTimeSeries(dataset models.Dataset, chartType models.ChartType, fields models.Fields) (*models.ChartResult, error) {
	timeValues := make([]interface{}, 0, len(dataset))
	for _, row := range dataset {
		timeValues = append(timeValues, row[fields.Time])
	}
	granularity := inferGranularity(timeValues)
	if granularity == GranularityNone {
		granularity = GranularityDate
	}

	buckets, series := aggregateByTime(dataset, fields, granularity)
	if len(buckets) == 0 {
		return nil, ErrNoDataPoints
	}

	// 日粒度桶数过多时粗化为月重新聚合
	if granularity == GranularityDate && len(buckets) > maxDateBuckets {
		granularity = GranularityMonth
		buckets, series = aggregateByTime(dataset, fields, granularity)
	}

	ordered := make([]timeBucketEntry, 0, len(buckets))
	for _, entry := range buckets {
		ordered = append(ordered, *entry)
	}
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].key < ordered[j].key })

	labels := make([]string, len(ordered))
	for i, entry := range ordered {
		labels[i] = entry.label
	}

	renderType := models.ChartLine
	if chartType == models.ChartBar {
		renderType = models.ChartBar
	}

	meta := &models.ChartMeta{
		XLabel:          fields.Time,
		YLabel:          yAxisLabel(fields),
		Type:            string(renderType),
		TimeGranularity: string(granularity),
		SortedLabels:    true,
	}

	datasets := []models.ChartDataset{}
	if fields.Category != "" && len(series) > 0 {
		topSeries := topSeriesNames(series)
		for _, name := range topSeries {
			data := make([]float64, len(ordered))
			for i, entry := range ordered {
				data[i] = series[name].totals[entry.label]
			}
			datasets = append(datasets, makeSeriesDataset(name, data, renderType))
		}
		meta.Legend = len(datasets) > 1
		meta.SeriesField = fields.Category
	} else {
		data := make([]float64, len(ordered))
		for i, entry := range ordered {
			data[i] = entry.total
		}
		datasets = append(datasets, makeSeriesDataset(meta.YLabel, data, renderType))
		meta.Legend = false
	}

	chartData := &models.ChartData{Labels: labels, Datasets: datasets, Meta: meta}
	return &models.ChartResult{ChartType: renderType, ChartData: chartData, Meta: meta}, nil
}

// makeSeriesDataset 按渲染类型设置序列样式
func makeSeriesDataset(label string, data []float64, renderType models.ChartType) models.ChartDataset {
	if renderType == models.ChartBar {
		return models.ChartDataset{
			Label:           label,
			Data:            data,
			BackgroundColor: paletteColor(label),
		}
	}
	fill := false
	return models.ChartDataset{
		Label:       label,
		Data:        data,
		BorderColor: paletteColor(label),
		Fill:        &fill,
		Tension:     0.3,
	}
}

// categorySeries 单个类目序列的聚合状态
type categorySeries struct {
	firstSeen int
	total     float64
	totals    map[string]float64
}

// aggregateByTime 把数据集按时间桶聚合，返回总体桶与每类目分桶
func aggregateByTime(dataset models.Dataset, fields models.Fields, granularity Granularity) (map[string]*timeBucketEntry, map[string]*categorySeries) {
	buckets := map[string]*timeBucketEntry{}
	series := map[string]*categorySeries{}

	for _, row := range dataset {
		label, key, ok := timeBucket(row[fields.Time], granularity)
		if !ok {
			continue
		}
		metric, ok := rowMetric(row, fields.Value)
		if !ok {
			continue
		}

		entry, exists := buckets[label]
		if !exists {
			entry = &timeBucketEntry{label: label, key: key}
			buckets[label] = entry
		}
		entry.total += metric

		if fields.Category != "" {
			category := strings.TrimSpace(fmt.Sprintf("%v", row[fields.Category]))
			if category == "" || category == "<nil>" {
				continue
			}
			group, exists := series[category]
			if !exists {
				group = &categorySeries{firstSeen: len(series), totals: map[string]float64{}}
				series[category] = group
			}
			group.total += metric
			group.totals[label] += metric
		}
	}

	return buckets, series
}

// topSeriesNames 按总量取前N个类目，总量相同按首次出现顺序决胜
func topSeriesNames(series map[string]*categorySeries) []string {
	names := make([]string, 0, len(series))
	for name := range series {
		names = append(names, name)
	}
	sort.SliceStable(names, func(i, j int) bool {
		a, b := series[names[i]], series[names[j]]
		if math.Abs(a.total) != math.Abs(b.total) {
			return math.Abs(a.total) > math.Abs(b.total)
		}
		return a.firstSeen < b.firstSeen
	})
	if len(names) > topCategoryLimit {
		names = names[:topCategoryLimit]
	}
	return names
}

// buildCategorical 分类聚合：求和或计数，按聚合值取前10，不设"其他"桶
func buildCategorical(dataset models.Dataset, chartType models.ChartType, fields models.Fields) (*models.ChartResult, error) {
	type categoryEntry struct {
		name      string
		firstSeen int
		total     float64
	}
	totals := map[string]*categoryEntry{}

	for _, row := range dataset {
		category := strings.TrimSpace(fmt.Sprintf("%v", row[fields.Category]))
		if category == "" || category == "<nil>" {
			continue
		}
		metric, ok := rowMetric(row, fields.Value)
		if !ok {
			continue
		}
		entry, exists := totals[category]
		if !exists {
			entry = &categoryEntry{name: category, firstSeen: len(totals)}
			totals[category] = entry
		}
		entry.total += metric
	}
	if len(totals) == 0 {
		return nil, ErrNoDataPoints
	}

	ordered := make([]*categoryEntry, 0, len(totals))
	for _, entry := range totals {
		ordered = append(ordered, entry)
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].total != ordered[j].total {
			return ordered[i].total > ordered[j].total
		}
		return ordered[i].firstSeen < ordered[j].firstSeen
	})

	totalCategories := len(ordered)
	limited := totalCategories > topCategoryLimit
	if limited {
		ordered = ordered[:topCategoryLimit]
	}

	labels := make([]string, len(ordered))
	data := make([]float64, len(ordered))
	colors := make([]string, len(ordered))
	for i, entry := range ordered {
		labels[i] = entry.name
		data[i] = entry.total
		colors[i] = paletteColor(entry.name)
	}

	isPie := chartType == models.ChartPie || chartType == models.ChartDoughnut
	meta := &models.ChartMeta{
		XLabel:          fields.Category,
		YLabel:          yAxisLabel(fields),
		Type:            string(chartType),
		Legend:          isPie,
		SortedLabels:    false,
		Limited:         limited,
		TotalCategories: totalCategories,
		TopN:            topCategoryLimit,
	}

	dataset0 := models.ChartDataset{Data: data, BackgroundColor: colors}
	if !isPie {
		dataset0.Label = meta.YLabel
	}

	chartData := &models.ChartData{Labels: labels, Datasets: []models.ChartDataset{dataset0}, Meta: meta}
	return &models.ChartResult{ChartType: chartType, ChartData: chartData, Meta: meta}, nil
}

// buildHistogram 直方图：bin数量为clamp(round(√N),3,10)的等宽分箱
func buildHistogram(dataset models.Dataset, fields models.Fields) (*models.ChartResult, error) {
	values := []float64{}
	for _, row := range dataset {
		if num, ok := SafeFloat(row[fields.Value]); ok {
			values = append(values, num)
		}
	}
	if len(values) == 0 {
		return nil, ErrNoDataPoints
	}
	sort.Float64s(values)

	vmin, vmax := values[0], values[len(values)-1]

	binCount := int(math.Round(math.Sqrt(float64(len(values)))))
	if binCount < 3 {
		binCount = 3
	}
	if binCount > 10 {
		binCount = 10
	}

	var labels []string
	var counts []float64

	if vmin == vmax {
		labels = []string{formatBinEdge(vmin)}
		counts = []float64{float64(len(values))}
	} else {
		width := (vmax - vmin) / float64(binCount)
		counts = make([]float64, binCount)
		labels = make([]string, binCount)
		for _, v := range values {
			idx := int((v - vmin) / width)
			if idx >= binCount {
				idx = binCount - 1
			}
			counts[idx]++
		}
		for i := 0; i < binCount; i++ {
			lo := vmin + float64(i)*width
			hi := vmin + float64(i+1)*width
			labels[i] = fmt.Sprintf("%s–%s", formatBinEdge(lo), formatBinEdge(hi))
		}
	}

	meta := &models.ChartMeta{
		XLabel:       fields.Value + " (binned)",
		YLabel:       "Frequency",
		Type:         string(models.ChartHistogram),
		Legend:       false,
		SortedLabels: true,
	}
	chartData := &models.ChartData{
		Labels: labels,
		Datasets: []models.ChartDataset{{
			Label:           "Frequency of " + fields.Value,
			Data:            counts,
			BackgroundColor: paletteColor(fields.Value),
		}},
		Meta: meta,
	}
	return &models.ChartResult{ChartType: models.ChartHistogram, ChartData: chartData, Meta: meta}, nil
}

// formatBinEdge 分箱边界保留两位小数，整数值不带小数
func formatBinEdge(v float64) string {
	rounded := math.Round(v*100) / 100
	if rounded == math.Trunc(rounded) {
		return fmt.Sprintf("%d", int64(rounded))
	}
	return fmt.Sprintf("%.2f", rounded)
}
