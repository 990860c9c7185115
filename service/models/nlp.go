/*
 * @module service/models/nlp
 * @description NLP图表引擎数据模型，定义数据集记录、列描述、查询解析结果和图表规格
 * @architecture 分层架构 - 数据模型层
 * @documentReference ai_docs/nlp_chart_engine.md
 * @stateFlow 每次请求重新构建，响应组装后丢弃，不跨请求保留状态
 * @rules labels与每个数据集的data必须等长；category与time不得指向同一列
 * @dependencies 无
 * @refs service/nlp, api/controllers/nlp_chart_controller.go
 */

package models

// Record 一行数据，列名到标量值的映射
type Record map[string]interface{}

// Dataset 有序记录序列，顺序决定平级打分的决定性结果和时间排序
type Dataset []Record

// ColumnType 列的推断语义类型
type ColumnType string

const (
	// ColumnNumeric 数值列
	ColumnNumeric ColumnType = "numeric"
	// ColumnTemporal 时间列
	ColumnTemporal ColumnType = "temporal"
	// ColumnCategorical 分类列
	ColumnCategorical ColumnType = "categorical"
)

// Column 列描述信息，每次请求重新计算，不持久化
type Column struct {
	Name          string        `json:"name"`
	Type          ColumnType    `json:"type"`
	Values        []interface{} `json:"-"`
	NonNullCount  int           `json:"nonNullCount"`
	UniqueCount   int           `json:"uniqueCount"`
	NumericRatio  float64       `json:"numericRatio"`
	TemporalScore float64       `json:"temporalScore"`
}

// ChartType 图表类型
type ChartType string

const (
	ChartBar       ChartType = "Bar"
	ChartLine      ChartType = "Line"
	ChartPie       ChartType = "Pie"
	ChartDoughnut  ChartType = "Doughnut"
	ChartScatter   ChartType = "Scatter"
	ChartHistogram ChartType = "Histogram"
)

// Fields 字段角色解析结果，空字符串表示未解析
type Fields struct {
	Value          string `json:"value,omitempty"`
	SecondaryValue string `json:"secondary_value,omitempty"`
	Category       string `json:"category,omitempty"`
	Time           string `json:"time,omitempty"`
}

// Filter 过滤条件 column op value
type Filter struct {
	Column   string      `json:"column"`
	Operator string      `json:"operator"`
	Value    interface{} `json:"value"`
	Raw      string      `json:"raw"`
}

// ColumnMatch 单列的打分明细，按分值降序返回给前端
type ColumnMatch struct {
	Column  string   `json:"column"`
	Score   float64  `json:"score"`
	Reasons []string `json:"reasons"`
}

// Interpretation 查询解析结果
type Interpretation struct {
	Intent       string        `json:"intent"`
	ChartType    ChartType     `json:"chart_type"`
	Fields       Fields        `json:"fields"`
	Filters      []Filter      `json:"filters"`
	MatchDetails []ColumnMatch `json:"matchDetails"`
}

// ScatterPoint 散点图坐标点
type ScatterPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ChartDataset 单个图表数据序列
// Data为[]float64（与Labels等长）或散点图的[]ScatterPoint
type ChartDataset struct {
	Label           string      `json:"label,omitempty"`
	Data            interface{} `json:"data"`
	BackgroundColor interface{} `json:"backgroundColor,omitempty"`
	BorderColor     string      `json:"borderColor,omitempty"`
	Fill            *bool       `json:"fill,omitempty"`
	Tension         float64     `json:"tension,omitempty"`
}

// ChartMeta 图表元信息
type ChartMeta struct {
	XLabel          string `json:"xLabel"`
	YLabel          string `json:"yLabel"`
	Type            string `json:"type"`
	Legend          bool   `json:"legend"`
	TimeGranularity string `json:"timeGranularity,omitempty"`
	SortedLabels    bool   `json:"sortedLabels"`
	SeriesField     string `json:"seriesField,omitempty"`
	Limited         bool   `json:"limited,omitempty"`
	TotalCategories int    `json:"totalCategories,omitempty"`
	TopN            int    `json:"topN,omitempty"`
}

// ChartData Chart.js兼容的图表数据
type ChartData struct {
	Labels   []string       `json:"labels"`
	Datasets []ChartDataset `json:"datasets"`
	Meta     *ChartMeta     `json:"meta,omitempty"`
}

// ChartResult 构建器输出，chartType可能与解析结果不同（内部降级时回退为Bar）
type ChartResult struct {
	ChartType ChartType  `json:"chartType"`
	ChartData *ChartData `json:"chartData"`
	Meta      *ChartMeta `json:"meta"`
}
