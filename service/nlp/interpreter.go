/*
 * @module service/nlp/interpreter
 * @description 查询解释器，负责指令提取、意图识别、列打分解析、字段角色分配、图表类型决策与过滤条件解析
 * @architecture 分层架构 - 业务服务层（纯函数，无状态）
 * @stateFlow 指令提取 -> 意图识别 -> 列打分 -> 字段角色分配 -> 冲突消解 -> 图表类型决策 -> 过滤解析
 * @rules 打分优先级固定：引号精确 > 短语 > 整名词元 > 原文逐字 > 词元重叠 > 模糊 > 部分重叠；平级一律按数据集列序决胜
 * @dependencies dataviz-service/service/models
 * @refs extraction.go, chart_builder.go
 */

package nlp

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"dataviz-service/service/models"
)

// QueryFormat 推荐的查询书写格式，错误响应时返回给调用方
const QueryFormat = `Recommended natural language structure:
Chart: <Bar|Line|Pie|Doughnut|Scatter|Histogram>
Value: <numeric column to measure or the keyword COUNT>
Dimension: <category or time column to group by>
Filter: <column> <operator> <value>  (optional, repeat for more filters)

Example -> Chart: Bar; Value: Revenue; Dimension: Region; Filter: Year = 2023`

var (
	directivePattern = regexp.MustCompile(`(?i)(chart|value|dimension|filter|time|group)\s*[:=]\s*([^;\n]+)`)
	normalizePattern = regexp.MustCompile(`[^a-z0-9]+`)
	quotedPattern    = regexp.MustCompile(`"([^"]+)"|'([^']+)'`)
	filterPattern    = regexp.MustCompile(`^([^!=<>]+?)\s*(=|!=|>=|<=|>|<)\s*(.+)$`)
)

var visualKeywords = []string{
	"plot", "chart", "graph", "visualize", "visualise", "show", "display",
	"trend", "over time", "distribution", "breakdown", "compare",
}

var trendKeywords = []string{
	"over time", "trend", "timeline", "by month", "by year", "monthly", "weekly", "daily",
}

var (
	shareKeywords    = []string{"share", "percentage", "percent", "portion", "breakdown"}
	scatterKeywords  = []string{"scatter", "versus", "vs", "against"}
	groupingKeywords = []string{" by ", " per ", " versus ", " vs ", " against "}
)

// 显式图表短语，命中即强制生效
var explicitChartPhrases = []struct {
	phrase string
	chart  models.ChartType
}{
	{"bar chart", models.ChartBar},
	{"line chart", models.ChartLine},
	{"pie chart", models.ChartPie},
	{"doughnut chart", models.ChartDoughnut},
	{"scatter plot", models.ChartScatter},
	{"histogram", models.ChartHistogram},
}

// 显式单关键词到图表类型的映射，按检查顺序排列
var explicitChartKeywords = []struct {
	keyword string
	chart   models.ChartType
}{
	{"line", models.ChartLine},
	{"line chart", models.ChartLine},
	{"line graph", models.ChartLine},
	{"bar", models.ChartBar},
	{"bar chart", models.ChartBar},
	{"bar graph", models.ChartBar},
	{"column", models.ChartBar},
	{"trend", models.ChartLine},
	{"timeline", models.ChartLine},
	{"pie", models.ChartPie},
	{"doughnut", models.ChartDoughnut},
	{"donut", models.ChartDoughnut},
	{"scatter", models.ChartScatter},
	{"bubble", models.ChartScatter},
	{"histogram", models.ChartHistogram},
	{"distribution", models.ChartHistogram},
}

// detectVisualIntent 按优先级桶识别查询意图：可视化 > 过滤 > 汇总 > 闲聊
func detectVisualIntent(query string) string {
	lowered := strings.ToLower(query)
	for _, keyword := range visualKeywords {
		if strings.Contains(lowered, keyword) {
			return "visualize"
		}
	}
	if strings.Contains(lowered, "filter") || strings.Contains(lowered, "subset") {
		return "filter"
	}
	if strings.Contains(lowered, "average") || strings.Contains(lowered, "sum") || strings.Contains(lowered, "total") {
		return "summarize"
	}
	return "chat"
}

// normalizeText 小写化并把非字母数字压缩为单个空格
func normalizeText(text string) string {
	return strings.TrimSpace(normalizePattern.ReplaceAllString(strings.ToLower(text), " "))
}

// parseDirectives 提取 keyword:value / keyword=value 形式的显式指令
// 以分号或换行终止，filter可出现多次并按出现顺序累积
func parseDirectives(query string) map[string][]string {
	directives := map[string][]string{}
	for _, match := range directivePattern.FindAllStringSubmatch(query, -1) {
		key := strings.ToLower(match[1])
		directives[key] = append(directives[key], strings.TrimSpace(match[2]))
	}
	return directives
}

// verbatimPattern 构造原文逐字匹配的正则，仅在词字符边界处加\b
func verbatimPattern(name string) *regexp.Regexp {
	quoted := regexp.QuoteMeta(name)
	isWord := func(b byte) bool {
		return b == '_' || (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
	}
	prefix, suffix := "", ""
	if len(name) > 0 && isWord(name[0]) {
		prefix = `\b`
	}
	if len(name) > 0 && isWord(name[len(name)-1]) {
		suffix = `\b`
	}
	return regexp.MustCompile(`(?i)` + prefix + quoted + suffix)
}

// similarityRatio 基于编辑距离的相似度，范围[0,1]
func similarityRatio(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	return 1.0 - float64(prev[len(b)])/float64(maxLen)
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// scoreColumns 对每一列计算确定性的提及分值
// 优先级从高到低：引号精确命名 > 规范化短语命中 > 词元等于整名 > 原文逐字命中 > 共享词元 > 模糊 > 部分重叠
func scoreColumns(query string, columns []models.Column) map[string]*models.ColumnMatch {
	normalizedQuery := normalizeText(query)
	tokens := strings.Fields(normalizedQuery)

	quotedPhrases := map[string]bool{}
	for _, match := range quotedPattern.FindAllStringSubmatch(query, -1) {
		phrase := match[1]
		if phrase == "" {
			phrase = match[2]
		}
		if normalized := normalizeText(phrase); normalized != "" {
			quotedPhrases[normalized] = true
		}
	}

	details := map[string]*models.ColumnMatch{}
	for _, column := range columns {
		name := column.Name
		normalizedName := normalizeText(name)
		colTokens := strings.Fields(normalizedName)
		score := 0.0
		reasons := []string{}

		// 最高优先级：引号内精确引用列名
		if quotedPhrases[normalizedName] {
			score += 50.0
			reasons = append(reasons, "explicitly quoted in query")
		}

		// 规范化查询文本中的完整短语命中
		if normalizedName != "" && normalizedQuery != "" {
			haystack := " " + normalizedQuery + " "
			needle := " " + normalizedName + " "
			if strings.Contains(haystack, needle) {
				score += 15.0
				reasons = append(reasons, "exact column phrase mentioned")
			}
		}

		// 单个词元等于完整规范化列名
		if normalizedName != "" {
			for _, token := range tokens {
				if token == normalizedName {
					score += 12.0
					reasons = append(reasons, "exact column name mentioned")
					break
				}
			}
		}

		// 原查询字符串中的逐字命中
		if name != "" && verbatimPattern(name).MatchString(query) {
			score += 10.0
			reasons = append(reasons, "column referenced verbatim")
		}

		// 词元重叠，每个共享词元小幅加分
		directTokens := []string{}
		for _, token := range tokens {
			for _, colToken := range colTokens {
				if token == colToken {
					directTokens = append(directTokens, token)
					score += 4.0
					reasons = append(reasons, fmt.Sprintf("matched token '%s'", token))
					break
				}
			}
		}

		// 模糊匹配仅在没有任何直接词元命中时生效，且上限极低
		if len(directTokens) == 0 {
			for _, token := range tokens {
				if token == "" {
					continue
				}
				similarity := similarityRatio(token, normalizedName)
				if similarity >= 0.8 {
					score += similarity
					reasons = append(reasons, fmt.Sprintf("fuzzy matched token '%s' (%.2f)", token, similarity))
				}
			}
		}

		// 最后手段：部分子串重叠
		if len(reasons) == 0 && normalizedName != "" {
			for _, token := range tokens {
				if token != "" && strings.Contains(normalizedName, token) {
					score += 0.25
					reasons = append(reasons, "partial token overlap")
					break
				}
			}
		}

		details[name] = &models.ColumnMatch{Column: name, Score: score, Reasons: reasons}
	}
	return details
}

// resolveColumn 解析指令值指向的列：精确名 > 词元重叠比例 > 模糊比例，平级按列序决胜
func resolveColumn(label string, columns []models.Column) string {
	normalizedLabel := normalizeText(strings.Trim(label, `'"`))
	if normalizedLabel == "" {
		return ""
	}

	for _, column := range columns {
		if normalizedLabel == normalizeText(column.Name) {
			return column.Name
		}
	}

	labelTokens := strings.Fields(normalizedLabel)
	if len(labelTokens) > 0 {
		bestScore, bestName := 0.0, ""
		for _, column := range columns {
			normalizedName := normalizeText(column.Name)
			if normalizedName == "" {
				continue
			}
			nameTokens := strings.Fields(normalizedName)
			overlap := 0
			for _, token := range labelTokens {
				for _, nameToken := range nameTokens {
					if token == nameToken {
						overlap++
						break
					}
				}
			}
			if overlap > 0 {
				denom := len(labelTokens)
				if len(nameTokens) > denom {
					denom = len(nameTokens)
				}
				score := float64(overlap) / float64(denom)
				if score > bestScore {
					bestScore, bestName = score, column.Name
				}
			}
		}
		if bestName != "" {
			return bestName
		}
	}

	bestScore, bestName := 0.0, ""
	for _, column := range columns {
		normalizedName := normalizeText(column.Name)
		if normalizedName == "" {
			continue
		}
		similarity := similarityRatio(normalizedLabel, normalizedName)
		if similarity > bestScore {
			bestScore, bestName = similarity, column.Name
		}
	}
	return bestName
}

// extractDimensionFromQuery 通过分组短语(by/per/grouped by/versus/vs)提取维度列
func extractDimensionFromQuery(query string, columns []models.Column) string {
	lowered := strings.ToLower(query)
	for _, pattern := range []string{" by ", " per ", " grouped by ", " versus ", " vs "} {
		idx := strings.Index(lowered, pattern)
		if idx < 0 {
			continue
		}
		segment := lowered[idx+len(pattern):]
		tokens := strings.Fields(segment)
		if len(tokens) > 3 {
			tokens = tokens[:3]
		}
		if candidate := resolveColumn(strings.Join(tokens, " "), columns); candidate != "" {
			return candidate
		}
	}
	return ""
}

// detectExplicitChartType 识别显式图表关键词，时序语言直接归为Line
// 多词短语先于单关键词检查，短语命中后不再被同句的其他关键词覆盖
func detectExplicitChartType(query string) (models.ChartType, bool) {
	lowered := strings.ToLower(query)
	for _, entry := range explicitChartPhrases {
		if strings.Contains(lowered, entry.phrase) {
			return entry.chart, true
		}
	}
	if strings.Contains(lowered, "over time") || strings.Contains(lowered, "over-time") ||
		strings.Contains(lowered, "time series") || strings.Contains(lowered, "timeseries") {
		return models.ChartLine, true
	}
	for _, entry := range explicitChartKeywords {
		if strings.Contains(lowered, entry.keyword) {
			return entry.chart, true
		}
	}
	return "", false
}

// findMentionedColumns 找出查询中明确提到的列，按首次出现位置排序
func findMentionedColumns(query string, columns []models.Column) []string {
	type mention struct {
		position int
		name     string
	}
	mentions := []mention{}
	normalizedQuery := normalizeText(query)

	for _, column := range columns {
		name := column.Name
		normalizedName := normalizeText(name)
		position := -1

		if name != "" {
			if loc := verbatimPattern(name).FindStringIndex(query); loc != nil {
				position = loc[0]
			}
		}

		if position < 0 && normalizedName != "" && normalizedQuery != "" {
			haystack := " " + normalizedQuery + " "
			needle := " " + normalizedName + " "
			if idx := strings.Index(haystack, needle); idx >= 0 {
				position = idx
			}
		}

		if position >= 0 {
			mentions = append(mentions, mention{position, name})
		}
	}

	sort.SliceStable(mentions, func(i, j int) bool { return mentions[i].position < mentions[j].position })

	seen := map[string]bool{}
	ordered := []string{}
	for _, m := range mentions {
		if !seen[m.name] {
			seen[m.name] = true
			ordered = append(ordered, m.name)
		}
	}
	return ordered
}

// containsAny 判断文本是否包含任一关键词
func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

// chooseChartType 图表类型决策
// 优先级：显式多词短语 > 显式关键词 > 散点(双数值轴) > 时间字段→Line > 份额语言+低基数→Pie > 分类→Bar > 双数值→Scatter > 默认Bar
func chooseChartType(query string, fields models.Fields, columns []models.Column) models.ChartType {
	lowered := strings.ToLower(query)

	for _, entry := range explicitChartPhrases {
		if strings.Contains(lowered, entry.phrase) {
			return entry.chart
		}
	}
	if explicit, ok := detectExplicitChartType(query); ok {
		return explicit
	}

	hasTime := fields.Time != ""
	hasCategory := fields.Category != ""
	hasValue := fields.Value != ""
	hasSecondary := fields.SecondaryValue != ""

	if (hasSecondary || containsAny(lowered, scatterKeywords)) && hasValue && hasSecondary {
		return models.ChartScatter
	}

	if hasTime {
		return models.ChartLine
	}

	if hasCategory && containsAny(lowered, shareKeywords) {
		cardinality := -1
		for _, column := range columns {
			if column.Name == fields.Category {
				cardinality = column.UniqueCount
				break
			}
		}
		if cardinality < 0 || cardinality <= 8 {
			return models.ChartPie
		}
	}

	if hasCategory {
		return models.ChartBar
	}
	if hasValue && hasSecondary {
		return models.ChartScatter
	}
	return models.ChartBar
}

// ParseFilters 解析 "<列提示> <运算符> <值>" 形式的过滤条件，运算符按最长优先
// 值可转数值时按数值比较，否则按去引号后的文本比较
func ParseFilters(filterTexts []string, columns []models.Column) []models.Filter {
	filters := []models.Filter{}
	for _, raw := range filterTexts {
		match := filterPattern.FindStringSubmatch(strings.TrimSpace(raw))
		if match == nil {
			continue
		}
		columnName := resolveColumn(match[1], columns)
		if columnName == "" {
			continue
		}

		valueText := strings.Trim(strings.TrimSpace(match[3]), `'"`)
		var value interface{} = valueText
		if num, ok := SafeFloat(valueText); ok {
			value = num
		}

		filters = append(filters, models.Filter{
			Column:   columnName,
			Operator: match[2],
			Value:    value,
			Raw:      strings.TrimSpace(raw),
		})
	}
	return filters
}

// filterPasses 单行是否满足单个过滤条件，字段缺失或无法转换按不通过处理
func filterPasses(row models.Record, filter models.Filter) bool {
	rawValue, exists := row[filter.Column]
	if !exists || rawValue == nil {
		return false
	}

	if target, isNumber := filter.Value.(float64); isNumber {
		rowValue, ok := SafeFloat(rawValue)
		if !ok {
			return false
		}
		switch filter.Operator {
		case "=":
			return rowValue == target
		case "!=":
			return rowValue != target
		case ">":
			return rowValue > target
		case "<":
			return rowValue < target
		case ">=":
			return rowValue >= target
		case "<=":
			return rowValue <= target
		}
		return false
	}

	target := fmt.Sprintf("%v", filter.Value)
	rowValue := strings.TrimSpace(fmt.Sprintf("%v", rawValue))
	switch filter.Operator {
	case "=":
		return rowValue == target
	case "!=":
		return rowValue != target
	case ">":
		return rowValue > target
	case "<":
		return rowValue < target
	case ">=":
		return rowValue >= target
	case "<=":
		return rowValue <= target
	}
	return false
}

// ApplyFilters 以逻辑与应用全部过滤条件
func ApplyFilters(dataset models.Dataset, filters []models.Filter) models.Dataset {
	if len(filters) == 0 {
		return dataset
	}
	filtered := make(models.Dataset, 0, len(dataset))
	for _, row := range dataset {
		passes := true
		for _, filter := range filters {
			if !filterPasses(row, filter) {
				passes = false
				break
			}
		}
		if passes {
			filtered = append(filtered, row)
		}
	}
	return filtered
}

// InterpretQuery 主入口：解析自由文本查询并产出确定性的解释结果
func InterpretQuery(query string, columns []models.Column) models.Interpretation {
	directives := parseDirectives(query)
	lowered := strings.ToLower(query)
	matchDetails := scoreColumns(query, columns)
	explicitChart, hasExplicit := detectExplicitChartType(query)

	var valueField, categoryField, timeField, secondaryValue string

	columnLookup := map[string]models.Column{}
	for _, column := range columns {
		columnLookup[column.Name] = column
	}
	mentionedColumns := findMentionedColumns(query, columns)

	// 指令种子：精确 > 词元重叠 > 模糊
	if hints, ok := directives["value"]; ok {
		hint := strings.TrimSpace(hints[0])
		lowerHint := strings.ToLower(hint)
		if lowerHint != "count" && lowerHint != "records" && lowerHint != "rows" {
			valueField = resolveColumn(hint, columns)
		}
	}
	if hints, ok := directives["dimension"]; ok {
		categoryField = resolveColumn(hints[0], columns)
	} else if hints, ok := directives["group"]; ok {
		categoryField = resolveColumn(hints[0], columns)
	}
	if hints, ok := directives["time"]; ok {
		timeField = resolveColumn(hints[0], columns)
	}

	if categoryField == "" {
		categoryField = extractDimensionFromQuery(query, columns)
	}

	temporalCandidates := []string{}
	numericCandidates := []string{}
	categoricalCandidates := []string{}
	for _, column := range columns {
		switch column.Type {
		case models.ColumnTemporal:
			temporalCandidates = append(temporalCandidates, column.Name)
		case models.ColumnNumeric:
			numericCandidates = append(numericCandidates, column.Name)
		default:
			categoricalCandidates = append(categoricalCandidates, column.Name)
		}
	}

	rankedTemporal := make([]string, len(columns))
	for i, column := range columns {
		rankedTemporal[i] = column.Name
	}
	sort.SliceStable(rankedTemporal, func(i, j int) bool {
		return columnLookup[rankedTemporal[i]].TemporalScore > columnLookup[rankedTemporal[j]].TemporalScore
	})

	// 指定类型候选中的最佳匹配：优先文本顺序中显式提及的列，其次按分值，平级按列序
	bestMatch := func(candidates []string, minScore float64) string {
		for _, mentioned := range mentionedColumns {
			for _, candidate := range candidates {
				if mentioned == candidate {
					score := 0.0
					if detail, ok := matchDetails[mentioned]; ok {
						score = detail.Score
					}
					if score >= minScore || minScore == 0.0 {
						return mentioned
					}
				}
			}
		}
		bestName, bestScore := "", minScore
		for _, candidate := range candidates {
			score := 0.0
			if detail, ok := matchDetails[candidate]; ok {
				score = detail.Score
			}
			if score > bestScore {
				bestName, bestScore = candidate, score
			}
		}
		return bestName
	}

	// 显式提及的列按出现顺序填充第一个空缺的同类型槽位
	for _, name := range mentionedColumns {
		switch columnLookup[name].Type {
		case models.ColumnTemporal:
			if timeField == "" {
				timeField = name
			}
		case models.ColumnNumeric:
			if valueField == "" {
				valueField = name
			}
		case models.ColumnCategorical:
			if categoryField == "" {
				categoryField = name
			}
		}
	}

	// 剩余空槽按最高分候选填充，唯一候选直接采用
	if valueField == "" {
		valueField = bestMatch(numericCandidates, 0.1)
		if valueField == "" && len(numericCandidates) == 1 {
			valueField = numericCandidates[0]
		}
	}
	if categoryField == "" {
		categoryField = bestMatch(categoricalCandidates, 0.1)
		if categoryField == "" && len(categoricalCandidates) == 1 {
			categoryField = categoricalCandidates[0]
		}
	}

	mentionsTime := containsAny(lowered, trendKeywords)

	if timeField == "" {
		timeField = bestMatch(temporalCandidates, 0.1)
		if timeField == "" && mentionsTime && len(temporalCandidates) > 0 {
			timeField = temporalCandidates[0]
		}
	}

	// 显式要求时序但时间字段仍未解析：回退到temporalScore最高的列，末选把维度转为时间
	explicitLineRequested := (hasExplicit && explicitChart == models.ChartLine) ||
		strings.Contains(lowered, "over time") || strings.Contains(lowered, "over-time") ||
		strings.Contains(lowered, "time series") || strings.Contains(lowered, "timeseries")
	if explicitLineRequested && timeField == "" {
		for _, name := range rankedTemporal {
			if name != "" && name != valueField && columnLookup[name].TemporalScore > 0 {
				timeField = name
				break
			}
		}
		if timeField == "" && len(rankedTemporal) > 0 {
			timeField = rankedTemporal[0]
		}
		if timeField == "" && categoryField != "" {
			timeField = categoryField
			categoryField = ""
		}
	}

	// 时序语言且未显式要求分组时清除维度，避免双重分组
	if mentionsTime && timeField != "" {
		_, hasDimensionDirective := directives["dimension"]
		if !hasDimensionDirective && !containsAny(lowered, groupingKeywords) {
			categoryField = ""
		}
	}

	// 冲突消解：category≠time，value≠time
	if categoryField != "" && categoryField == timeField {
		categoryField = ""
	}
	if timeField != "" && valueField == timeField {
		valueField = ""
		for _, name := range numericCandidates {
			if name != timeField {
				valueField = name
				break
			}
		}
	}

	// 散点语言：取分值最高的两个数值列作为双轴
	if containsAny(lowered, scatterKeywords) {
		ranked := []string{}
		for _, name := range numericCandidates {
			if detail, ok := matchDetails[name]; ok && detail.Score > 0 {
				ranked = append(ranked, name)
			}
		}
		sort.SliceStable(ranked, func(i, j int) bool {
			return matchDetails[ranked[i]].Score > matchDetails[ranked[j]].Score
		})
		pickSecondary := func(candidates []string) {
			if secondaryValue != "" && secondaryValue != valueField {
				return
			}
			for _, name := range candidates {
				if name != valueField && name != timeField {
					secondaryValue = name
					return
				}
			}
		}
		if len(ranked) >= 2 {
			if valueField == "" {
				valueField = ranked[0]
			}
			pickSecondary(ranked)
		} else if len(numericCandidates) >= 2 {
			if valueField == "" {
				valueField = numericCandidates[0]
			}
			pickSecondary(numericCandidates)
		}
	}

	if secondaryValue == valueField || (timeField != "" && secondaryValue == timeField) {
		secondaryValue = ""
	}

	fields := models.Fields{
		Value:          valueField,
		SecondaryValue: secondaryValue,
		Category:       categoryField,
		Time:           timeField,
	}

	chartType := chooseChartType(query, fields, columns)
	if hasExplicit {
		chartType = explicitChart
	}

	// 基数约束对显式请求同样生效：类目过多的饼图退化为Bar
	if chartType == models.ChartPie || chartType == models.ChartDoughnut {
		if categoryField != "" && columnLookup[categoryField].UniqueCount > 8 {
			chartType = models.ChartBar
		}
	}

	filters := ParseFilters(directives["filter"], columns)

	// 打分明细按分值降序输出，平级保持列序
	sortedDetails := make([]models.ColumnMatch, 0, len(columns))
	for _, column := range columns {
		if detail, ok := matchDetails[column.Name]; ok {
			sortedDetails = append(sortedDetails, *detail)
		}
	}
	sort.SliceStable(sortedDetails, func(i, j int) bool {
		return sortedDetails[i].Score > sortedDetails[j].Score
	})

	return models.Interpretation{
		Intent:       detectVisualIntent(query),
		ChartType:    chartType,
		Fields:       fields,
		Filters:      filters,
		MatchDetails: sortedDetails,
	}
}
