/*
 * @module testutil/test_helper
 * @description 测试工具和辅助函数
 * @architecture 测试基础设施 - 提供测试通用工具和数据工厂
 * @stateFlow 测试数据构造 -> 测试执行 -> 响应断言
 * @rules 提供可重用的测试工具，确保测试数据的确定性
 * @dependencies testify, net/http/httptest
 * @refs service/models
 */

package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"dataviz-service/service/models"
)

// SalesDataset 确定性销售数据集工厂
// rows行，Region在四个取值间轮转，Date按月递进，Sales为可预测的等差数值
func SalesDataset(rows int) models.Dataset {
	regions := []string{"East", "West", "North", "South"}
	dataset := make(models.Dataset, 0, rows)
	for i := 0; i < rows; i++ {
		dataset = append(dataset, models.Record{
			"Date":   fmt.Sprintf("2023-%02d-01", i%12+1),
			"Region": regions[i%len(regions)],
			"Sales":  float64((i + 1) * 10),
		})
	}
	return dataset
}

// DatasetWithNulls 带空值的数据集工厂，用于清洗测试
func DatasetWithNulls() models.Dataset {
	return models.Dataset{
		{"Region": "East", "Sales": 100.0, "Note": "ok"},
		{"Region": nil, "Sales": 200.0, "Note": ""},
		{"Region": "West", "Sales": nil, "Note": "late"},
	}
}

// HTTPTestHelper HTTP测试辅助工具
type HTTPTestHelper struct{}

// NewHTTPTestHelper 创建HTTP测试辅助工具
func NewHTTPTestHelper() *HTTPTestHelper {
	return &HTTPTestHelper{}
}

// CreateJSONRequest 创建JSON请求
func (h *HTTPTestHelper) CreateJSONRequest(method, url string, body interface{}) (*http.Request, error) {
	var reqBody io.Reader

	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return nil, err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

// AssertJSONResponse 断言JSON响应
func (h *HTTPTestHelper) AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedBody interface{}) {
	assert.Equal(t, expectedStatus, w.Code)

	if expectedBody != nil {
		var actualBody interface{}
		err := json.Unmarshal(w.Body.Bytes(), &actualBody)
		assert.NoError(t, err)

		expectedJSON, _ := json.Marshal(expectedBody)
		actualJSON, _ := json.Marshal(actualBody)

		assert.JSONEq(t, string(expectedJSON), string(actualJSON))
	}
}
