/*
 * @module api/controllers/pipeline_test
 * @description 上传-剖析-清洗-导出全链路控制器测试
 * @architecture 测试层
 * @stateFlow 上传CSV -> 剖析查询 -> 清洗 -> 导出附件
 * @rules 每个用例使用独立会话ID，避免共享存储互相干扰
 * @dependencies testing, net/http/httptest, mime/multipart, stretchr/testify
 */

package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataviz-service/testutil"
)

// httpHelper 共享的JSON请求与断言工具
var httpHelper = testutil.NewHTTPTestHelper()

// postFile 以multipart形式提交文件到指定处理器
func postFile(t *testing.T, session, filename, content, url string, handle http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, url, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("X-Session-ID", session)
	w := httptest.NewRecorder()
	handle(w, req)
	return w
}

// uploadCSV 以multipart形式上传CSV内容
func uploadCSV(t *testing.T, session, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	return postFile(t, session, filename, content, "/api/upload", NewUploadController().Upload)
}

// decodeAPIResponse 解析统一响应结构
func decodeAPIResponse(t *testing.T, w *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var response APIResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	return response
}

// TestUploadCSVSuccess 上传成功返回预览与汇总
func TestUploadCSVSuccess(t *testing.T) {
	session := uuid.New().String()
	w := uploadCSV(t, session, "sales.csv", "Region,Sales\nEast,100\nWest,200\nEast,50\n")

	require.Equal(t, http.StatusOK, w.Code)
	response := decodeAPIResponse(t, w)
	assert.Equal(t, 0, response.Status)
	assert.Contains(t, response.Msg, "sales.csv")

	data, ok := response.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 3.0, data["rows"])

	numeric, ok := data["numeric_summary"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 350.0, numeric["Sales"])
}

// TestUploadRejectsExcel xlsx文件被拒绝
func TestUploadRejectsExcel(t *testing.T) {
	w := uploadCSV(t, uuid.New().String(), "book.xlsx", "binary")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	response := decodeAPIResponse(t, w)
	assert.Equal(t, "Unsupported file type", response.Msg)
}

// TestUploadMissingFile 缺少file字段返回400
func TestUploadMissingFile(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/upload", strings.NewReader("plain"))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	NewUploadController().Upload(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// TestRawUploadStateless 原始解析直接返回记录且不写入会话
func TestRawUploadStateless(t *testing.T) {
	session := uuid.New().String()
	w := postFile(t, session, "sales.csv", "Region,Sales\nEast,100\nWest,200\n",
		"/api/raw_upload", NewUploadController().RawUpload)

	require.Equal(t, http.StatusOK, w.Code)
	response := decodeAPIResponse(t, w)
	data := response.Data.(map[string]interface{})
	raw, ok := data["raw_data"].([]interface{})
	require.True(t, ok)
	require.Len(t, raw, 2)
	first := raw[0].(map[string]interface{})
	assert.Equal(t, "East", first["Region"])
	assert.Equal(t, 100.0, first["Sales"])

	// 会话存储不受影响
	numReq := httptest.NewRequest(http.MethodGet, "/api/numbers", nil)
	numReq.Header.Set("X-Session-ID", session)
	numW := httptest.NewRecorder()
	NewAnalysisController().Numbers(numW, numReq)
	assert.Equal(t, http.StatusBadRequest, numW.Code)
}

// TestNumbersWithoutUpload 未上传时剖析返回400
func TestNumbersWithoutUpload(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/numbers", nil)
	req.Header.Set("X-Session-ID", uuid.New().String())
	w := httptest.NewRecorder()
	NewAnalysisController().Numbers(w, req)

	httpHelper.AssertJSONResponse(t, w, http.StatusBadRequest, map[string]interface{}{
		"status": http.StatusBadRequest,
		"msg":    "No file has been uploaded yet",
	})
}

// TestCatStatsEndpoint 上传后查询类别统计
func TestCatStatsEndpoint(t *testing.T) {
	session := uuid.New().String()
	uploadCSV(t, session, "sales.csv", "Region,Sales\nEast,100\nWest,200\nEast,50\n")

	req := httptest.NewRequest(http.MethodGet, "/api/catstats?columnName=Region", nil)
	req.Header.Set("X-Session-ID", session)
	w := httptest.NewRecorder()
	NewAnalysisController().CatStats(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	response := decodeAPIResponse(t, w)
	data := response.Data.(map[string]interface{})
	counts := data["counts"].(map[string]interface{})
	assert.Equal(t, 2.0, counts["East"])
	assert.Equal(t, []interface{}{"East"}, data["mode"])
}

// TestCatStatsRejectsNumericColumn 数值列不允许类别统计
func TestCatStatsRejectsNumericColumn(t *testing.T) {
	session := uuid.New().String()
	uploadCSV(t, session, "sales.csv", "Region,Sales\nEast,100\nWest,200\n")

	req := httptest.NewRequest(http.MethodGet, "/api/catstats?columnName=Sales", nil)
	req.Header.Set("X-Session-ID", session)
	w := httptest.NewRecorder()
	NewAnalysisController().CatStats(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// TestCleaningFlow 清洗后导出CSV附件
func TestCleaningFlow(t *testing.T) {
	session := uuid.New().String()
	uploadCSV(t, session, "sales.csv", "Region,Sales\nEAST,100\nWest,\n")

	req, err := httpHelper.CreateJSONRequest(http.MethodPost, "/api/cleaning", map[string]interface{}{"task": "standardize"})
	require.NoError(t, err)
	req.Header.Set("X-Session-ID", session)
	w := httptest.NewRecorder()
	NewCleaningController().Clean(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	response := decodeAPIResponse(t, w)
	data := response.Data.(map[string]interface{})
	cleaned := data["cleaned_data"].([]interface{})
	first := cleaned[0].(map[string]interface{})
	assert.Equal(t, "east", first["Region"])

	// 导出清洗结果
	exportReq := httptest.NewRequest(http.MethodGet, "/api/export?format=csv", nil)
	exportReq.Header.Set("X-Session-ID", session)
	exportW := httptest.NewRecorder()
	NewExportController().Export(exportW, exportReq)

	require.Equal(t, http.StatusOK, exportW.Code)
	assert.Equal(t, "text/csv", exportW.Header().Get("Content-Type"))
	assert.Contains(t, exportW.Header().Get("Content-Disposition"), "cleaned_data.csv")
	assert.Contains(t, exportW.Body.String(), "east")
}

// TestCleaningUnknownTask 未知任务返回400
func TestCleaningUnknownTask(t *testing.T) {
	session := uuid.New().String()
	uploadCSV(t, session, "sales.csv", "Region,Sales\nEast,100\n")

	req, err := httpHelper.CreateJSONRequest(http.MethodPost, "/api/cleaning", map[string]interface{}{"task": "explode"})
	require.NoError(t, err)
	req.Header.Set("X-Session-ID", session)
	w := httptest.NewRecorder()
	NewCleaningController().Clean(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	response := decodeAPIResponse(t, w)
	assert.Equal(t, "Invalid cleaning task", response.Msg)
}

// TestBypassCleaning 跳过清洗直接标记
func TestBypassCleaning(t *testing.T) {
	session := uuid.New().String()
	uploadCSV(t, session, "sales.csv", "Region,Sales\nEast,100\n")

	req := httptest.NewRequest(http.MethodPost, "/api/bypass_cleaning", nil)
	req.Header.Set("X-Session-ID", session)
	w := httptest.NewRecorder()
	NewCleaningController().Bypass(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	exportReq := httptest.NewRequest(http.MethodGet, "/api/export", nil)
	exportReq.Header.Set("X-Session-ID", session)
	exportW := httptest.NewRecorder()
	NewExportController().Export(exportW, exportReq)
	assert.Equal(t, http.StatusOK, exportW.Code)
}

// TestExportWithoutCleanedData 无清洗结果时导出返回400
func TestExportWithoutCleanedData(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/export", nil)
	req.Header.Set("X-Session-ID", uuid.New().String())
	w := httptest.NewRecorder()
	NewExportController().Export(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// TestFilteredUpload 前端回传过滤结果覆盖会话数据
func TestFilteredUpload(t *testing.T) {
	session := uuid.New().String()
	req, err := httpHelper.CreateJSONRequest(http.MethodPost, "/api/filtered-upload", map[string]interface{}{
		"data_preview": []map[string]interface{}{{"Region": "East", "Sales": 10}},
	})
	require.NoError(t, err)
	req.Header.Set("X-Session-ID", session)
	w := httptest.NewRecorder()
	NewAnalysisController().FilteredUpload(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	// 剖析读到的是回传的数据
	numReq := httptest.NewRequest(http.MethodGet, "/api/numbers", nil)
	numReq.Header.Set("X-Session-ID", session)
	numW := httptest.NewRecorder()
	NewAnalysisController().Numbers(numW, numReq)
	require.Equal(t, http.StatusOK, numW.Code)
	response := decodeAPIResponse(t, numW)
	data := response.Data.(map[string]interface{})
	assert.Contains(t, fmt.Sprintf("%v", data["data_info"]), "1 rows")
}
