/*
 * @module api/controllers/upload_controller
 * @description 文件上传控制器，解析上传文件并写入会话存储
 * @architecture MVC架构 - 控制器层
 * @stateFlow 接收multipart文件 -> 摄取解析 -> 写入存储 -> 返回预览与汇总
 * @rules 缺少文件或类型不支持返回400；解析成功后覆盖会话内旧数据
 * @dependencies dataviz-service/service, github.com/go-chi/render
 * @refs service/ingestion, service/datastore
 */

package controllers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/render"

	"dataviz-service/service"
	"dataviz-service/service/datastore"
	"dataviz-service/service/ingestion"
	"dataviz-service/service/models"
	"dataviz-service/service/monitoring"
	"dataviz-service/service/nlp"
)

// 上传请求体大小上限
const maxUploadBytes = 64 << 20

// 预览行数
const previewRows = 5

// sessionID 从请求头解析会话ID，缺省落到默认会话
func sessionID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-Session-ID"))
}

// UploadController 文件上传控制器
type UploadController struct{}

// NewUploadController 创建文件上传控制器实例
func NewUploadController() *UploadController {
	return &UploadController{}
}

// UploadResult 上传结果
type UploadResult struct {
	DatasetID          string                    `json:"dataset_id"`
	DataPreview        models.Dataset            `json:"data_preview"`
	NumericSummary     map[string]float64        `json:"numeric_summary"`
	CategoricalSummary map[string]map[string]int `json:"categorical_summary"`
	Rows               int                       `json:"rows"`
}

// RawUploadResult 原始解析结果
type RawUploadResult struct {
	RawData models.Dataset `json:"raw_data"`
}

// Upload 上传数据文件
// @Summary 上传数据文件
// @Description 解析CSV/JSON/GeoJSON文件并写入当前会话，返回前5行预览与列汇总
// @Tags 数据上传
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "数据文件"
// @Success 200 {object} APIResponse{data=UploadResult}
// @Failure 400 {object} APIResponse
// @Failure 500 {object} APIResponse
// @Router /api/upload [post]
func (c *UploadController) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, BadRequestResponse("No file part", nil))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, BadRequestResponse("No file part", nil))
		return
	}
	defer file.Close()

	if header.Filename == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, BadRequestResponse("No selected file", nil))
		return
	}
	format := strings.TrimPrefix(strings.ToLower(path.Ext(header.Filename)), ".")

	dataset, err := service.GlobalIngestionService.Parse(header.Filename, file)
	if err != nil {
		monitoring.UploadsTotal.WithLabelValues(format, "failed").Inc()
		if errors.Is(err, ingestion.ErrUnsupportedType) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, BadRequestResponse("Unsupported file type", nil))
			return
		}
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse(fmt.Sprintf("Failed to process the file: %s", err), nil))
		return
	}

	sid := sessionID(r)
	if sid == "" {
		sid = datastore.DefaultSession
	}
	service.GlobalStore.SetUploaded(sid, dataset)
	monitoring.UploadsTotal.WithLabelValues(format, "ok").Inc()
	monitoring.UploadRows.Observe(float64(len(dataset)))
	log.Printf("[DEBUG] 文件上传成功 %s, %d 行", header.Filename, len(dataset))

	columns := nlp.AnalyseColumns(dataset)
	preview := dataset
	if len(preview) > previewRows {
		preview = preview[:previewRows]
	}

	render.JSON(w, r, SuccessResponse(
		fmt.Sprintf("File '%s' uploaded successfully!", header.Filename),
		UploadResult{
			DatasetID:          sid,
			DataPreview:        preview,
			NumericSummary:     service.GlobalAnalysisService.NumericSummary(columns),
			CategoricalSummary: service.GlobalAnalysisService.CategoricalSummary(columns),
			Rows:               len(dataset),
		},
	))
}

// RawUpload 解析文件并直接返回记录，不写入会话存储
// @Summary 原始文件解析
// @Description 解析CSV/JSON/GeoJSON文件并原样返回记录，无状态，不影响当前会话数据
// @Tags 数据上传
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "数据文件"
// @Success 200 {object} APIResponse{data=RawUploadResult}
// @Failure 400 {object} APIResponse
// @Failure 500 {object} APIResponse
// @Router /api/raw_upload [post]
func (c *UploadController) RawUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, BadRequestResponse("No file part", nil))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, BadRequestResponse("No file part", nil))
		return
	}
	defer file.Close()

	if header.Filename == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, BadRequestResponse("No selected file", nil))
		return
	}

	dataset, err := service.GlobalIngestionService.Parse(header.Filename, file)
	if err != nil {
		if errors.Is(err, ingestion.ErrUnsupportedType) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, BadRequestResponse("Unsupported file type", nil))
			return
		}
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, ErrorResponse(fmt.Sprintf("Failed to parse raw data: %s", err), nil))
		return
	}

	render.JSON(w, r, SuccessResponse("Raw data parsed", RawUploadResult{RawData: dataset}))
}
