package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// --- Response types (дублируются из api/dto.go, CLI не импортирует internal/api) ---

// JobResponse — training job из API.
type JobResponse struct {
	ID                string             `json:"id"`
	ModelID           string             `json:"model_id"`
	Status            string             `json:"status"`
	Progress          int                `json:"progress"`
	CurrentEpoch      int                `json:"current_epoch"`
	TotalEpochs       int                `json:"total_epochs"`
	DataPointIDs      []string           `json:"data_point_ids,omitempty"`
	Config            map[string]any     `json:"config,omitempty"`
	TrainingMetrics   map[string]float64 `json:"training_metrics,omitempty"`
	ValidationMetrics map[string]float64 `json:"validation_metrics,omitempty"`
	ResultVersionID   string             `json:"result_version_id,omitempty"`
	Error             string             `json:"error,omitempty"`
	CreatedBy         string             `json:"created_by,omitempty"`
	StartedAt         string             `json:"started_at,omitempty"`
	FinishedAt        string             `json:"finished_at,omitempty"`
	CreatedAt         string             `json:"created_at"`
}

// DataPointResponse — data point из API.
type DataPointResponse struct {
	ID        string         `json:"id"`
	ModelID   string         `json:"model_id"`
	Label     string         `json:"label,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
	CreatedAt string         `json:"created_at"`
}

// ModelResponse — запись registry из API.
type ModelResponse struct {
	ModelID   string `json:"model_id"`
	Name      string `json:"name"`
	ModelType string `json:"model_type"`
	Framework string `json:"framework"`
	CreatedBy string `json:"created_by,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// ModelVersionResponse — версия модели из API.
type ModelVersionResponse struct {
	ID           string             `json:"id"`
	ModelID      string             `json:"model_id"`
	Version      int                `json:"version"`
	ArtifactPath string             `json:"artifact_path"`
	Metrics      map[string]float64 `json:"metrics,omitempty"`
	CreatedAt    string             `json:"created_at"`
}

// PipelineStatusResponse — снимок очереди pipeline'а.
type PipelineStatusResponse struct {
	QueueLength   int      `json:"queue_length"`
	RunningCount  int      `json:"running_count"`
	MaxConcurrent int      `json:"max_concurrent"`
	Queue         []string `json:"queue"`
	Running       []string `json:"running"`
}

// --- Request types ---

// CreateJobRequest — создание training job.
type CreateJobRequest struct {
	ModelID      string         `json:"model_id"`
	DataQuery    map[string]any `json:"data_query,omitempty"`
	DataPointIDs []string       `json:"data_point_ids,omitempty"`
	Config       map[string]any `json:"config,omitempty"`
	TotalEpochs  int            `json:"total_epochs,omitempty"`
	CreatedBy    string         `json:"created_by,omitempty"`
}

// ReportProgressRequest — отчёт о прогрессе обучения.
type ReportProgressRequest struct {
	Progress     int                `json:"progress"`
	CurrentEpoch int                `json:"current_epoch"`
	TotalEpochs  int                `json:"total_epochs"`
	Metrics      map[string]float64 `json:"metrics,omitempty"`
}

// CompleteJobRequest — финальный отчёт обучения.
type CompleteJobRequest struct {
	Success           bool               `json:"success"`
	Error             string             `json:"error,omitempty"`
	TrainingMetrics   map[string]float64 `json:"training_metrics,omitempty"`
	ValidationMetrics map[string]float64 `json:"validation_metrics,omitempty"`
	ArtifactPath      string             `json:"artifact_path,omitempty"`
}

// CreateDataPointRequest — добавление data point.
type CreateDataPointRequest struct {
	ModelID string         `json:"model_id"`
	Label   string         `json:"label,omitempty"`
	Payload map[string]any `json:"payload,omitempty"`
}

// ListJobsOpts — параметры фильтрации jobs.
type ListJobsOpts struct {
	ModelID string
	Status  string
	Limit   int
}

// ListDataOpts — параметры выборки data points.
type ListDataOpts struct {
	ModelID string
	Labels  []string
	Limit   int
}

// --- API response wrappers ---

type dataResponse struct {
	Data json.RawMessage `json:"data"`
}

type listResponse struct {
	Data  json.RawMessage `json:"data"`
	Total int             `json:"total"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// --- Client ---

// Client — HTTP-клиент для Modelka API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент для API.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// --- Jobs ---

// ListJobs возвращает список jobs с фильтрацией.
func (c *Client) ListJobs(opts ListJobsOpts) ([]JobResponse, error) {
	params := url.Values{}
	if opts.ModelID != "" {
		params.Set("model_id", opts.ModelID)
	}
	if opts.Status != "" {
		params.Set("status", opts.Status)
	}
	if opts.Limit > 0 {
		params.Set("limit", fmt.Sprintf("%d", opts.Limit))
	}

	var jobs []JobResponse
	err := c.list("/api/v1/jobs", params, &jobs)
	return jobs, err
}

// CreateJob создаёт новый training job.
func (c *Client) CreateJob(req CreateJobRequest) (*JobResponse, error) {
	var job JobResponse
	err := c.post("/api/v1/jobs", req, &job)
	return &job, err
}

// GetJob возвращает job по ID.
func (c *Client) GetJob(id string) (*JobResponse, error) {
	var job JobResponse
	err := c.get("/api/v1/jobs/"+id, &job)
	return &job, err
}

// SubmitJob отправляет job в очередь pipeline'а.
func (c *Client) SubmitJob(id string) (*JobResponse, error) {
	var job JobResponse
	err := c.post("/api/v1/jobs/"+id+"/submit", nil, &job)
	return &job, err
}

// CancelJob отменяет job.
func (c *Client) CancelJob(id string) (*JobResponse, error) {
	var job JobResponse
	err := c.post("/api/v1/jobs/"+id+"/cancel", nil, &job)
	return &job, err
}

// ReportProgress отправляет отчёт о прогрессе обучения.
func (c *Client) ReportProgress(id string, req ReportProgressRequest) (*JobResponse, error) {
	var job JobResponse
	err := c.post("/api/v1/jobs/"+id+"/progress", req, &job)
	return &job, err
}

// CompleteJob отправляет финальный отчёт обучения.
func (c *Client) CompleteJob(id string, req CompleteJobRequest) (*JobResponse, error) {
	var job JobResponse
	err := c.post("/api/v1/jobs/"+id+"/complete", req, &job)
	return &job, err
}

// --- Data ---

// CreateDataPoint добавляет data point.
func (c *Client) CreateDataPoint(req CreateDataPointRequest) (*DataPointResponse, error) {
	var dp DataPointResponse
	err := c.post("/api/v1/data", req, &dp)
	return &dp, err
}

// ListData возвращает data points по фильтру.
func (c *Client) ListData(opts ListDataOpts) ([]DataPointResponse, error) {
	params := url.Values{}
	if opts.ModelID != "" {
		params.Set("model_id", opts.ModelID)
	}
	for _, label := range opts.Labels {
		params.Add("label", label)
	}
	if opts.Limit > 0 {
		params.Set("limit", fmt.Sprintf("%d", opts.Limit))
	}

	var points []DataPointResponse
	err := c.list("/api/v1/data", params, &points)
	return points, err
}

// --- Models ---

// GetModel возвращает запись registry по model ID.
func (c *Client) GetModel(modelID string) (*ModelResponse, error) {
	var model ModelResponse
	err := c.get("/api/v1/models/"+modelID, &model)
	return &model, err
}

// GetModelVersion возвращает версию модели.
func (c *Client) GetModelVersion(modelID, versionID string) (*ModelVersionResponse, error) {
	var version ModelVersionResponse
	err := c.get("/api/v1/models/"+modelID+"/versions/"+versionID, &version)
	return &version, err
}

// --- Pipeline ---

// PipelineStatus возвращает снимок очереди pipeline'а.
func (c *Client) PipelineStatus() (*PipelineStatusResponse, error) {
	var status PipelineStatusResponse
	err := c.get("/api/v1/pipeline/status", &status)
	return &status, err
}

// --- HTTP helpers ---

func (c *Client) get(path string, result any) error {
	return c.doData(http.MethodGet, path, nil, result)
}

func (c *Client) post(path string, body any, result any) error {
	return c.doData(http.MethodPost, path, body, result)
}

func (c *Client) list(path string, params url.Values, result any) error {
	if len(params) > 0 {
		path = path + "?" + params.Encode()
	}

	resp, err := c.do(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	var lr listResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return json.Unmarshal(lr.Data, result)
}

func (c *Client) doData(method, path string, body any, result any) error {
	resp, err := c.do(method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return err
	}

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var dr dataResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if result != nil {
		return json.Unmarshal(dr.Data, result)
	}
	return nil
}

func (c *Client) do(method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}

func (c *Client) checkError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	var er errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return fmt.Errorf("API error: HTTP %d", resp.StatusCode)
	}

	return fmt.Errorf("%s: %s", er.Error.Code, er.Error.Message)
}
