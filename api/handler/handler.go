package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"deces-backend/api/response"
	"deces-backend/logic/csvio"
	"deces-backend/service"
	"deces-backend/types"
)

// Searcher 单条检索和纯打分
type Searcher interface {
	Search(ctx context.Context, req types.SearchRequest) (*types.SearchResponse, error)
	Score(ctx context.Context, req types.ScoreRequest) ([]types.Person, error)
	Index(ctx context.Context, persons []types.Person) ([]string, error)
}

// BulkRunner 批量匹配任务
type BulkRunner interface {
	Submit(ctx context.Context, data []byte, opts types.BulkOptions) (string, *types.JobStatus, error)
	Result(ctx context.Context, key string) (*types.BulkResult, *types.JobStatus, error)
	Cancel(ctx context.Context, key string) (*types.JobStatus, error)
}

type PersonHandler struct {
	searchSvc Searcher
	bulkSvc   BulkRunner
}

func NewPersonHandler(searchSvc Searcher, bulkSvc BulkRunner) *PersonHandler {
	return &PersonHandler{
		searchSvc: searchSvc,
		bulkSvc:   bulkSvc,
	}
}

// fail 按错误类型给 HTTP 状态码
func fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrInvalidQuery),
		errors.Is(err, service.ErrEmptyQuery),
		errors.Is(err, service.ErrEmptyFile),
		errors.Is(err, service.ErrInvalidKey):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrJobNotFound):
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		log.Printf(">>> [API] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	response.Fail(c, status, err.Error())
}

func (h *PersonHandler) Healthcheck(c *gin.Context) {
	response.Success(c, gin.H{"status": "ok"})
}

// SearchGet GET /search，条件放在 query string
func (h *PersonHandler) SearchGet(c *gin.Context) {
	var req types.SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "参数错误: "+err.Error())
		return
	}
	h.search(c, req)
}

// SearchPost POST /search，JSON 请求体
func (h *PersonHandler) SearchPost(c *gin.Context) {
	var req types.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "参数错误: "+err.Error())
		return
	}
	h.search(c, req)
}

func (h *PersonHandler) search(c *gin.Context, req types.SearchRequest) {
	result, err := h.searchSvc.Search(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, result)
}

// Score POST /score，调用方自带候选
func (h *PersonHandler) Score(c *gin.Context) {
	var req types.ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "参数错误: "+err.Error())
		return
	}
	persons, err := h.searchSvc.Score(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{"persons": persons})
}

// Records POST /records 批量写入记录
func (h *PersonHandler) Records(c *gin.Context) {
	var persons []types.Person
	if err := c.ShouldBindJSON(&persons); err != nil {
		response.Fail(c, http.StatusBadRequest, "参数错误: "+err.Error())
		return
	}
	ids, err := h.searchSvc.Index(c.Request.Context(), persons)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, gin.H{
		"ids":         ids,
		"total_count": len(ids),
	})
}

// SearchCSV POST /search/csv 上传文件，返回 key
func (h *PersonHandler) SearchCSV(c *gin.Context) {
	// 1. 获取文件
	file, err := c.FormFile("csv")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "未接收到文件，请检查参数名是否为 'csv'")
		return
	}
	src, err := file.Open()
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "文件读取失败")
		return
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "文件读取失败")
		return
	}

	// 2. 参数
	opts, err := bulkOptions(c)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "参数错误: "+err.Error())
		return
	}

	// 3. 提交任务
	key, status, err := h.bulkSvc.Submit(c.Request.Context(), data, opts)
	if err != nil {
		fail(c, err)
		return
	}
	log.Printf(">>> [API] bulk file %s (%d bytes) accepted, %d rows", file.Filename, file.Size, status.Rows)
	response.Success(c, gin.H{
		"id":     key,
		"status": status.Status,
		"rows":   status.Rows,
	})
}

// bulkOptions 表单里的批量参数；映射字段与查询字段同名
func bulkOptions(c *gin.Context) (types.BulkOptions, error) {
	opts := types.BulkOptions{
		Sep:     c.PostForm("sep"),
		Mapping: map[string]string{},
	}
	opts.DateFormat = c.PostForm("dateFormat")

	ints := []struct {
		field string
		dst   *int
	}{
		{"chunkSize", &opts.ChunkSize},
		{"size", &opts.Size},
		{"candidateNumber", &opts.CandidateNumber},
	}
	for _, f := range ints {
		v := c.PostForm(f.field)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, fmt.Errorf("invalid %s: %s", f.field, v)
		}
		*f.dst = n
	}
	if v := c.PostForm("pruneScore"); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, fmt.Errorf("invalid pruneScore: %s", v)
		}
		opts.PruneScore = &p
	}

	for _, field := range types.BulkFields {
		if col := c.PostForm(field); col != "" {
			opts.Mapping[field] = col
		}
	}
	return opts, nil
}

// Result GET /search/:format/:id，未完成时返回当前状态
func (h *PersonHandler) Result(c *gin.Context) {
	format := c.Param("format")
	if format != "csv" && format != "json" {
		response.Fail(c, http.StatusBadRequest, "unsupported format: "+format)
		return
	}

	result, status, err := h.bulkSvc.Result(c.Request.Context(), c.Param("id"))
	if errors.Is(err, service.ErrJobNotReady) {
		response.Success(c, status)
		return
	}
	if err != nil {
		fail(c, err)
		return
	}

	if format == "json" {
		response.Success(c, result)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="matchid.csv"`)
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Status(http.StatusOK)
	if err := csvio.WriteResults(c.Writer, result.Sep, result.Header, result.Records); err != nil {
		log.Printf(">>> [API] write csv: %v", err)
	}
}

// Cancel DELETE /search/:format/:id
func (h *PersonHandler) Cancel(c *gin.Context) {
	status, err := h.bulkSvc.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, status)
}
