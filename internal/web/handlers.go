package web

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"docsummarizer/internal/domain"
	"docsummarizer/internal/service"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

type summaryResponse struct {
	*domain.SummaryResult

	Analytics domain.Analytics `json:"analytics"`
	FileName  string           `json:"fileName"`
}

func toSummaryResponse(res *domain.SummaryResult) summaryResponse {
	return summaryResponse{
		SummaryResult: res,
		Analytics:     res.Analytics(),
		FileName:      res.FileName(),
	}
}

func (s *Server) index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Models":       s.svc.Models(),
		"DefaultModel": s.svc.DefaultModel(),
	})
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) listModels(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"default": s.svc.DefaultModel(),
		"models":  s.svc.Models(),
	})
}

func (s *Server) createSummary(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUploadBytes+multipartOverhead)

	src, err := s.sourceFromForm(c)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	res, err := s.svc.Summarize(c.Request.Context(), service.Request{
		Source: src,
		Model:  domain.ModelID(strings.TrimSpace(c.PostForm("model"))),
	})
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, toSummaryResponse(res))
}

func (s *Server) sourceFromForm(c *gin.Context) (domain.Source, error) {
	kind, err := domain.ParseSourceKind(c.PostForm("method"))
	if err != nil {
		return domain.Source{}, formError(err)
	}

	if kind == domain.SourcePDF {
		header, err := c.FormFile("file")
		if err != nil {
			return domain.Source{}, formError(fmt.Errorf("read file field: %w", err))
		}

		data, err := s.readUpload(header)
		if err != nil {
			return domain.Source{}, err
		}

		return domain.NewPDFSource(header.Filename, data), nil
	}

	rawURL := strings.TrimSpace(c.PostForm("url"))
	if rawURL == "" {
		return domain.Source{}, fmt.Errorf("%w: url is required", errBadRequest)
	}

	switch kind {
	case domain.SourceYouTube:
		return domain.NewYouTubeSource(rawURL), nil
	case domain.SourceFeed:
		return domain.NewFeedSource(rawURL), nil
	default:
		return domain.NewWebsiteSource(rawURL), nil
	}
}

func (s *Server) readUpload(header *multipart.FileHeader) ([]byte, error) {
	if header.Size > s.maxUploadBytes {
		return nil, &http.MaxBytesError{Limit: s.maxUploadBytes}
	}

	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, s.maxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxUploadBytes {
		return nil, &http.MaxBytesError{Limit: s.maxUploadBytes}
	}

	return data, nil
}

func formError(err error) error {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return err
	}

	return fmt.Errorf("%w: %w", errBadRequest, err)
}

func (s *Server) listSummaries(c *gin.Context) {
	limit := getQueryInt(c, "limit", defaultHistoryLimit)
	limit = min(max(limit, 1), maxHistoryLimit)

	summaries, err := s.svc.History(c.Request.Context(), limit)
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	items := make([]summaryResponse, 0, len(summaries))
	for i := range summaries {
		items = append(items, toSummaryResponse(&summaries[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"limit": limit,
	})
}

func (s *Server) getSummary(c *gin.Context) {
	res, err := s.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, toSummaryResponse(res))
}

func (s *Server) downloadSummary(c *gin.Context) {
	res, err := s.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.abortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.FileName()))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(res.Text))
}

func getQueryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}

	return v
}
