package domain

import (
	"fmt"
	"time"
)

const fileNameTimestampLayout = "20060102_150405"

type SummaryResult struct {
	ID            string    `json:"id"`
	Text          string    `json:"text"`
	InputType     string    `json:"inputType"`
	ModelID       ModelID   `json:"modelId"`
	Source        string    `json:"source"`
	DocumentCount int       `json:"documentCount"`
	ChunkCount    int       `json:"chunkCount"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (r *SummaryResult) Analytics() Analytics {
	return AnalyzeSummary(r.Text)
}

func (r *SummaryResult) FileName() string {
	return SummaryFileName(r.InputType, ModelConfig{ID: r.ModelID}, r.CreatedAt)
}

// SummaryFileName builds {inputType}_{modelId}_{timestamp}.txt with slashes in
// the model id replaced by underscores.
func SummaryFileName(inputType string, model ModelConfig, at time.Time) string {
	return fmt.Sprintf("%s_%s_%s.txt", inputType, model.FileSafeID(), at.Format(fileNameTimestampLayout))
}
