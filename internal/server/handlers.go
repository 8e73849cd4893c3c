package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"strings"

	"github.com/sozercan/research-ai-mole/apimodels"
	"github.com/sozercan/research-ai-mole/internal/agents"
	"github.com/sozercan/research-ai-mole/internal/dataset"
)

const (
	maxMultipartMemory = 10 << 20
	previewRowLimit    = 5
)

func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	infos := make([]apimodels.AgentInfo, 0, len(agents.Choices()))
	for _, c := range agents.Choices() {
		desc := c.Descriptor()
		infos = append(infos, apimodels.AgentInfo{
			ID:              c.ID(),
			Name:            desc.Name,
			Role:            desc.Role,
			Tools:           desc.Tools,
			RequiresDataset: c == agents.DataAnalyst,
		})
	}
	writeJSON(w, http.StatusOK, infos)
}

func (s *Server) handleSampleCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", dataset.SampleFilename))
	_, _ = w.Write([]byte(dataset.SampleCSV))
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	file, header, err := s.formFile(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Error processing CSV file: %v", err), "")
		return
	}
	defer file.Close()

	path, err := s.store.Save(header.Filename, file)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Error processing CSV file: %v", err), "")
		return
	}

	table, err := s.loadSaved(path)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Error processing CSV file: %v", err), "")
		return
	}
	if msg, ok := validateTable(table); !ok {
		writeError(w, http.StatusBadRequest, msg, "")
		return
	}

	preview := table.Rows
	if len(preview) > previewRowLimit {
		preview = preview[:previewRowLimit]
	}

	writeJSON(w, http.StatusOK, apimodels.UploadResponse{
		Message:     fmt.Sprintf("Successfully uploaded CSV with %d rows and %d columns", table.NumRows(), table.NumCols()),
		Path:        path,
		Rows:        table.NumRows(),
		Columns:     table.NumCols(),
		ColumnNames: table.ColumnNames(),
		Preview:     preview,
	})
}

func (s *Server) handleResearch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err), "")
		return
	}

	choice, err := agents.ParseChoice(r.FormValue("agent"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "")
		return
	}

	topic := strings.TrimSpace(r.FormValue("topic"))
	if topic == "" {
		writeError(w, http.StatusBadRequest, "Please enter a topic first.", "")
		return
	}

	input := topic
	if choice == agents.DataAnalyst {
		table, msg := s.loadUploadedTable(r)
		if msg != "" {
			writeError(w, http.StatusBadRequest, msg, "")
			return
		}
		input = analysisInput(table, topic)
	}

	slog.Debug("dispatching research request", "agent", choice.ID(), "topic", topic)

	result, err := s.dispatcher.Run(r.Context(), choice, input)
	if err != nil {
		slog.Error("research dispatch failed", "agent", choice.ID(), "error", err)
		writeError(w, http.StatusBadGateway, fmt.Sprintf("Error: %v", err), agents.Hint(err))
		return
	}

	if result.Content == "" {
		writeError(w, http.StatusBadGateway, "No content returned from the agent.", "")
		return
	}

	writeJSON(w, http.StatusOK, apimodels.ResearchResponse{
		Result: result.Content,
		Metadata: apimodels.ResearchMetadata{
			Duration:   result.Metadata.Duration.String(),
			Model:      result.Metadata.Model,
			TokensUsed: result.Metadata.TokensUsed,
			Steps:      result.Metadata.Steps,
		},
	})
}

// loadUploadedTable saves and parses the uploaded dataset. A non-empty second
// return is the message to show the user instead of running the agent.
func (s *Server) loadUploadedTable(r *http.Request) (*dataset.Table, string) {
	file, header, err := s.formFile(r)
	if err != nil {
		return nil, "Please upload a CSV file first for data analysis."
	}
	defer file.Close()

	path, err := s.store.Save(header.Filename, file)
	if err != nil {
		return nil, fmt.Sprintf("Error processing CSV file: %v", err)
	}

	table, err := s.loadSaved(path)
	if err != nil {
		return nil, fmt.Sprintf("Error processing CSV file: %v", err)
	}
	if msg, ok := validateTable(table); !ok {
		return nil, msg
	}
	return table, ""
}

// analysisInput builds the enhanced prompt for the Data Analyst from the
// dataset digest and the user's topic.
func analysisInput(table *dataset.Table, topic string) string {
	return fmt.Sprintf(
		"%s\n\nPlease provide a comprehensive analysis of this data focusing on the user's request: %s",
		dataset.Summarize(table, topic), topic,
	)
}

func (s *Server) formFile(r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return nil, nil, err
	}
	return r.FormFile("dataset")
}

func (s *Server) loadSaved(path string) (*dataset.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return dataset.Load(f)
}

// validateTable enforces the upstream rejection of empty datasets before the
// summarizer ever runs.
func validateTable(t *dataset.Table) (string, bool) {
	if t.NumCols() == 0 {
		return "The CSV file has no columns.", false
	}
	if t.NumRows() == 0 {
		return "The CSV file contains no data rows.", false
	}
	return "", true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg, hint string) {
	writeJSON(w, status, apimodels.ErrorResponse{Error: msg, Hint: hint})
}
