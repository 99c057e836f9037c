package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/seusdados/crm-service/internal/models"
	"github.com/seusdados/crm-service/internal/repositories"
	"github.com/seusdados/crm-service/internal/scoring"
	"github.com/seusdados/crm-service/internal/validator"
	"github.com/xuri/excelize/v2"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	csvContentType  = "text/csv"

	exportSheetName    = "Responses"
	exportPageSize     = 100
	defaultSectionName = "General"
)

// Fixed leading columns of a response export; one column per question follows.
var exportHeaders = []string{
	"Response ID", "Respondent Name", "Respondent Email", "Status",
	"Score", "Max Score", "Completion %", "Lead Converted", "Submitted At",
}

type importExportService struct {
	repo           repositories.Repository
	questionnaires QuestionnaireService
	validator      *validator.Validator
	logger         *ServiceLogger
}

func NewImportExportService(repo repositories.Repository, questionnaires QuestionnaireService, validator *validator.Validator, logger *ServiceLogger) ImportExportService {
	return &importExportService{
		repo:           repo,
		questionnaires: questionnaires,
		validator:      validator,
		logger:         logger,
	}
}

// ===== EXPORT OPERATIONS =====

func (s *importExportService) ExportResponses(ctx context.Context, questionnaireID uuid.UUID, req models.ExportRequest) (*ExportFile, error) {
	if err := s.validator.Validate(&req); err != nil {
		return nil, err
	}
	format := req.Format
	if format == "" {
		format = models.ExportXLSX
	}

	questionnaire, err := s.questionnaires.GetByID(ctx, questionnaireID)
	if err != nil {
		return nil, err
	}
	responses, err := s.collectResponses(ctx, questionnaireID, req)
	if err != nil {
		return nil, err
	}

	questions := questionnaire.ScoringQuestions()
	headers := append([]string(nil), exportHeaders...)
	for _, q := range questions {
		headers = append(headers, q.Text)
	}

	rows := make([][]string, 0, len(responses))
	for _, r := range responses {
		rows = append(rows, responseRow(r, questions))
	}

	base := fmt.Sprintf("responses_%s_%s", questionnaireID.String()[:8], time.Now().Format("20060102"))
	var file *ExportFile
	switch format {
	case models.ExportCSV:
		data, err := writeCSV(headers, rows)
		if err != nil {
			return nil, err
		}
		file = &ExportFile{Filename: base + ".csv", ContentType: csvContentType, Data: data}
	default:
		data, err := writeXLSX(headers, rows)
		if err != nil {
			return nil, err
		}
		file = &ExportFile{Filename: base + ".xlsx", ContentType: xlsxContentType, Data: data}
	}

	s.logger.Debug(ctx, "responses exported", "questionnaire_id", questionnaireID, "rows", len(rows), "format", format)
	return file, nil
}

// collectResponses pages through every response in the requested window.
func (s *importExportService) collectResponses(ctx context.Context, questionnaireID uuid.UUID, req models.ExportRequest) ([]*models.QuestionnaireResponse, error) {
	filters := repositories.ResponseFilters{
		QuestionnaireID: &questionnaireID,
		DateFrom:        req.DateFrom,
		DateTo:          req.DateTo,
		Limit:           exportPageSize,
	}

	var all []*models.QuestionnaireResponse
	for {
		page, total, err := s.repo.Response().List(ctx, nil, filters)
		if err != nil {
			return nil, fmt.Errorf("failed to list responses for export: %w", err)
		}
		all = append(all, page...)
		if len(page) < exportPageSize || int64(len(all)) >= total {
			return all, nil
		}
		filters.Offset += len(page)
	}
}

func responseRow(r *models.QuestionnaireResponse, questions []scoring.Question) []string {
	submitted := r.CreatedAt.Format(time.RFC3339)
	if r.CompletedAt != nil {
		submitted = r.CompletedAt.Format(time.RFC3339)
	}
	row := []string{
		r.ID.String(),
		r.RespondentName,
		r.RespondentEmail,
		string(r.CompletionStatus),
		formatNumber(r.CalculatedScore),
		formatNumber(r.MaxPossibleScore),
		strconv.Itoa(r.CompletionPercentage),
		strconv.FormatBool(r.LeadConverted),
		submitted,
	}

	answers, err := decodeAnswers(r.Answers)
	if err != nil {
		answers = scoring.Answers{}
	}
	for _, q := range questions {
		row = append(row, formatAnswer(answers[q.ID]))
	}
	return row
}

func formatAnswer(v any) string {
	switch a := v.(type) {
	case nil:
		return ""
	case string:
		return a
	case bool:
		if a {
			return "yes"
		}
		return "no"
	case float64:
		return formatNumber(a)
	case []any:
		parts := make([]string, 0, len(a))
		for _, item := range a {
			parts = append(parts, formatAnswer(item))
		}
		return strings.Join(parts, "; ")
	case []string:
		return strings.Join(a, "; ")
	default:
		return fmt.Sprint(a)
	}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func writeCSV(headers []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := writer.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("failed to write CSV rows: %w", err)
	}
	return buf.Bytes(), nil
}

func writeXLSX(headers []string, rows [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), exportSheetName); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	for rowIndex, values := range append([][]string{headers}, rows...) {
		for colIndex, value := range values {
			cell, err := excelize.CoordinatesToCellName(colIndex+1, rowIndex+1)
			if err != nil {
				return nil, fmt.Errorf("failed to address cell: %w", err)
			}
			if err := f.SetCellValue(exportSheetName, cell, value); err != nil {
				return nil, fmt.Errorf("failed to write cell %s: %w", cell, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

// ===== IMPORT OPERATIONS =====

// importedQuestion keeps the source row so creation errors can point back at it.
type importedQuestion struct {
	row     int
	section string
	input   QuestionInput
}

// ImportQuestionnaire builds a questionnaire from a spreadsheet or JSON file.
// Row problems are reported in the summary and nothing is created.
func (s *importExportService) ImportQuestionnaire(ctx context.Context, reader io.Reader, filename string, req *ImportQuestionnaireRequest, userID string) (*models.ImportSummary, error) {
	start := time.Now()
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var (
		sections []SectionInput
		rowMap   [][]int
		summary  = &models.ImportSummary{Errors: []models.ImportValidationError{}, Warnings: []string{}}
	)

	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".json":
		parsed, err := parseJSONQuestionnaire(reader)
		if err != nil {
			return nil, err
		}
		sections = parsed
		for _, sec := range sections {
			summary.TotalRows += len(sec.Questions)
		}
	case ".csv", ".xlsx":
		var records [][]string
		var err error
		if ext == ".csv" {
			records, err = readCSVRecords(reader)
		} else {
			records, err = readExcelRecords(reader)
		}
		if err != nil {
			return nil, err
		}
		if len(records) < 2 {
			return nil, NewValidationError("file", "file must have a header row and at least one data row", len(records))
		}
		summary.TotalRows = len(records) - 1

		questions, rowErrors, warnings := parseQuestionRows(records)
		summary.Errors = append(summary.Errors, rowErrors...)
		summary.Warnings = append(summary.Warnings, warnings...)
		sections, rowMap = groupSections(questions)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFileFormat, ext)
	}

	if len(summary.Errors) == 0 && len(sections) == 0 {
		summary.Errors = append(summary.Errors, models.ImportValidationError{
			Column: "file", Message: "no questions found", Code: "empty",
		})
	}
	if len(summary.Errors) > 0 {
		summary.Status = models.ImportValidationFailed
		summary.ProcessingTime = time.Since(start)
		return summary, nil
	}

	questionnaire, err := s.questionnaires.Create(ctx, &CreateQuestionnaireRequest{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Sections:    sections,
	}, userID)
	if err != nil {
		var verrs ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, err
		}
		for _, e := range verrs {
			summary.Errors = append(summary.Errors, models.ImportValidationError{
				Row:     sourceRow(rowMap, e.Field),
				Column:  e.Field,
				Message: e.Message,
				Value:   fmt.Sprint(e.Value),
				Code:    e.Rule,
			})
		}
		summary.Status = models.ImportValidationFailed
		summary.ProcessingTime = time.Since(start)
		return summary, nil
	}

	summary.QuestionnaireID = questionnaire.ID
	summary.Status = models.ImportCompleted
	summary.SectionsCreated = len(questionnaire.Sections)
	summary.QuestionsCreated = countQuestions(questionnaire)
	summary.ProcessingTime = time.Since(start)

	s.logger.Debug(ctx, "questionnaire imported",
		"questionnaire_id", questionnaire.ID,
		"filename", filename,
		"questions", summary.QuestionsCreated)
	return summary, nil
}

func readCSVRecords(reader io.Reader) ([][]string, error) {
	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, NewValidationError("file", fmt.Sprintf("failed to read CSV: %v", err), nil)
	}
	return records, nil
}

func readExcelRecords(reader io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, NewValidationError("file", fmt.Sprintf("failed to open Excel file: %v", err), nil)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, NewValidationError("file", "Excel file has no sheets", nil)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read Excel rows: %w", err)
	}
	return rows, nil
}

// parseQuestionRows reads the columns section, question_text, question_type,
// options, required and score_config. Only question_text and question_type
// are mandatory.
func parseQuestionRows(records [][]string) ([]importedQuestion, []models.ImportValidationError, []string) {
	headerMap := make(map[string]int)
	for i, header := range records[0] {
		headerMap[strings.ToLower(strings.TrimSpace(header))] = i
	}

	var errs []models.ImportValidationError
	for _, col := range []string{"question_text", "question_type"} {
		if _, ok := headerMap[col]; !ok {
			errs = append(errs, models.ImportValidationError{
				Row: 1, Column: col, Message: "missing required column", Code: "missing_column",
			})
		}
	}
	if len(errs) > 0 {
		return nil, errs, nil
	}

	var questions []importedQuestion
	var warnings []string
	for i, record := range records[1:] {
		rowNum := i + 2
		getColumn := func(name string) string {
			if index, ok := headerMap[name]; ok && index < len(record) {
				return strings.TrimSpace(record[index])
			}
			return ""
		}

		text := getColumn("question_text")
		typeName := strings.ToLower(getColumn("question_type"))
		if text == "" && typeName == "" {
			warnings = append(warnings, fmt.Sprintf("row %d is empty and was skipped", rowNum))
			continue
		}
		if text == "" {
			errs = append(errs, models.ImportValidationError{
				Row: rowNum, Column: "question_text", Message: "required field", Code: "required",
			})
			continue
		}
		questionType := models.QuestionType(typeName)
		if !scoring.QuestionType(questionType).IsValid() {
			errs = append(errs, models.ImportValidationError{
				Row: rowNum, Column: "question_type", Message: "unknown question type", Value: typeName, Code: "question_type",
			})
			continue
		}

		var scoreConfig json.RawMessage
		if raw := getColumn("score_config"); raw != "" {
			if !json.Valid([]byte(raw)) {
				errs = append(errs, models.ImportValidationError{
					Row: rowNum, Column: "score_config", Message: "must be valid JSON", Value: raw, Code: "score_rule",
				})
				continue
			}
			scoreConfig = json.RawMessage(raw)
		}

		questions = append(questions, importedQuestion{
			row:     rowNum,
			section: getColumn("section"),
			input: QuestionInput{
				Text:        text,
				Type:        questionType,
				Options:     splitOptions(getColumn("options")),
				Required:    parseBool(getColumn("required")),
				ScoreConfig: scoreConfig,
			},
		})
	}
	return questions, errs, warnings
}

// groupSections keeps sections in first-appearance order. The returned row
// map gives the source row of sections[i].questions[j].
func groupSections(questions []importedQuestion) ([]SectionInput, [][]int) {
	var sections []SectionInput
	var rows [][]int
	index := make(map[string]int)
	for _, q := range questions {
		title := q.section
		if title == "" {
			title = defaultSectionName
		}
		i, ok := index[title]
		if !ok {
			i = len(sections)
			index[title] = i
			sections = append(sections, SectionInput{Title: title})
			rows = append(rows, nil)
		}
		sections[i].Questions = append(sections[i].Questions, q.input)
		rows[i] = append(rows[i], q.row)
	}
	return sections, rows
}

// sourceRow maps a field path like sections[0].questions[2].type back to a
// spreadsheet row. Unknown paths map to 0.
func sourceRow(rows [][]int, field string) int {
	var i, j int
	if _, err := fmt.Sscanf(field, "sections[%d].questions[%d]", &i, &j); err != nil {
		return 0
	}
	if i < len(rows) && j < len(rows[i]) {
		return rows[i][j]
	}
	return 0
}

func parseJSONQuestionnaire(reader io.Reader) ([]SectionInput, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, NewValidationError("file", "file is empty", nil)
	}

	if data[0] == '[' {
		var questions []QuestionInput
		if err := json.Unmarshal(data, &questions); err != nil {
			return nil, NewValidationError("file", fmt.Sprintf("invalid JSON: %v", err), nil)
		}
		if len(questions) == 0 {
			return nil, nil
		}
		return []SectionInput{{Title: defaultSectionName, Questions: questions}}, nil
	}

	var doc struct {
		Sections []SectionInput `json:"sections"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, NewValidationError("file", fmt.Sprintf("invalid JSON: %v", err), nil)
	}
	return doc.Sections, nil
}

func splitOptions(s string) []string {
	if s == "" {
		return nil
	}
	sep := "|"
	if !strings.Contains(s, sep) {
		sep = ";"
	}
	var options []string
	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			options = append(options, part)
		}
	}
	return options
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "yes", "y", "1", "sim":
		return true
	}
	return false
}
