// Package importer loads practice questions from JSON or XLSX files into a
// question bank.
package importer

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/interview-prep/backend/internal/models"
)

//go:embed seed.json
var seedJSON []byte

// Sink is a question bank that accepts bulk inserts.
type Sink interface {
	InsertQuestions(ctx context.Context, questions []models.Question) (int, error)
}

// Result holds the outcome of an import.
type Result struct {
	Processed int
	Inserted  int
	Skipped   int
	Errors    []string
}

// Batch is a parsed file: the rows that passed validation plus a message per
// rejected row.
type Batch struct {
	Questions []models.Question
	Processed int
	Errors    []string
}

func (b *Batch) add(row int, q models.Question) {
	b.Processed++
	normalize(&q)
	if err := q.Validate(); err != nil {
		b.Errors = append(b.Errors, fmt.Sprintf("Row %d: %v", row, err))
		return
	}
	b.Questions = append(b.Questions, q)
}

func normalize(q *models.Question) {
	q.Text = strings.TrimSpace(q.Text)
	q.Category = strings.TrimSpace(q.Category)
	q.Difficulty = strings.TrimSpace(q.Difficulty)
	if q.Difficulty == "" {
		q.Difficulty = models.DifficultyMedium
	}
	if q.Options == nil {
		q.Options = []string{}
	}
	if q.Topics == nil {
		q.Topics = []string{}
	}
}

// Seed returns the built-in development question set.
func Seed() (*Batch, error) {
	return ParseJSON(bytes.NewReader(seedJSON))
}

// ParseFile picks the parser from the file extension.
func ParseFile(path string) (*Batch, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()
		return ParseJSON(f)
	case ".xlsx":
		return ParseXLSX(path)
	default:
		return nil, fmt.Errorf("unsupported file type %q (want .json or .xlsx)", filepath.Ext(path))
	}
}

// ParseJSON reads an array of question objects.
func ParseJSON(r io.Reader) (*Batch, error) {
	var raw []models.Question
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	b := &Batch{}
	for i, q := range raw {
		b.add(i+1, q)
	}
	return b, nil
}

var headers = []string{"text", "options", "correctIndex", "explanation", "category", "difficulty", "topics"}

// ParseXLSX reads the first sheet of a workbook. The first row is a header
// naming the columns text, options, correctIndex, explanation, category,
// difficulty and topics in any order. Options are separated by "|" and topics
// by ",".
func ParseXLSX(path string) (*Batch, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	if len(rows) == 0 {
		return &Batch{}, nil
	}

	index := map[string]int{}
	for i, name := range rows[0] {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := index["text"]; !ok {
		return nil, fmt.Errorf("sheet %q has no text column", sheet)
	}

	b := &Batch{}
	for i, row := range rows[1:] {
		rowNum := i + 2
		cell := func(col string) string {
			idx, ok := index[col]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}
		if isBlank(row) {
			continue
		}

		q := models.Question{
			Text:        cell("text"),
			Options:     splitList(cell("options"), "|"),
			Explanation: cell("explanation"),
			Category:    cell("category"),
			Difficulty:  cell("difficulty"),
			Topics:      splitList(cell("topics"), ","),
		}
		if v := cell("correctindex"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				b.Processed++
				b.Errors = append(b.Errors, fmt.Sprintf("Row %d: correctIndex %q is not a number", rowNum, v))
				continue
			}
			q.CorrectIndex = &n
		}
		b.add(rowNum, q)
	}
	return b, nil
}

func splitList(s, sep string) []string {
	out := []string{}
	for _, part := range strings.Split(s, sep) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Import writes the valid rows of a batch to the sink.
func Import(ctx context.Context, sink Sink, b *Batch) (*Result, error) {
	res := &Result{
		Processed: b.Processed,
		Skipped:   len(b.Errors),
		Errors:    b.Errors,
	}
	if len(b.Questions) == 0 {
		return res, nil
	}
	n, err := sink.InsertQuestions(ctx, b.Questions)
	if err != nil {
		return res, fmt.Errorf("insert questions: %w", err)
	}
	res.Inserted = n
	return res, nil
}

// WriteXLSX saves questions in the layout ParseXLSX reads, so a seed set can
// be edited in a spreadsheet and imported again.
func WriteXLSX(path string, questions []models.Question) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	for i, h := range headers {
		cellName, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cellName, h); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	for r, q := range questions {
		correct := ""
		if q.CorrectIndex != nil {
			correct = strconv.Itoa(*q.CorrectIndex)
		}
		values := []string{
			q.Text,
			strings.Join(q.Options, "|"),
			correct,
			q.Explanation,
			q.Category,
			q.Difficulty,
			strings.Join(q.Topics, ","),
		}
		for c, v := range values {
			cellName, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cellName, v); err != nil {
				return fmt.Errorf("write row %d: %w", r+2, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
