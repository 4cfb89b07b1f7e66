package writer

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-scripts/scrape/internal/types"
)

// RawHeader is the header of every raw scrape export
var RawHeader = []string{"Data Type", "Content"}

// FileWriter handles writing scraped rows to CSV files
type FileWriter struct {
	outputDir string
}

// New creates a new FileWriter instance
func New(outputDir string) (*FileWriter, error) {
	if outputDir == "" {
		outputDir = "."
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &FileWriter{outputDir: outputDir}, nil
}

// Path resolves a file name inside the output directory
func (w *FileWriter) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(w.outputDir, name)
}

// WriteRaw writes the two column `Data Type`,`Content` file and returns its path
func (w *FileWriter) WriteRaw(name string, rows []types.RawRow) (string, error) {
	records := make([][]string, len(rows))
	for i, r := range rows {
		records[i] = []string{r.DataType, r.Content}
	}
	return w.WriteTable(name, RawHeader, records)
}

// WriteTable writes a header line followed by records
func (w *FileWriter) WriteTable(name string, header []string, records [][]string) (string, error) {
	path := w.Path(name)

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	cw := csv.NewWriter(file)
	if err := cw.Write(header); err != nil {
		return "", fmt.Errorf("failed to write header: %w", err)
	}
	if err := cw.WriteAll(records); err != nil {
		return "", fmt.Errorf("failed to write rows: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to close file: %w", err)
	}
	return path, nil
}

// SnapshotName derives a safe file name from a URL, used for page dumps
func SnapshotName(url string) string {
	url = strings.TrimPrefix(url, "http://")
	url = strings.TrimPrefix(url, "https://")
	url = strings.TrimPrefix(url, "www.")
	url = strings.TrimRight(url, "/")

	unsafe := []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|", " "}
	for _, char := range unsafe {
		url = strings.ReplaceAll(url, char, "_")
	}
	return url + ".html"
}

// WriteSnapshot stores the HTML of a page under a name derived from its URL
func (w *FileWriter) WriteSnapshot(url, html string) (string, error) {
	path := w.Path(SnapshotName(url))
	if err := os.WriteFile(path, []byte(html), 0644); err != nil {
		return "", fmt.Errorf("failed to write snapshot: %w", err)
	}
	return path, nil
}

// ItemHeader is the header of the flat item exports written by the browser
// scripts
var ItemHeader = []string{"type", "page", "text", "author", "tags", "name", "price", "description", "source_url", "site_name"}

func itemRecord(it types.Item) []string {
	page := ""
	if it.Page > 0 {
		page = strconv.Itoa(it.Page)
	}
	price := ""
	if it.Category == types.CategoryProduct {
		price = it.Price.String()
	}
	return []string{
		string(it.Category),
		page,
		it.Text,
		it.Author,
		it.Tags.String(),
		it.Name,
		price,
		it.Description,
		it.SourceURL,
		it.SiteName,
	}
}

// WriteItems writes one row per item, leaving the fields its category does
// not use empty
func (w *FileWriter) WriteItems(name string, items []types.Item) (string, error) {
	records := make([][]string, len(items))
	for i, it := range items {
		records[i] = itemRecord(it)
	}
	return w.WriteTable(name, ItemHeader, records)
}
