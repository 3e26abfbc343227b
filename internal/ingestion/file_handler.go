package ingestion

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/phuslu/log"

	"github.com/fmuoria/hiring-agent/internal/models"
)

// MaxUploadSize bounds a single uploaded CSV
const MaxUploadSize = 32 << 20

// ErrUnsupportedFile is returned for anything that is not a CSV file
var ErrUnsupportedFile = errors.New("unsupported file type, expected .csv")

// IsCSV reports whether filename has a .csv extension
func IsCSV(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".csv")
}

// ReadUpload reads one CSV upload into memory
func ReadUpload(filename string, content io.Reader) (models.Upload, error) {
	if !IsCSV(filename) {
		return models.Upload{}, fmt.Errorf("%s: %w", filename, ErrUnsupportedFile)
	}

	data, err := io.ReadAll(io.LimitReader(content, MaxUploadSize+1))
	if err != nil {
		return models.Upload{}, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	if len(data) > MaxUploadSize {
		return models.Upload{}, fmt.Errorf("%s exceeds the %d MB upload limit", filename, MaxUploadSize>>20)
	}

	return models.Upload{Name: filepath.Base(filename), Content: data}, nil
}

// LoadPaths loads uploads from files and directories. Directories contribute
// their CSV files in name order; other file types inside them are skipped.
func LoadPaths(paths []string) ([]models.Upload, error) {
	var uploads []models.Upload
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", p, err)
		}

		if !info.IsDir() {
			up, err := loadFile(p)
			if err != nil {
				return nil, err
			}
			uploads = append(uploads, up)
			continue
		}

		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read directory %s: %w", p, err)
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

		for _, entry := range entries {
			if entry.IsDir() || !IsCSV(entry.Name()) {
				continue
			}
			up, err := loadFile(filepath.Join(p, entry.Name()))
			if err != nil {
				return nil, err
			}
			uploads = append(uploads, up)
		}
	}
	return uploads, nil
}

func loadFile(path string) (models.Upload, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.Upload{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return ReadUpload(path, f)
}

// FromMultipart reads the CSV parts of a multipart form. Non-CSV parts are
// skipped and reported by name.
func FromMultipart(headers []*multipart.FileHeader) ([]models.Upload, []string, error) {
	var uploads []models.Upload
	var skipped []string

	for _, fh := range headers {
		if !IsCSV(fh.Filename) {
			log.Warn().Str("file", fh.Filename).Msg("Skipping unsupported file type")
			skipped = append(skipped, fh.Filename)
			continue
		}

		file, err := fh.Open()
		if err != nil {
			return nil, skipped, fmt.Errorf("failed to open uploaded file: %w", err)
		}
		up, err := ReadUpload(fh.Filename, file)
		file.Close()
		if err != nil {
			return nil, skipped, err
		}
		uploads = append(uploads, up)
	}
	return uploads, skipped, nil
}

// Preview summarizes a CSV upload for the file list
type Preview struct {
	Name    string   `json:"name"`
	Size    int      `json:"size"`
	Columns []string `json:"columns"`
	Rows    int      `json:"rows"`
}

// Describe reads the header and counts data rows. Ragged rows are accepted;
// the agents decide what to do with them.
func Describe(up models.Upload) (Preview, error) {
	p := Preview{Name: up.Name, Size: len(up.Content)}

	r := csv.NewReader(bytes.NewReader(up.Content))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return p, nil
	}
	if err != nil {
		return p, fmt.Errorf("failed to parse %s: %w", up.Name, err)
	}
	p.Columns = header

	for {
		_, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return p, fmt.Errorf("failed to parse %s: %w", up.Name, err)
		}
		p.Rows++
	}
	return p, nil
}

// SaveUpload writes an upload into dir, used to keep a copy of what was sent
func SaveUpload(dir string, up models.Upload) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create uploads directory: %w", err)
	}

	path := filepath.Join(dir, filepath.Base(up.Name))
	if err := os.WriteFile(path, up.Content, 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return path, nil
}
