package services

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/joho/godotenv"
	"github.com/unidoc/unipdf/v3/common/license"
	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"
	"github.com/xuri/excelize/v2"
)

func init() {
	// Load .env before main runs so the UniDoc license can be set here.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables.")
	}
	if key := os.Getenv("UNIDOC_LICENSE_KEY"); key != "" {
		if err := license.SetMeteredKey(key); err != nil {
			log.Printf("WARN: Failed to set UniDoc license key: %v. PDF extraction will fail.", err)
		}
	}
}

// FileKind tags the extraction strategy for an input file.
type FileKind int

const (
	KindUnsupported FileKind = iota
	KindText
	KindPDF
	KindCSV
	KindExcel
)

// DetectFileKind picks the extraction variant by file extension first and
// MIME sniffing second.
func DetectFileKind(path string) FileKind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md":
		return KindText
	case ".pdf":
		return KindPDF
	case ".csv":
		return KindCSV
	case ".xlsx", ".xlsm":
		return KindExcel
	}

	mime, err := mimetype.DetectFile(path)
	if err != nil {
		return KindUnsupported
	}
	switch {
	case mime.Is("application/pdf"):
		return KindPDF
	case mime.Is("text/csv"):
		return KindCSV
	case strings.HasPrefix(mime.String(), "text/"):
		return KindText
	default:
		return KindUnsupported
	}
}

// ExtractTextFromFile reads a file and returns its text content, dispatching
// on the detected kind.
func ExtractTextFromFile(path string) (string, error) {
	switch DetectFileKind(path) {
	case KindText:
		content, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(content), nil
	case KindPDF:
		return extractTextFromPDF(path)
	case KindCSV:
		return extractTextFromCSV(path)
	case KindExcel:
		return extractTextFromExcel(path)
	default:
		return "", fmt.Errorf("unsupported file type: %s", filepath.Ext(path))
	}
}

// extractTextFromPDF uses UniPDF to get all text from a PDF file.
func extractTextFromPDF(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	pdfReader, err := model.NewPdfReader(f)
	if err != nil {
		return "", err
	}

	numPages, err := pdfReader.GetNumPages()
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for i := 1; i <= numPages; i++ {
		page, err := pdfReader.GetPage(i)
		if err != nil {
			return "", err
		}

		ex, err := extractor.New(page)
		if err != nil {
			return "", err
		}

		text, err := ex.ExtractText()
		if err != nil {
			return "", err
		}
		sb.WriteString(text)
		sb.WriteString("\n\n")
	}

	return sb.String(), nil
}

// extractTextFromCSV flattens CSV rows into comma-joined lines.
func extractTextFromCSV(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, row := range rows {
		sb.WriteString(strings.Join(row, ", "))
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// extractTextFromExcel flattens every sheet into comma-joined rows.
func extractTextFromExcel(path string) (string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var sb strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", err
		}
		sb.WriteString("Sheet: " + sheet + "\n")
		for _, row := range rows {
			sb.WriteString(strings.Join(row, ", "))
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	return sb.String(), nil
}
