package common

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"growthos/internal/errors"
	"growthos/internal/utils"
)

// PDFParser turns raw PDF bytes into plain text
type PDFParser interface {
	Parse(data []byte) (string, error)
}

// FileProcessor handles common file operations
type FileProcessor struct {
	logger *errors.Logger
}

// NewFileProcessor creates a new file processor instance
func NewFileProcessor(logger *errors.Logger) *FileProcessor {
	return &FileProcessor{logger: logger}
}

func (fp *FileProcessor) readBytes(filename string) ([]byte, error) {
	file, err := os.Open(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewIOError(errors.ErrCodeFileNotFound,
				fmt.Sprintf("File not found: %s", filename), err)
		}
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot read file: %s", filename), err)
	}
	defer func() {
		if err := file.Close(); err != nil && fp.logger != nil {
			fp.logger.Warn("Failed to close file", "filename", filename, "error", err)
		}
	}()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Failed to read file content: %s", filename), err)
	}
	return content, nil
}

// ReadFile reads content from a file with proper error handling
func (fp *FileProcessor) ReadFile(filename string) (string, error) {
	content, err := fp.readBytes(filename)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

// ReadDocument validates and reads a profile document. PDF files are
// converted to text with parser; anything else is read as text.
func (fp *FileProcessor) ReadDocument(filename string, parser PDFParser) (string, error) {
	if err := utils.ValidateInputFile(filename); err != nil {
		return "", errors.NewValidationError("INVALID_INPUT_FILE",
			fmt.Sprintf("Invalid file %s", filename), err)
	}

	if utils.IsPDFFile(filename) {
		if parser == nil {
			return "", errors.NewValidationError(errors.ErrCodeInvalidFormat,
				fmt.Sprintf("PDF input is not supported here: %s", filename), nil)
		}
		data, err := fp.readBytes(filename)
		if err != nil {
			return "", err
		}
		return parser.Parse(data)
	}

	if !utils.IsTextFile(filename) {
		if fp.logger != nil {
			fp.logger.Warn("File may not be a text file", "filename", filename)
		} else {
			fmt.Fprintf(os.Stderr, "Warning: %s may not be a text file\n", filename)
		}
	}
	return fp.ReadFile(filename)
}

// WriteFile writes content to a file with directory creation
func (fp *FileProcessor) WriteFile(filename, content string) error {
	dir := filepath.Dir(filename)
	if dir != "." {
		err := os.MkdirAll(dir, 0750)
		if err != nil {
			return errors.NewIOError("DIRECTORY_CREATE_FAILED",
				fmt.Sprintf("Cannot create directory: %s", dir), err)
		}
	}

	err := os.WriteFile(filename, []byte(content), 0600)
	if err != nil {
		return errors.NewIOError("FILE_WRITE_FAILED",
			fmt.Sprintf("Cannot write file: %s", filename), err)
	}

	return nil
}

// ValidateOutputFile validates output file path
func (fp *FileProcessor) ValidateOutputFile(filename string) error {
	if filename == "" {
		return nil // stdout is valid
	}

	if err := utils.ValidateOutputFile(filename); err != nil {
		return errors.NewValidationError("INVALID_OUTPUT_FILE",
			fmt.Sprintf("Invalid output file: %s", filename), err)
	}

	return nil
}
