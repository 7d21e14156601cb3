package assistant

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/analytics"
	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/utils"
)

var (
	ErrEmptyFile         = errors.New("empty file")
	ErrUnsupportedFile   = errors.New("unsupported file type")
	ErrNoExtractableText = errors.New("no extractable text")
)

const docxBodyPart = "word/document.xml"

type DocumentSummary struct {
	Name        string `json:"name"`
	Chars       int    `json:"chars"`
	Summary     string `json:"summary"`
	ReadingTime string `json:"reading_time"`
}

// SummarizeDocument extracts the text of a .txt, .pdf or .docx upload and summarizes it.
func (a *Assistant) SummarizeDocument(ctx context.Context, name string, data []byte, opts SummaryOptions) (DocumentSummary, error) {
	text, err := ExtractText(name, data)
	if err != nil {
		return DocumentSummary{}, utils.WrapIfNotNil(err)
	}

	summary, err := a.smartSummarize(ctx, text, opts.resolve())
	if err != nil {
		return DocumentSummary{}, utils.WrapIfNotNil(err)
	}
	a.record(ctx, analytics.KindSummaries, map[string]any{"doc": name, "chars": len(text)})
	return DocumentSummary{
		Name:        name,
		Chars:       len(text),
		Summary:     summary,
		ReadingTime: ReadingTime(text),
	}, nil
}

// ExtractText returns the plain text of a document, chosen by file extension.
func ExtractText(name string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyFile
	}

	var (
		text string
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".txt":
		text = strings.ToValidUTF8(string(data), "")
	case ".pdf":
		text, err = pdfText(data)
	case ".docx":
		text, err = docxText(data)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFile, name)
	}
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w in %q", ErrNoExtractableText, name)
	}
	return text, nil
}

func pdfText(data []byte) (text string, err error) {
	// The PDF reader panics on some malformed inputs.
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("error reading PDF: %v", recovered)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("error reading PDF: %w", err)
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("error reading PDF: %w", err)
	}
	out, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("error reading PDF: %w", err)
	}
	return string(out), nil
}

// docxText walks word/document.xml, keeping run text and turning paragraph
// ends, breaks and tabs into whitespace.
func docxText(data []byte) (string, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("error reading DOCX: %w", err)
	}

	var body *zip.File
	for _, file := range archive.File {
		if file.Name == docxBodyPart {
			body = file
			break
		}
	}
	if body == nil {
		return "", fmt.Errorf("error reading DOCX: %s not found", docxBodyPart)
	}

	rc, err := body.Open()
	if err != nil {
		return "", fmt.Errorf("error reading DOCX: %w", err)
	}
	defer rc.Close()

	var (
		out    strings.Builder
		inText bool
	)
	decoder := xml.NewDecoder(rc)
	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("error reading DOCX: %w", err)
		}

		switch element := token.(type) {
		case xml.StartElement:
			switch element.Name.Local {
			case "t":
				inText = true
			case "tab":
				out.WriteByte('\t')
			case "br", "cr":
				out.WriteByte('\n')
			}
		case xml.EndElement:
			switch element.Name.Local {
			case "t":
				inText = false
			case "p":
				out.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				out.Write(element)
			}
		}
	}
	return out.String(), nil
}
