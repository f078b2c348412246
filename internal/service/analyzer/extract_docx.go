package analyzer

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// DocxExtractor reads WordprocessingML text from the zip container: runs
// (<w:t>) are concatenated within a paragraph, paragraphs (<w:p>) become
// lines. Legacy binary .doc payloads are not parseable here and decode to
// an error, which the registry absorbs into empty text.
type DocxExtractor struct{}

func NewDocxExtractor() DocxExtractor {
	return DocxExtractor{}
}

func (DocxExtractor) Formats() []string {
	return []string{"docx", "doc"}
}

func (DocxExtractor) Decode(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("not a zip container: %w", err)
	}

	var document *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			document = f
			break
		}
	}
	if document == nil {
		return "", fmt.Errorf("zip has no word/document.xml")
	}

	rc, err := document.Open()
	if err != nil {
		return "", fmt.Errorf("open document part: %w", err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("read document part: %w", err)
	}

	return docxParagraphs(raw)
}

func docxParagraphs(raw []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(raw))

	var out strings.Builder
	var paragraph strings.Builder

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("decode document xml: %w", err)
		}

		switch el := tok.(type) {
		case xml.StartElement:
			if el.Name.Local == "t" {
				var run string
				if err := dec.DecodeElement(&run, &el); err != nil {
					continue
				}
				paragraph.WriteString(run)
			}
		case xml.EndElement:
			if el.Name.Local == "p" {
				out.WriteString(paragraph.String())
				out.WriteString("\n")
				paragraph.Reset()
			}
		}
	}

	if paragraph.Len() > 0 {
		out.WriteString(paragraph.String())
		out.WriteString("\n")
	}

	return out.String(), nil
}
