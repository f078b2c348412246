package analyzer

import (
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/text/unicode/norm"
)

// Extractor decodes one family of document formats into plain text. New
// formats are supported by registering another Extractor, not by editing
// existing ones.
type Extractor interface {
	Formats() []string
	Decode(data []byte) (string, error)
}

// ExtractorRegistry dispatches extraction over a declared format hint.
// Extraction never fails from the caller's point of view: an unregistered
// format or a decoder error yields empty text, which downstream treats as
// "nothing comparable" rather than an error.
type ExtractorRegistry struct {
	byFormat map[string]Extractor
	logger   zerolog.Logger
}

func NewExtractorRegistry(logger zerolog.Logger) *ExtractorRegistry {
	r := &ExtractorRegistry{
		byFormat: make(map[string]Extractor),
		logger:   logger,
	}

	r.Register(PlainTextExtractor{})
	r.Register(NewPDFExtractor())
	r.Register(NewDocxExtractor())
	r.Register(HTMLExtractor{})

	return r
}

func (r *ExtractorRegistry) Register(e Extractor) {
	for _, format := range e.Formats() {
		r.byFormat[NormalizeFormat(format)] = e
	}
}

// Supports reports whether a decoder is registered for the format hint.
func (r *ExtractorRegistry) Supports(formatHint string) bool {
	_, ok := r.byFormat[NormalizeFormat(formatHint)]
	return ok
}

// ExtractText is a pure function of (data, formatHint): identical inputs
// always yield identical text, so results can be cached by content digest.
func (r *ExtractorRegistry) ExtractText(data []byte, formatHint string) string {
	format := NormalizeFormat(formatHint)

	extractor, ok := r.byFormat[format]
	if !ok {
		r.logger.Debug().
			Str("format", format).
			Msg("No extractor registered for format")
		return ""
	}

	text, err := extractor.Decode(data)
	if err != nil {
		r.logger.Debug().
			Err(err).
			Str("format", format).
			Msg("Extraction failed, treating as empty")
		return ""
	}

	return NormalizeText(text)
}

// NormalizeFormat lowercases a format hint and strips a leading dot, so
// ".PDF", "pdf" and "PDF" all resolve to the same decoder.
func NormalizeFormat(hint string) string {
	hint = strings.ToLower(strings.TrimSpace(hint))
	return strings.TrimPrefix(hint, ".")
}

// NormalizeText folds line endings to \n, replaces invalid UTF-8 sequences
// and applies Unicode NFC so comparison is not polluted by encoding
// artifacts.
func NormalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.ToValidUTF8(s, "�")
	return norm.NFC.String(s)
}
