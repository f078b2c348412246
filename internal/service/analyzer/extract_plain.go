package analyzer

// PlainTextExtractor decodes byte content directly. Invalid byte sequences
// are replaced during normalization, never rejected.
type PlainTextExtractor struct{}

func (PlainTextExtractor) Formats() []string {
	return []string{"txt", "text", "md", "markdown"}
}

func (PlainTextExtractor) Decode(data []byte) (string, error) {
	return string(data), nil
}
