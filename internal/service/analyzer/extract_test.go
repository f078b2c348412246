package analyzer

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func testRegistry() *ExtractorRegistry {
	return NewExtractorRegistry(zerolog.Nop())
}

func TestExtractTextPlain(t *testing.T) {
	r := testRegistry()

	got := r.ExtractText([]byte("Hello\r\nWorld"), "txt")
	if want := "Hello\nWorld"; got != want {
		t.Errorf("ExtractText = %q, want %q", got, want)
	}
}

func TestExtractTextFormatHints(t *testing.T) {
	r := testRegistry()

	for _, hint := range []string{"txt", ".txt", "TXT", "md", "markdown"} {
		if got := r.ExtractText([]byte("content"), hint); got != "content" {
			t.Errorf("ExtractText with hint %q = %q, want %q", hint, got, "content")
		}
	}
}

func TestExtractTextUnknownFormat(t *testing.T) {
	r := testRegistry()

	if got := r.ExtractText([]byte("anything"), "xlsx"); got != "" {
		t.Errorf("ExtractText(unknown format) = %q, want empty", got)
	}
}

func TestExtractTextGarbagePDF(t *testing.T) {
	r := testRegistry()

	if got := r.ExtractText([]byte("this is not a pdf"), "pdf"); got != "" {
		t.Errorf("ExtractText(garbage pdf) = %q, want empty", got)
	}
}

func TestExtractTextGarbageDocx(t *testing.T) {
	r := testRegistry()

	if got := r.ExtractText([]byte("this is not a zip"), "docx"); got != "" {
		t.Errorf("ExtractText(garbage docx) = %q, want empty", got)
	}
}

func TestExtractTextDocx(t *testing.T) {
	document := `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
	<w:body>
		<w:p><w:r><w:t>First </w:t></w:r><w:r><w:t>paragraph</w:t></w:r></w:p>
		<w:p><w:r><w:t>Second paragraph</w:t></w:r></w:p>
	</w:body>
</w:document>`

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("failed to create zip entry: %v", err)
	}
	if _, err := f.Write([]byte(document)); err != nil {
		t.Fatalf("failed to write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to close zip: %v", err)
	}

	r := testRegistry()
	got := r.ExtractText(buf.Bytes(), "docx")
	want := "First paragraph\nSecond paragraph\n"
	if got != want {
		t.Errorf("ExtractText(docx) = %q, want %q", got, want)
	}
}

func TestExtractTextDocxMissingDocument(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, _ := zw.Create("other.xml")
	f.Write([]byte("<x/>"))
	zw.Close()

	r := testRegistry()
	if got := r.ExtractText(buf.Bytes(), "docx"); got != "" {
		t.Errorf("ExtractText(zip without document.xml) = %q, want empty", got)
	}
}

func TestExtractTextHTML(t *testing.T) {
	page := `<html><head><style>body { color: red; }</style></head>` +
		`<body><p>Visible text</p><script>var hidden = 1;</script><p>More text</p></body></html>`

	r := testRegistry()
	got := r.ExtractText([]byte(page), "html")

	if !strings.Contains(got, "Visible text") || !strings.Contains(got, "More text") {
		t.Errorf("ExtractText(html) = %q, missing visible text", got)
	}
	if strings.Contains(got, "hidden") || strings.Contains(got, "color") {
		t.Errorf("ExtractText(html) = %q, leaked script or style content", got)
	}
}

func TestExtractTextDeterministic(t *testing.T) {
	r := testRegistry()
	data := []byte("line one\nline two")

	first := r.ExtractText(data, "txt")
	for i := 0; i < 5; i++ {
		if got := r.ExtractText(data, "txt"); got != first {
			t.Fatalf("ExtractText run %d = %q, want %q", i, got, first)
		}
	}
}

func TestNormalizeFormat(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{".PDF", "pdf"},
		{"pdf", "pdf"},
		{" TXT ", "txt"},
		{".docx", "docx"},
		{"", ""},
	}

	for _, tc := range cases {
		if got := NormalizeFormat(tc.in); got != tc.want {
			t.Errorf("NormalizeFormat(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeText(t *testing.T) {
	got := NormalizeText("a\r\nb\rc")
	if want := "a\nb\nc"; got != want {
		t.Errorf("NormalizeText = %q, want %q", got, want)
	}

	got = NormalizeText(string([]byte{0xff}))
	if want := "�"; got != want {
		t.Errorf("NormalizeText(invalid utf8) = %q, want %q", got, want)
	}
}

func TestSupports(t *testing.T) {
	r := testRegistry()

	if !r.Supports("txt") || !r.Supports(".PDF") || !r.Supports("docx") || !r.Supports("html") {
		t.Error("registry does not support a registered format")
	}
	if r.Supports("exe") {
		t.Error("registry claims support for an unregistered format")
	}
}
