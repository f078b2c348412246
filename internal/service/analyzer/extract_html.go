package analyzer

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

// HTMLExtractor strips markup and keeps visible text. Script and style
// bodies are not document content and are dropped.
type HTMLExtractor struct{}

func (HTMLExtractor) Formats() []string {
	return []string{"html", "htm"}
}

func (HTMLExtractor) Decode(data []byte) (string, error) {
	tokenizer := html.NewTokenizer(bytes.NewReader(data))

	var out strings.Builder
	skipDepth := 0

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			// Tokenizer reports io.EOF at end of input; any earlier parse
			// noise has already been tolerated token by token.
			return out.String(), nil
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			switch string(name) {
			case "script", "style":
				skipDepth++
			case "p", "br", "div", "li", "tr", "h1", "h2", "h3", "h4", "h5", "h6":
				out.WriteString("\n")
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			if string(name) == "script" || string(name) == "style" {
				if skipDepth > 0 {
					skipDepth--
				}
			}
		case html.TextToken:
			if skipDepth == 0 {
				out.Write(tokenizer.Text())
			}
		}
	}
}
