package extract

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"mime"
	"strings"
	"unicode/utf8"

	"github.com/credvet/credvet/internal/model"
	"golang.org/x/net/html"
)

// ErrUnsupportedFormat is returned for media types the parser cannot turn
// into text. Callers should test for it with errors.Is before starting a run.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// ParseDocument decodes raw document bytes into plain text according to the
// declared media type and computes the content digest. Only text/plain and
// text/html are supported. Empty text is not an error.
func ParseDocument(raw []byte, mediaType string) (*model.ParsedDocument, error) {
	mt, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, mediaType)
	}

	var text string
	switch mt {
	case "text/plain":
		if !utf8.Valid(raw) {
			return nil, fmt.Errorf("%w: text/plain body is not valid UTF-8", ErrUnsupportedFormat)
		}
		text = string(raw)
	case "text/html":
		doc, err := html.Parse(strings.NewReader(string(raw)))
		if err != nil {
			return nil, fmt.Errorf("parse html: %w", err)
		}
		text = visibleText(doc)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, mt)
	}

	digest := sha256.Sum256(raw)

	return &model.ParsedDocument{
		Text:           text,
		Digest:         hex.EncodeToString(digest[:]),
		WordCount:      len(strings.Fields(text)),
		CharacterCount: len(text),
	}, nil
}

// visibleText extracts text nodes from HTML, skipping scripts/styles.
func visibleText(n *html.Node) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}

		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString("\n")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return buf.String()
}
