package youtube

import (
	"bytes"
	"encoding/xml"
	"errors"
	"html"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/mdhossainbhuyain1/LearnNext-AI/pkg/utils"
)

// Fragment is one timed piece of caption text.
type Fragment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

var (
	errEmptyDocument = errors.New("caption document is empty")
	formattingTags   = regexp.MustCompile(`(?i)</?(?:b|i|u|em|strong|small|font|br|mark|sub|sup|del|ins|s)\b[^>]*>`)
)

type textNode struct {
	Start string `xml:"start,attr"`
	Dur   string `xml:"dur,attr"`
	Body  string `xml:",chardata"`
}

var errNotSingleRoot = errors.New("caption document must have exactly one root element")

// parseTranscriptXML reads every <text> element, at any depth, in document
// order. The whole document must be well formed with a single root; text or
// elements outside the root are rejected.
func parseTranscriptXML(body []byte) ([]Fragment, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, errEmptyDocument
	}

	decoder := xml.NewDecoder(bytes.NewReader(body))
	fragments := make([]Fragment, 0)
	depth := 0
	rootClosed := false

	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, utils.WrapIfNotNil(err)
		}

		switch t := token.(type) {
		case xml.CharData:
			if depth == 0 && len(bytes.TrimSpace(t)) > 0 {
				return nil, utils.WrapIfNotNil(errNotSingleRoot)
			}
		case xml.EndElement:
			depth--
			if depth == 0 {
				rootClosed = true
			}
		case xml.StartElement:
			if rootClosed {
				return nil, utils.WrapIfNotNil(errNotSingleRoot)
			}
			if t.Name.Local != "text" {
				depth++
				continue
			}

			node := textNode{}
			if err := decoder.DecodeElement(&node, &t); err != nil {
				return nil, utils.WrapIfNotNil(err)
			}
			if depth == 0 {
				rootClosed = true
			}
			fragments = append(fragments, Fragment{
				Text:     cleanFragmentText(node.Body),
				Start:    parseSeconds(node.Start),
				Duration: parseSeconds(node.Dur),
			})
		}
	}

	if !rootClosed {
		return nil, utils.WrapIfNotNil(errors.New("caption document has no root element"))
	}
	return fragments, nil
}

// cleanFragmentText undoes the second entity escaping YouTube applies and drops
// inline formatting tags.
func cleanFragmentText(raw string) string {
	text := html.UnescapeString(raw)
	text = formattingTags.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

func parseSeconds(raw string) float64 {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0
	}
	return value
}

// JoinFragments joins non-blank fragment texts with single spaces.
func JoinFragments(fragments []Fragment) string {
	texts := make([]string, 0, len(fragments))
	for _, fragment := range fragments {
		texts = append(texts, fragment.Text)
	}
	return utils.JoinNonBlank(texts)
}
