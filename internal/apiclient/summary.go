package apiclient

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const maxSummaryRunes = 200

// summarizeBody renders a non-JSON body as one short line: the title or first
// heading of an HTML page, or the collapsed text otherwise.
func summarizeBody(contentType string, body []byte) string {
	if len(bytes.TrimSpace(body)) == 0 {
		return ""
	}
	if isHTML(contentType, body) {
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
		if err == nil {
			for _, sel := range []string{"title", "h1", "body"} {
				if text := collapseSpace(doc.Find(sel).First().Text()); text != "" {
					return truncate(text)
				}
			}
		}
	}
	return truncate(collapseSpace(string(body)))
}

func isHTML(contentType string, body []byte) bool {
	if strings.Contains(strings.ToLower(contentType), "html") {
		return true
	}
	head := bytes.ToLower(bytes.TrimSpace(body))
	return bytes.HasPrefix(head, []byte("<!doctype html")) || bytes.HasPrefix(head, []byte("<html"))
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string) string {
	if utf8.RuneCountInString(s) <= maxSummaryRunes {
		return s
	}
	r := []rune(s)
	return string(r[:maxSummaryRunes]) + "…"
}
