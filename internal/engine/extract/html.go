package extract

import (
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	"github.com/anatolykoptev/go-kit/strutil"
)

// MaxContentChars caps posting text handed to the model.
const MaxContentChars = 8000

var multiBlank = regexp.MustCompile(`\n{3,}`)

// HTMLToText reduces posting HTML to body text: drops script, style,
// navigation and other chrome, then normalizes whitespace. Falls back to
// markdown conversion when the document does not parse. Output is capped
// at MaxContentChars runes.
func HTMLToText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		if md, mdErr := htmltomarkdown.ConvertString(html); mdErr == nil {
			return CapText(md)
		}
		return CapText(html)
	}

	doc.Find("script, style, noscript, iframe, svg, header, footer, nav, aside").Each(func(_ int, s *goquery.Selection) {
		s.Remove()
	})

	body := doc.Find("body")
	if body.Length() == 0 {
		body = doc.Selection
	}

	var sb strings.Builder
	for _, line := range strings.Split(body.Text(), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
	}
	return CapText(sb.String())
}

// CapText collapses blank runs and truncates to MaxContentChars runes.
func CapText(s string) string {
	s = strings.TrimSpace(multiBlank.ReplaceAllString(s, "\n\n"))
	return strutil.TruncateWith(s, MaxContentChars, "")
}
