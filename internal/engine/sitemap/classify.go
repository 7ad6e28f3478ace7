package sitemap

import (
	"net/url"
	"regexp"
	"strings"
)

// includePatterns describe path shapes of individual posting pages.
var includePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)/jobs?/[^/]+/?$`),
	regexp.MustCompile(`(?i)/positions?/[^/]+/?$`),
	regexp.MustCompile(`(?i)/careers?/[^/]+/?$`),
	regexp.MustCompile(`(?i)/recruit/[^/]+/?$`),
	regexp.MustCompile(`(?i)/openings?/[^/]+/?$`),
}

// excludePatterns reject listing/category pages, nested sitemap indices and
// non-job site sections that would otherwise slip through includePatterns.
var excludePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)/sitemap[^/]*\.xml$`),
	regexp.MustCompile(`(?i)/(jobs?|positions?|careers?|recruit|openings?)/?$`),
	regexp.MustCompile(`(?i)/(blog|news|about|team|press|legal|privacy|terms|faq|contact|category|tag)(/|$)`),
	regexp.MustCompile(`(?i)\.(png|jpe?g|gif|svg|pdf|css|js)$`),
}

// IsPostingURL reports whether a sitemap URL looks like an individual job
// posting page. URLs with query strings never qualify.
func IsPostingURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return false
	}

	path := u.Path
	for _, re := range excludePatterns {
		if re.MatchString(path) {
			return false
		}
	}
	for _, re := range includePatterns {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}

// TitleFromURL derives a human-readable posting title from the last path
// segment: URL-decode, separators to spaces, title-case each word.
func TitleFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	path := strings.TrimRight(u.Path, "/")
	seg := path[strings.LastIndex(path, "/")+1:]
	if decoded, err := url.PathUnescape(seg); err == nil {
		seg = decoded
	}
	seg = strings.NewReplacer("-", " ", "_", " ", "+", " ").Replace(seg)

	words := strings.Fields(seg)
	for i, w := range words {
		r := []rune(w)
		words[i] = strings.ToUpper(string(r[0])) + string(r[1:])
	}
	return strings.Join(words, " ")
}
