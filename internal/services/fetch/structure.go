package fetch

import (
	"fmt"
	"strings"
	"unicode/utf8"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

const (
	maxDigestLength  = 20000
	maxTextPreview   = 100
	maxContentBlocks = 2
)

// AnalyzeStructure produces a text report describing the main content
// containers, headings, date and author elements of an HTML document, giving
// the analyst concrete selector candidates to work from
func AnalyzeStructure(html, url string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "HTML Structure Analysis for: %s\n", url)
	b.WriteString(strings.Repeat("=", 80) + "\n\n")

	b.WriteString("MAIN CONTENT CONTAINERS:\n")
	for _, selector := range []string{"main", "article", `div[role="main"]`} {
		doc.Find(selector).EachWithBreak(func(i int, s *goquery.Selection) bool {
			if i >= 3 {
				return false
			}
			writeElementLine(&b, s)
			return true
		})
	}

	b.WriteString("\nHEADINGS (H1-H2):\n")
	doc.Find("h1, h2").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if i >= 5 {
			return false
		}
		classes, _ := s.Attr("class")
		fmt.Fprintf(&b, "  - <%s> class='%s': %s\n", goquery.NodeName(s), classes, truncate(strings.TrimSpace(s.Text()), maxTextPreview))
		return true
	})

	b.WriteString("\nTIME/DATE ELEMENTS:\n")
	doc.Find("time").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if i >= 3 {
			return false
		}
		datetime, _ := s.Attr("datetime")
		classes, _ := s.Attr("class")
		fmt.Fprintf(&b, "  - <time> class='%s' datetime='%s': %s\n", classes, datetime, strings.TrimSpace(s.Text()))
		return true
	})

	b.WriteString("\nAUTHOR-RELATED ELEMENTS:\n")
	if content, ok := doc.Find(`meta[name="author"]`).Attr("content"); ok {
		fmt.Fprintf(&b, "  - <meta name='author' content='%s'/>\n", content)
	}
	for _, selector := range []string{".author", ".byline", `[rel="author"]`, ".writer", ".post-author"} {
		doc.Find(selector).EachWithBreak(func(i int, s *goquery.Selection) bool {
			if i >= 2 {
				return false
			}
			fmt.Fprintf(&b, "  - %s: %s\n", selector, strings.TrimSpace(s.Text()))
			return true
		})
	}

	b.WriteString("\nLARGE TEXT BLOCKS (potential content):\n")
	for _, selector := range []string{"article", "main", ".content", ".article-body", ".post-content", ".entry-content"} {
		doc.Find(selector).EachWithBreak(func(i int, s *goquery.Selection) bool {
			if i >= maxContentBlocks {
				return false
			}
			text := strings.TrimSpace(s.Text())
			if len(text) > 200 {
				classes, _ := s.Attr("class")
				fmt.Fprintf(&b, "  - <%s> class='%s'\n", goquery.NodeName(s), classes)
				fmt.Fprintf(&b, "    Length: %d chars\n", len(text))
				fmt.Fprintf(&b, "    Preview: %s...\n\n", truncate(text, 150))
			}
			return true
		})
	}

	b.WriteString("\nLINK CONTAINERS (potential list selectors):\n")
	type linkGroup struct {
		selector string
		count    int
		sample   string
	}
	groups := make(map[string]*linkGroup)
	doc.Find("a[href]").Each(func(i int, s *goquery.Selection) {
		parent := s.Parent()
		name := goquery.NodeName(parent)
		classes, _ := parent.Attr("class")
		key := name
		if classes != "" {
			key = name + "." + strings.ReplaceAll(strings.TrimSpace(classes), " ", ".")
		}
		g, ok := groups[key]
		if !ok {
			g = &linkGroup{selector: key + " a"}
			groups[key] = g
		}
		g.count++
		if g.sample == "" {
			g.sample, _ = s.Attr("href")
		}
	})
	written := 0
	for _, g := range groups {
		if g.count >= 3 && written < 5 {
			fmt.Fprintf(&b, "  - %s: %d links, e.g. %s\n", g.selector, g.count, g.sample)
			written++
		}
	}

	return b.String(), nil
}

func writeElementLine(b *strings.Builder, s *goquery.Selection) {
	fmt.Fprintf(b, "  - <%s> ", goquery.NodeName(s))
	if id, ok := s.Attr("id"); ok && id != "" {
		fmt.Fprintf(b, "id='%s' ", id)
	}
	if classes, ok := s.Attr("class"); ok && classes != "" {
		fmt.Fprintf(b, "class='%s' ", classes)
	}
	fmt.Fprintf(b, "\n    Text preview: %s...\n", truncate(strings.TrimSpace(s.Text()), maxTextPreview))
}

// MarkdownDigest converts page HTML to markdown so the analyst sees the
// page's readable content without the tag noise, truncated to keep prompts
// within token limits
func MarkdownDigest(html, baseURL string) string {
	converter := md.NewConverter(baseURL, true, nil)
	converted, err := converter.ConvertString(html)
	if err != nil || strings.TrimSpace(converted) == "" {
		// Fallback: strip tags with goquery
		doc, docErr := goquery.NewDocumentFromReader(strings.NewReader(html))
		if docErr != nil {
			return ""
		}
		converted = doc.Text()
	}

	return truncate(strings.TrimSpace(converted), maxDigestLength)
}

// truncate cuts s to at most n bytes on a rune boundary
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
