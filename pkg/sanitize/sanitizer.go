package sanitize

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"
)

// Disclosure is appended once whenever an untrusted link had to be removed
// from the visible answer.
const Disclosure = "Some links were removed because they could not be verified as trusted sources."

var (
	urlPattern       = regexp.MustCompile(`https?://[^\s<>"')\]]+`)
	fencePattern     = regexp.MustCompile("(?s)```[a-zA-Z]*\\s*[\\[{].*?```")
	manyBlankLines   = regexp.MustCompile(`\n{3,}`)
	repeatedSpaces   = regexp.MustCompile(`[ \t]{2,}`)
	spaceBeforePunct = regexp.MustCompile(`[ \t]+([.,;:!?])`)
)

// Sanitizer is the last line of defense between the model and the end user.
// The same rules are stated in the system instruction, but nothing here
// trusts the model's compliance: every invariant is re-enforced on the text.
type Sanitizer struct {
	toolNames      *regexp.Regexp
	allowedDomains []string
}

// New builds a sanitizer that scrubs the given tool names and keeps only
// hyperlinks whose host belongs to (or is a subdomain of) an allowed domain.
func New(toolNames []string, allowedDomains []string) *Sanitizer {
	s := &Sanitizer{}
	var quoted []string
	for _, name := range toolNames {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		quoted = append(quoted, regexp.QuoteMeta(name))
	}
	if len(quoted) > 0 {
		s.toolNames = regexp.MustCompile("(?i)(?:" + strings.Join(quoted, "|") + ")")
	}
	for _, domain := range allowedDomains {
		domain = strings.ToLower(strings.TrimSpace(domain))
		if domain != "" {
			s.allowedDomains = append(s.allowedDomains, domain)
		}
	}
	return s
}

// Format enforces the output-safety invariants on raw model text: no tool
// name substrings, no raw serialized blobs, no links outside the allow-list.
// Format is idempotent; re-sanitizing safe text is a no-op.
func (s *Sanitizer) Format(raw string) string {
	text := s.scrubToolNames(raw)
	text = s.scrubDataBlobs(text)
	text, dropped := s.filterLinks(text)
	text = tidyWhitespace(text)
	if dropped && !strings.Contains(text, Disclosure) {
		if text != "" {
			text += "\n\n"
		}
		text += Disclosure
	}
	return text
}

// scrubToolNames removes registered tool-name substrings. Removal repeats
// until stable so a name cannot be reassembled out of adjoining fragments.
func (s *Sanitizer) scrubToolNames(text string) string {
	if s.toolNames == nil {
		return text
	}
	for i := 0; i < 8; i++ {
		next := s.toolNames.ReplaceAllString(text, "")
		if next == text {
			return next
		}
		text = next
	}
	return text
}

// scrubDataBlobs removes fenced code blocks carrying serialized data and any
// balanced brace- or bracket-delimited region that parses as JSON holding
// key/value structure. Prose brackets like citation markers survive because
// they carry no colon-separated fields.
func (s *Sanitizer) scrubDataBlobs(text string) string {
	text = fencePattern.ReplaceAllString(text, "")

	var sb strings.Builder
	sb.Grow(len(text))
	for i := 0; i < len(text); {
		ch := text[i]
		if ch != '{' && ch != '[' {
			sb.WriteByte(ch)
			i++
			continue
		}
		end := matchBalanced(text, i)
		if end < 0 {
			sb.WriteByte(ch)
			i++
			continue
		}
		segment := text[i : end+1]
		if gjson.Valid(segment) && strings.Contains(segment, ":") {
			i = end + 1
			continue
		}
		sb.WriteByte(ch)
		i++
	}
	return sb.String()
}

// matchBalanced returns the index of the delimiter closing the one opening at
// start, honoring JSON string literals, or -1 when unbalanced.
func matchBalanced(text string, start int) int {
	open := text[start]
	var close byte = '}'
	if open == '[' {
		close = ']'
	}
	depth := 0
	inString := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch ch {
			case '\\':
				i++
			case '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// filterLinks validates every URL against the allow-list and silently drops
// the ones that are malformed or unlisted. The second return reports whether
// anything was removed.
func (s *Sanitizer) filterLinks(text string) (string, bool) {
	dropped := false
	out := urlPattern.ReplaceAllStringFunc(text, func(link string) string {
		if s.linkAllowed(link) {
			return link
		}
		dropped = true
		return ""
	})
	return out, dropped
}

func (s *Sanitizer) linkAllowed(link string) bool {
	parsed, err := url.Parse(link)
	if err != nil || parsed.Hostname() == "" {
		return false
	}
	host := strings.ToLower(parsed.Hostname())
	for _, domain := range s.allowedDomains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

func tidyWhitespace(text string) string {
	text = repeatedSpaces.ReplaceAllString(text, " ")
	text = spaceBeforePunct.ReplaceAllString(text, "$1")
	text = manyBlankLines.ReplaceAllString(text, "\n\n")
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		lines = append(lines, strings.TrimRight(line, " \t"))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
