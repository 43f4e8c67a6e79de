package pipeline

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// AllowedStyleProperties lists the inline style properties kept by sanitation.
// Longhands of a listed shorthand (margin-top, border-left-color) are kept too.
var AllowedStyleProperties = []string{
	"font-size",
	"font-family",
	"color",
	"text-align",
	"margin",
	"padding",
	"border",
	"line-height",
	"font-weight",
	"font-style",
	"text-decoration",
	"vertical-align",
	"width",
	"height",
}

var (
	bodyOpenPattern      = regexp.MustCompile(`(?is)<body[^>]*>`)
	wordSectionPattern   = regexp.MustCompile(`(?is)<div[^>]*\bclass\s*=\s*["']?WordSection\d*["']?[^>]*>`)
	conditionalPattern   = regexp.MustCompile(`(?is)<!--\[if[^\]]*\]>.*?<!\[endif\]-->`)
	downlevelPattern     = regexp.MustCompile(`(?i)<!\[(?:if[^\]]*|endif)\]>`)
	vendorTagPattern     = regexp.MustCompile(`(?is)</?[ovw]:[^>]*>`)
	xmlnsPattern         = regexp.MustCompile(`(?i)\s+xmlns(?::[\w-]+)?\s*=\s*(?:"[^"]*"|'[^']*'|[^\s>]+)`)
	residualClassPattern = regexp.MustCompile(`\s+class=(?:"Mso[^"]*"|'Mso[^']*'|Mso[\w-]*)`)
)

// Sanitizer turns word-processor HTML exports into editable fragments.
type Sanitizer struct {
	signature *SignatureMounter
}

// NewSanitizer creates a Sanitizer that ensures the signature anchor with
// the given mounter.
func NewSanitizer(signature *SignatureMounter) *Sanitizer {
	return &Sanitizer{signature: signature}
}

// Sanitize strips vendor markup from source and returns the editable fragment.
// The result always carries exactly one signature placeholder.
// Sanitize is idempotent: sanitizing its own output returns it unchanged.
func (s *Sanitizer) Sanitize(ctx context.Context, source string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	body := StripVendorMarkup(ExtractBody(source))

	root, err := parseFragment(body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSanitize, err)
	}
	cleanTree(root)

	if s.signature != nil {
		if err := s.signature.ensure(root); err != nil {
			return "", fmt.Errorf("%w: %v", ErrSanitize, err)
		}
	}

	out, err := renderChildren(root)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSanitize, err)
	}
	return residualClassPattern.ReplaceAllString(out, ""), nil
}

// ExtractBody returns the interior of the <body> element. Without a body it
// falls back to the contents of the WordSection container div, and without
// that to the whole text.
func ExtractBody(source string) string {
	if loc := bodyOpenPattern.FindStringIndex(source); loc != nil {
		rest := source[loc[1]:]
		lower := strings.ToLower(rest)
		if end := strings.LastIndex(lower, "</body>"); end != -1 {
			return rest[:end]
		}
		if end := strings.LastIndex(lower, "</html>"); end != -1 {
			return rest[:end]
		}
		return rest
	}

	if loc := wordSectionPattern.FindStringIndex(source); loc != nil {
		rest := source[loc[1]:]
		if end := strings.LastIndex(strings.ToLower(rest), "</div>"); end != -1 {
			return rest[:end]
		}
		return rest
	}

	return source
}

// StripVendorMarkup removes conditional comments, o:/w:/v: tags and xmlns
// declarations. Text inside stripped tags is kept.
func StripVendorMarkup(s string) string {
	s = conditionalPattern.ReplaceAllString(s, "")
	s = downlevelPattern.ReplaceAllString(s, "")
	s = vendorTagPattern.ReplaceAllString(s, "")
	return xmlnsPattern.ReplaceAllString(s, "")
}

// FilterClasses drops class names carrying a vendor marker.
func FilterClasses(class string) string {
	var kept []string
	for _, name := range strings.Fields(class) {
		if isVendorClass(name) {
			continue
		}
		kept = append(kept, name)
	}
	return strings.Join(kept, " ")
}

// FilterStyle keeps allow-listed declarations of an inline style and
// re-serializes them as prop:value pairs joined by semicolons.
func FilterStyle(style string) string {
	var kept []string
	for _, decl := range SplitDeclarations(style) {
		prop, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		value = strings.TrimSpace(value)
		if value == "" || !IsAllowedStyleProperty(prop) {
			continue
		}
		kept = append(kept, prop+":"+value)
	}
	return strings.Join(kept, ";")
}

// IsAllowedStyleProperty reports whether a lowercase property name passes
// the style allow-list.
func IsAllowedStyleProperty(prop string) bool {
	if strings.HasPrefix(prop, "-") || strings.HasPrefix(prop, "mso-") {
		return false
	}
	switch prop {
	case "min-width", "max-width", "min-height", "max-height":
		return true
	}
	for _, allowed := range AllowedStyleProperties {
		if prop == allowed || strings.HasPrefix(prop, allowed+"-") {
			return true
		}
	}
	return false
}

func isVendorClass(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "mso") || strings.Contains(lower, "wordsection")
}

// cleanTree filters classes, styles and namespaced attributes on every element.
func cleanTree(n *html.Node) {
	if n.Type == html.ElementNode {
		n.Attr = cleanAttributes(n.Attr)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		cleanTree(c)
	}
}

func cleanAttributes(attrs []html.Attribute) []html.Attribute {
	kept := attrs[:0]
	for _, a := range attrs {
		key := strings.ToLower(a.Key)
		switch {
		case a.Namespace != "", strings.Contains(key, ":"), strings.HasPrefix(key, "xmlns"):
			continue
		case key == "class":
			a.Val = FilterClasses(a.Val)
		case key == "style":
			a.Val = FilterStyle(a.Val)
		default:
			kept = append(kept, a)
			continue
		}
		if a.Val != "" {
			kept = append(kept, a)
		}
	}
	return kept
}
