package extract

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/gianlucabassani/browsint/internal/model"
)

// ParseError reports HTML that could not be parsed at all. The page is
// marked failed; the run continues.
type ParseError struct {
	// URL is the page that failed to parse.
	URL string

	// Err is the underlying parser error.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error for %s: %v", e.URL, e.Err)
}

// Unwrap exposes the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Extractor pulls structured facts from fetched HTML. One Extractor is
// shared by all workers of a run; it holds only immutable configuration.
type Extractor struct {
	kinds map[model.ExtractionKind]bool
}

// New creates an Extractor with the given enabled kinds. No kinds means all
// kinds are enabled.
func New(kinds ...model.ExtractionKind) *Extractor {
	if len(kinds) == 0 {
		kinds = model.AllKinds()
	}
	enabled := make(map[model.ExtractionKind]bool, len(kinds))
	for _, k := range kinds {
		enabled[k] = true
	}
	return &Extractor{kinds: enabled}
}

// Enabled reports whether the given kind is extracted.
func (e *Extractor) Enabled(kind model.ExtractionKind) bool {
	return e.kinds[kind]
}

// walkState accumulates one DOM pass.
type walkState struct {
	text       strings.Builder
	title      string
	meta       map[string]string
	forms      []model.FormDescriptor
	scriptSrcs []string
	links      []string
	linkSeen   map[string]bool
	mailto     []string
	tel        []string
}

// Extract parses htmlBody and returns the extraction record plus the page's
// outbound links. baseURL must be the final post-redirect URL of the page:
// relative links are resolved against it.
//
// Outbound links are every same-document <a href> in absolute form,
// deduplicated, returned regardless of the enabled kinds and of any crawl
// filters; the frontier decides what is worth following.
func (e *Extractor) Extract(htmlBody []byte, baseURL string) (*model.ExtractionRecord, []string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, nil, &ParseError{URL: baseURL, Err: err}
	}

	doc, err := html.Parse(bytes.NewReader(htmlBody))
	if err != nil {
		return nil, nil, &ParseError{URL: baseURL, Err: err}
	}

	st := &walkState{
		meta:     make(map[string]string),
		linkSeen: make(map[string]bool),
	}
	walk(doc, base, st)

	record := model.NewExtractionRecord(baseURL)

	// Pattern scanning covers visible text, comments, and the mailto:/tel:
	// attribute values collected during the walk, so obfuscated contacts in
	// markup follow the same policy as visible ones.
	scanText := st.text.String()

	if e.kinds[model.KindEmails] {
		extractEmails(scanText, record.Emails)
		for _, addr := range st.mailto {
			extractEmails(addr, record.Emails)
		}
	}

	if e.kinds[model.KindPhones] {
		extractPhones(scanText, record.Phones)
		for _, num := range st.tel {
			if n := normalizePhone(num); n != "" {
				record.Phones[n] = struct{}{}
			}
		}
	}

	if e.kinds[model.KindSocial] {
		for _, link := range st.links {
			if u, err := url.Parse(link); err == nil && isSocialHost(u.Hostname()) {
				record.SocialLinks[link] = struct{}{}
			}
		}
	}

	if e.kinds[model.KindMetadata] {
		record.Metadata = model.PageMetadata{
			Title:       st.title,
			Description: firstOf(st.meta, "description", "og:description"),
			Keywords:    st.meta["keywords"],
			Generator:   st.meta["generator"],
		}
	}

	if e.kinds[model.KindForms] {
		record.Forms = st.forms
	}

	if e.kinds[model.KindTechnologies] {
		detectTechnologies(string(htmlBody), st.scriptSrcs, st.meta["generator"], record.Technologies)
	}

	return record, st.links, nil
}

// walk performs the single DOM pass, dispatching on node type.
func walk(n *html.Node, base *url.URL, st *walkState) {
	switch n.Type {
	case html.ElementNode:
		processElement(n, base, st)
		// Script and style text is not prose; keep it out of the contact
		// patterns (script srcs are handled separately).
		if n.Data == "script" || n.Data == "style" {
			return
		}
	case html.TextNode:
		st.text.WriteString(n.Data)
		st.text.WriteString(" ")
	case html.CommentNode:
		// Comments regularly hide contact details and old markup.
		st.text.WriteString(n.Data)
		st.text.WriteString(" ")
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, base, st)
	}
}

func processElement(n *html.Node, base *url.URL, st *walkState) {
	switch n.Data {
	case "title":
		if n.FirstChild != nil && n.FirstChild.Type == html.TextNode && st.title == "" {
			st.title = strings.TrimSpace(n.FirstChild.Data)
		}

	case "a":
		href := strings.TrimSpace(attr(n, "href"))
		switch {
		case href == "" || href == "#":
		case strings.HasPrefix(href, "mailto:"):
			st.mailto = append(st.mailto, strings.TrimPrefix(href, "mailto:"))
		case strings.HasPrefix(href, "tel:"):
			st.tel = append(st.tel, strings.TrimPrefix(href, "tel:"))
		case strings.HasPrefix(href, "javascript:"), strings.HasPrefix(href, "data:"):
		default:
			if resolved := resolveRef(base, href); resolved != "" && !st.linkSeen[resolved] {
				st.linkSeen[resolved] = true
				st.links = append(st.links, resolved)
			}
		}

	case "meta":
		name := attr(n, "name")
		if name == "" {
			name = attr(n, "property")
		}
		if content := attr(n, "content"); name != "" && content != "" {
			st.meta[strings.ToLower(name)] = content
		}

	case "script":
		if src := attr(n, "src"); src != "" {
			st.scriptSrcs = append(st.scriptSrcs, src)
		}

	case "form":
		form := model.FormDescriptor{
			Action: resolveRef(base, attr(n, "action")),
			Method: strings.ToUpper(attr(n, "method")),
		}
		if form.Method == "" {
			form.Method = "GET"
		}
		collectFormFields(n, &form)
		st.forms = append(st.forms, form)
	}
}

// collectFormFields gathers named input, select, and textarea elements.
func collectFormFields(n *html.Node, form *model.FormDescriptor) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "input", "select", "textarea":
			field := model.FormField{
				Name: attr(n, "name"),
				Type: attr(n, "type"),
			}
			if field.Type == "" {
				if n.Data == "input" {
					field.Type = "text"
				} else {
					field.Type = n.Data
				}
			}
			if field.Name != "" {
				form.Fields = append(form.Fields, field)
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectFormFields(c, form)
	}
}

// resolveRef resolves href against base, returning "" for unparseable refs.
func resolveRef(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func firstOf(m map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := m[k]; v != "" {
			return v
		}
	}
	return ""
}
