package model

import (
	"encoding/json"
	"sort"
)

// ExtractionKind identifies one category of structured data pulled from a page.
type ExtractionKind string

// The supported extraction kinds. Disabled kinds are simply omitted from the
// record; there is no error path for an unwanted kind.
const (
	KindEmails       ExtractionKind = "emails"
	KindPhones       ExtractionKind = "phones"
	KindSocial       ExtractionKind = "social"
	KindMetadata     ExtractionKind = "metadata"
	KindForms        ExtractionKind = "forms"
	KindTechnologies ExtractionKind = "technologies"
)

// AllKinds returns every extraction kind. The result is a fresh slice the
// caller may modify.
func AllKinds() []ExtractionKind {
	return []ExtractionKind{
		KindEmails, KindPhones, KindSocial,
		KindMetadata, KindForms, KindTechnologies,
	}
}

// PageMetadata holds the descriptive metadata of one page.
type PageMetadata struct {
	// Title is the text of the <title> element.
	Title string `json:"title,omitempty"`

	// Description is the meta description, falling back to og:description.
	Description string `json:"description,omitempty"`

	// Keywords is the raw meta keywords value.
	Keywords string `json:"keywords,omitempty"`

	// Generator is the meta generator value (e.g. "WordPress 6.4").
	// It also feeds technology detection.
	Generator string `json:"generator,omitempty"`
}

// FormField describes one named input inside a form.
type FormField struct {
	// Name is the field's name attribute.
	Name string `json:"name"`

	// Type is the input type (text, password, hidden, select, textarea, ...).
	Type string `json:"type"`
}

// FormDescriptor describes an HTML form found on a page.
type FormDescriptor struct {
	// Action is the form action resolved to an absolute URL.
	Action string `json:"action"`

	// Method is the HTTP method, upper-cased, defaulting to GET.
	Method string `json:"method"`

	// Fields lists the named input/select/textarea elements.
	Fields []FormField `json:"fields,omitempty"`
}

// ExtractionRecord holds the structured facts extracted from one or more
// pages. Set-valued members are maps keyed by the value itself so that
// per-run aggregation is a plain union.
//
// Design decision: We use map[string]struct{} rather than slices for the
// set members because:
//  1. Union across pages is the common operation during a run
//  2. Deduplication is required by contract, not optional
//  3. Sorted slices are produced once, at read time, via the accessors
type ExtractionRecord struct {
	// SourceURL is the page the record was extracted from. For an aggregated
	// record it is the seed URL.
	SourceURL string `json:"source_url"`

	// Emails are the extracted email addresses, lower-cased.
	Emails map[string]struct{} `json:"-"`

	// Phones are the extracted phone numbers in normalized digit form.
	Phones map[string]struct{} `json:"-"`

	// SocialLinks are links whose host matched the social platform allow-list.
	SocialLinks map[string]struct{} `json:"-"`

	// Technologies are detected technology names from the signature table.
	Technologies map[string]struct{} `json:"-"`

	// Metadata is the page metadata. When aggregating, the seed page's
	// metadata wins (first non-empty).
	Metadata PageMetadata `json:"metadata"`

	// Forms lists every form found, in document order per page.
	Forms []FormDescriptor `json:"forms,omitempty"`
}

// NewExtractionRecord returns an empty record for the given source URL.
func NewExtractionRecord(sourceURL string) *ExtractionRecord {
	return &ExtractionRecord{
		SourceURL:    sourceURL,
		Emails:       make(map[string]struct{}),
		Phones:       make(map[string]struct{}),
		SocialLinks:  make(map[string]struct{}),
		Technologies: make(map[string]struct{}),
	}
}

// Merge unions other into r. Metadata is kept from r unless empty.
func (r *ExtractionRecord) Merge(other *ExtractionRecord) {
	if other == nil {
		return
	}
	for e := range other.Emails {
		r.Emails[e] = struct{}{}
	}
	for p := range other.Phones {
		r.Phones[p] = struct{}{}
	}
	for s := range other.SocialLinks {
		r.SocialLinks[s] = struct{}{}
	}
	for t := range other.Technologies {
		r.Technologies[t] = struct{}{}
	}
	r.Forms = append(r.Forms, other.Forms...)
	if r.Metadata.Title == "" {
		r.Metadata.Title = other.Metadata.Title
	}
	if r.Metadata.Description == "" {
		r.Metadata.Description = other.Metadata.Description
	}
	if r.Metadata.Keywords == "" {
		r.Metadata.Keywords = other.Metadata.Keywords
	}
	if r.Metadata.Generator == "" {
		r.Metadata.Generator = other.Metadata.Generator
	}
}

// EmailList returns the emails as a sorted slice.
func (r *ExtractionRecord) EmailList() []string { return sortedKeys(r.Emails) }

// PhoneList returns the phone numbers as a sorted slice.
func (r *ExtractionRecord) PhoneList() []string { return sortedKeys(r.Phones) }

// SocialList returns the social links as a sorted slice.
func (r *ExtractionRecord) SocialList() []string { return sortedKeys(r.SocialLinks) }

// TechnologyList returns the detected technologies as a sorted slice.
func (r *ExtractionRecord) TechnologyList() []string { return sortedKeys(r.Technologies) }

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// extractionJSON is the serializable form of ExtractionRecord.
// The set members marshal as sorted slices for stable output.
type extractionJSON struct {
	SourceURL    string           `json:"source_url"`
	Emails       []string         `json:"emails,omitempty"`
	Phones       []string         `json:"phones,omitempty"`
	SocialLinks  []string         `json:"social_links,omitempty"`
	Technologies []string         `json:"technologies,omitempty"`
	Metadata     PageMetadata     `json:"metadata"`
	Forms        []FormDescriptor `json:"forms,omitempty"`
}

// MarshalJSON serializes the set members as sorted slices.
func (r *ExtractionRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(extractionJSON{
		SourceURL:    r.SourceURL,
		Emails:       r.EmailList(),
		Phones:       r.PhoneList(),
		SocialLinks:  r.SocialList(),
		Technologies: r.TechnologyList(),
		Metadata:     r.Metadata,
		Forms:        r.Forms,
	})
}

// UnmarshalJSON restores the set members from their slice form.
func (r *ExtractionRecord) UnmarshalJSON(data []byte) error {
	var ej extractionJSON
	if err := json.Unmarshal(data, &ej); err != nil {
		return err
	}
	rec := NewExtractionRecord(ej.SourceURL)
	for _, e := range ej.Emails {
		rec.Emails[e] = struct{}{}
	}
	for _, p := range ej.Phones {
		rec.Phones[p] = struct{}{}
	}
	for _, s := range ej.SocialLinks {
		rec.SocialLinks[s] = struct{}{}
	}
	for _, t := range ej.Technologies {
		rec.Technologies[t] = struct{}{}
	}
	rec.Metadata = ej.Metadata
	rec.Forms = ej.Forms
	*r = *rec
	return nil
}
