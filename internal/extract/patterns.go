package extract

import (
	"regexp"
	"strings"
)

// emailRegex is deliberately permissive: for OSINT work a false positive is
// cheaper than a missed contact. The filters below remove the common noise
// (asset filenames, tracker IDs, placeholder domains).
var emailRegex = regexp.MustCompile(`\b[A-Za-z0-9][A-Za-z0-9._%+\-]{0,63}@(?:[A-Za-z0-9\-]{1,63}\.){1,8}[A-Za-z]{2,63}\b`)

// placeholderDomains are sample domains that never identify a real contact.
var placeholderDomains = map[string]bool{
	"example.com": true, "example.org": true, "domain.com": true,
	"yoursite.com": true, "yourdomain.com": true, "email.com": true,
	"test.com": true, "sample.com": true,
}

// assetExtensions flag "emails" that are really filenames matched across an
// @ in minified JS or srcset attributes.
var assetExtensions = []string{
	".png", ".jpg", ".jpeg", ".gif", ".webp", ".svg",
	".css", ".js", ".pdf", ".doc", ".mp3", ".mp4",
}

// Local parts that are hashes or UUIDs belong to error trackers, not people.
var (
	md5LocalRegex  = regexp.MustCompile(`^[0-9a-f]{32}@`)
	uuidLocalRegex = regexp.MustCompile(`^[0-9a-f]{8}-?[0-9a-f]{4}-?[0-9a-f]{4}-?[0-9a-f]{4}-?[0-9a-f]{12}@`)
	longHexRegex   = regexp.MustCompile(`^[0-9a-f]{12,64}$`)
)

// extractEmails scans text for email addresses and filters false positives.
// Results are lower-cased and deduplicated by the caller's set.
func extractEmails(text string, into map[string]struct{}) {
	for _, match := range emailRegex.FindAllString(text, -1) {
		email := strings.ToLower(match)

		if hasAssetExtension(email) {
			continue
		}
		if md5LocalRegex.MatchString(email) || uuidLocalRegex.MatchString(email) {
			continue
		}

		at := strings.IndexByte(email, '@')
		local, domain := email[:at], email[at+1:]
		if placeholderDomains[domain] {
			continue
		}
		if longHexRegex.MatchString(local) {
			continue
		}
		// Local parts like "aaaaa" or "ababab" are generated noise.
		if len(local) > 4 && distinctRunes(local) <= 2 {
			continue
		}

		into[email] = struct{}{}
	}
}

func hasAssetExtension(s string) bool {
	for _, ext := range assetExtensions {
		if strings.Contains(s, ext) {
			return true
		}
	}
	return false
}

func distinctRunes(s string) int {
	seen := make(map[rune]struct{}, len(s))
	for _, r := range s {
		seen[r] = struct{}{}
	}
	return len(seen)
}

// phoneCandidateRegex finds number-like runs: an optional +country prefix
// followed by digits broken by spaces, dots, dashes, or parentheses.
var phoneCandidateRegex = regexp.MustCompile(`\+?\d[\d\s().\-]{6,20}\d`)

// Numeric runs that look like dates, IPs, or unix timestamps are the main
// phone false positives on real pages.
var (
	phoneDatePatterns = []*regexp.Regexp{
		regexp.MustCompile(`^20\d{6}$`),
		regexp.MustCompile(`^\d{8}$`),
		regexp.MustCompile(`^\d{6}$`),
		regexp.MustCompile(`^20\d{2}(0[1-9]|1[0-2])(0[1-9]|[12][0-9]|3[01])$`),
		regexp.MustCompile(`^(0[1-9]|1[0-2])(0[1-9]|[12][0-9]|3[01])20\d{2}$`),
	}
	ipLikeRegex     = regexp.MustCompile(`^\d{1,3}(\.\d{1,3}){3}$`)
	sequentialRegex = regexp.MustCompile(`^(?:01|12|23|34|45|56|67|78|89){4,}\d?$`)
)

// extractPhones scans text for phone numbers, normalizes them to bare digits
// (keeping a leading +), and filters date/IP/timestamp lookalikes.
func extractPhones(text string, into map[string]struct{}) {
	for _, match := range phoneCandidateRegex.FindAllString(text, -1) {
		if ipLikeRegex.MatchString(strings.TrimSpace(match)) {
			continue
		}
		normalized := normalizePhone(match)
		if normalized == "" {
			continue
		}
		into[normalized] = struct{}{}
	}
}

// normalizePhone strips punctuation, keeps a leading +, and returns an empty
// string when the candidate fails the plausibility filters.
func normalizePhone(raw string) string {
	raw = strings.TrimSpace(raw)
	plus := strings.HasPrefix(raw, "+")

	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()

	// 8-15 digits is the E.164 plausibility window.
	if len(d) < 8 || len(d) > 15 {
		return ""
	}
	for _, p := range phoneDatePatterns {
		if p.MatchString(d) {
			return ""
		}
	}
	if sequentialRegex.MatchString(d) {
		return ""
	}
	// 10-digit runs starting with 1 or 2 in the unix-timestamp range are
	// almost always timestamps in inline JS.
	if len(d) == 10 && (d[0] == '1' || d[0] == '2') {
		return ""
	}

	if plus {
		return "+" + d
	}
	return d
}
