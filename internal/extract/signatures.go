package extract

import (
	"regexp"
	"strings"
)

// signature is one technology fingerprint. A technology is reported when any
// of its markers hits; absence of every marker just means an empty entry.
type signature struct {
	// name is the reported technology name.
	name string

	// scriptSrc matches against <script src> values.
	scriptSrc *regexp.Regexp

	// html are plain substrings searched in the raw document.
	html []string

	// generator matches against the meta generator value.
	generator string
}

// signatures is the fixed fingerprint table: CMS markers, JavaScript
// libraries, and analytics trackers. Best effort; the table trades
// completeness for zero network cost.
var signatures = []signature{
	// CMS / platforms
	{name: "WordPress", scriptSrc: regexp.MustCompile(`wp-(content|includes)`), html: []string{"wp-content", "wp-includes"}, generator: "wordpress"},
	{name: "Drupal", html: []string{"drupal-css", "Drupal.settings"}, generator: "drupal"},
	{name: "Joomla", html: []string{"/media/jui/", "joomla"}, generator: "joomla"},
	{name: "Shopify", html: []string{"Powered by Shopify", "cdn.shopify.com"}},
	{name: "Squarespace", html: []string{"squarespace.com"}, generator: "squarespace"},
	{name: "Wix", html: []string{"wix.com", "X-Wix-"}, generator: "wix"},

	// JavaScript libraries
	{name: "jQuery", scriptSrc: regexp.MustCompile(`jquery(-[0-9.]+)?(\.min)?\.js`), html: []string{"window.jQuery"}},
	{name: "React", scriptSrc: regexp.MustCompile(`react(-dom)?(-[0-9.]+)?(\.min|\.production)?(\.min)?\.js`), html: []string{"React.createElement", "ReactDOM.render", "data-reactroot"}},
	{name: "Vue.js", scriptSrc: regexp.MustCompile(`vue(-[0-9.]+)?(\.min)?\.js`), html: []string{"new Vue(", "data-v-app"}},
	{name: "AngularJS", scriptSrc: regexp.MustCompile(`angular(-[0-9.]+)?(\.min)?\.js`), html: []string{"ng-app", "angular.module"}},
	{name: "Bootstrap", scriptSrc: regexp.MustCompile(`bootstrap(-[0-9.]+)?(\.bundle)?(\.min)?\.js`)},
	{name: "D3.js", scriptSrc: regexp.MustCompile(`\bd3(-[0-9.]+)?(\.min)?\.js`)},
	{name: "Lodash", scriptSrc: regexp.MustCompile(`lodash(-[0-9.]+)?(\.min)?\.js`)},

	// Analytics / trackers
	{name: "Google Analytics", scriptSrc: regexp.MustCompile(`google-analytics\.com/analytics\.js|googletagmanager\.com/gtag/js`), html: []string{"gtag('config'"}},
	{name: "Google Tag Manager", scriptSrc: regexp.MustCompile(`googletagmanager\.com/gtm\.js`), html: []string{"googletagmanager.com/gtm.js"}},
	{name: "Facebook Pixel", scriptSrc: regexp.MustCompile(`connect\.facebook\.net/.*/fbevents\.js`), html: []string{"fbq('init'"}},
	{name: "Matomo", scriptSrc: regexp.MustCompile(`matomo\.js|piwik\.js`), html: []string{"_paq.push"}},
	{name: "Hotjar", scriptSrc: regexp.MustCompile(`static\.hotjar\.com`), html: []string{"hj('event'"}},
}

// detectTechnologies matches the signature table against the raw HTML, the
// collected script srcs, and the meta generator value.
func detectTechnologies(rawHTML string, scriptSrcs []string, generator string, into map[string]struct{}) {
	genLower := strings.ToLower(generator)
	for _, sig := range signatures {
		if sig.generator != "" && genLower != "" && strings.Contains(genLower, sig.generator) {
			into[sig.name] = struct{}{}
			continue
		}
		if sig.scriptSrc != nil {
			for _, src := range scriptSrcs {
				if sig.scriptSrc.MatchString(src) {
					into[sig.name] = struct{}{}
					break
				}
			}
			if _, hit := into[sig.name]; hit {
				continue
			}
		}
		for _, marker := range sig.html {
			if strings.Contains(rawHTML, marker) {
				into[sig.name] = struct{}{}
				break
			}
		}
	}

	// The generator tag itself is a finding even without a table entry:
	// "WordPress 6.4" or "Hugo 0.120" name the stack directly.
	if generator != "" {
		if _, hit := into[generatorProduct(generator)]; !hit {
			into[generatorProduct(generator)] = struct{}{}
		}
	}
}

// generatorProduct trims a version suffix from a meta generator value,
// turning "WordPress 6.4.2" into "WordPress".
func generatorProduct(generator string) string {
	fields := strings.Fields(generator)
	if len(fields) == 0 {
		return generator
	}
	// Keep leading fields until one starts with a digit.
	var product []string
	for _, f := range fields {
		if f[0] >= '0' && f[0] <= '9' {
			break
		}
		product = append(product, f)
	}
	if len(product) == 0 {
		return generator
	}
	return strings.Join(product, " ")
}
