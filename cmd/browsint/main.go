// Package main provides the entry point for the browsint CLI.
//
// Browsint crawls a website, extracts OSINT artifacts (emails, phone
// numbers, social links, forms, technologies), and enriches targets
// (domains, email addresses, usernames) through external intelligence
// sources.
//
// Usage:
//
//	browsint crawl <seed-url>
//	browsint profile --type domain <value>
//
// See --help for all available options.
package main

// main is the entry point for browsint.
func main() {
	Execute()
}
