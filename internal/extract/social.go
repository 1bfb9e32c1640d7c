package extract

import "strings"

// socialHosts is the allow-list of social platform hosts. A link is a social
// link when its host (or a www-prefixed form) appears here. The list covers
// the platforms whose profile pages are strong identity vectors.
var socialHosts = map[string]bool{
	"facebook.com":  true,
	"fb.com":        true,
	"linkedin.com":  true,
	"twitter.com":   true,
	"x.com":         true,
	"instagram.com": true,
	"instagr.am":    true,
	"github.com":    true,
	"youtube.com":   true,
	"youtu.be":      true,
	"t.me":          true,
	"telegram.me":   true,
	"tiktok.com":    true,
	"reddit.com":    true,
}

// isSocialHost reports whether host belongs to a known social platform,
// treating any subdomain (www., m., it-it.facebook.com) as a match.
func isSocialHost(host string) bool {
	host = strings.ToLower(host)
	if socialHosts[host] {
		return true
	}
	for i := strings.IndexByte(host, '.'); i >= 0; i = strings.IndexByte(host, '.') {
		host = host[i+1:]
		if socialHosts[host] {
			return true
		}
	}
	return false
}
