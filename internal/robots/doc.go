// Package robots parses robots.txt files and answers path-permission
// queries for the crawler.
//
// Beyond access rules, a robots.txt file is itself an OSINT artifact:
// operators disallow the paths they most want hidden. Disallowed paths
// matching known internal-surface names (admin consoles, backups, VCS
// metadata) are flagged as sensitive so the crawl can report them without
// ever fetching them.
package robots
