// Package crawl implements the bounded breadth-first crawl over a seed list:
// a FIFO frontier, an invocation-local visited set, and the link admission
// policy that keeps the walk on-topic and on-origin.
package crawl

import (
	"net/url"
	"path"
	"regexp"
	"strings"
)

// blockedExtensions are asset types that are never HTML worth fetching.
var blockedExtensions = map[string]struct{}{
	".pdf": {}, ".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".webp": {},
	".svg": {}, ".ico": {}, ".zip": {}, ".gz": {}, ".tgz": {}, ".tar": {},
	".rar": {}, ".ics": {}, ".uri": {}, ".mp3": {}, ".mp4": {}, ".css": {},
	".js": {}, ".xml": {}, ".rss": {},
}

// blockedPathSegments are path pieces that mark dead archives regardless of
// how topical the rest of the URL looks.
var blockedPathSegments = map[string]struct{}{
	"archived": {},
}

var yearPathPattern = regexp.MustCompile(`/20\d{2}(?:/|$)`)

// LinkPolicy decides which discovered links join the frontier.
type LinkPolicy struct {
	// allowedHosts is keyed by host with any "www." prefix stripped.
	allowedHosts map[string]struct{}
	// keywords: a URL must contain at least one to be considered topical.
	keywords []string
	// matchYearPath additionally treats a /YYYY/ path segment as topical.
	matchYearPath bool
	// requiredPathPrefix restricts specific hosts to one sub-path.
	requiredPathPrefix map[string]string
}

// RacePolicy admits marathon-calendar style links on the seed origins.
func RacePolicy(seeds []string) LinkPolicy {
	return LinkPolicy{
		allowedHosts: hostsOf(seeds),
		keywords:     []string{"marathon", "race", "calendar", "event", "running"},
	}
}

// ArticlePolicy admits running-news style links on the seed origins.
// runnersworld.com is additionally pinned to its news section.
func ArticlePolicy(seeds []string) LinkPolicy {
	return LinkPolicy{
		allowedHosts:  hostsOf(seeds),
		keywords:      []string{"news", "article", "story"},
		matchYearPath: true,
		requiredPathPrefix: map[string]string{
			"runnersworld.com": "/news/",
		},
	}
}

func hostsOf(seeds []string) map[string]struct{} {
	hosts := make(map[string]struct{}, len(seeds))
	for _, seed := range seeds {
		if u, err := url.Parse(seed); err == nil && u.Host != "" {
			hosts[normalizeHost(u.Host)] = struct{}{}
		}
	}
	return hosts
}

func normalizeHost(host string) string {
	return strings.TrimPrefix(strings.ToLower(host), "www.")
}

// Allow reports whether an already-resolved absolute URL may join the
// frontier.
func (p LinkPolicy) Allow(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	host := normalizeHost(u.Host)
	if _, ok := p.allowedHosts[host]; !ok {
		return false
	}

	lowerPath := strings.ToLower(u.Path)
	if ext := path.Ext(lowerPath); ext != "" {
		if _, blocked := blockedExtensions[ext]; blocked {
			return false
		}
	}
	for _, segment := range strings.Split(strings.Trim(lowerPath, "/"), "/") {
		if _, blocked := blockedPathSegments[segment]; blocked {
			return false
		}
	}

	if prefix, ok := p.requiredPathPrefix[host]; ok && !strings.HasPrefix(lowerPath, prefix) {
		return false
	}

	lowerURL := strings.ToLower(rawURL)
	for _, keyword := range p.keywords {
		if strings.Contains(lowerURL, keyword) {
			return true
		}
	}
	if p.matchYearPath && yearPathPattern.MatchString(lowerPath) {
		return true
	}
	return false
}
