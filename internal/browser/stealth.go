package browser

import (
	"fmt"
	"math/rand"
	"time"
)

// Realistic desktop Chrome identities, rotated per page. Sites that
// serve sitemaps only to browser-like clients key on these plus the
// accompanying client-hint headers.
var stealthUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36",
}

var stealthLanguages = []string{
	"en-US,en;q=0.9",
	"en-GB,en;q=0.9",
	"en-US,en;q=0.8,de;q=0.5",
}

func stealthUserAgent() string {
	return stealthUserAgents[rand.Intn(len(stealthUserAgents))]
}

func stealthHeaders() map[string]string {
	return map[string]string{
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": stealthLanguages[rand.Intn(len(stealthLanguages))],
		"Sec-Fetch-Dest":  "document",
		"Sec-Fetch-Mode":  "navigate",
		"Sec-Fetch-Site":  "none",
		"Sec-Fetch-User":  "?1",
		"Sec-Ch-Ua":       fmt.Sprintf(`"Chromium";v="%d", "Google Chrome";v="%d", "Not-A.Brand";v="99"`, 126, 126),
	}
}

// humanPause sleeps 200-900ms so navigation timing does not look like a
// tight scripted loop.
func humanPause() {
	time.Sleep(time.Duration(200+rand.Intn(700)) * time.Millisecond)
}
