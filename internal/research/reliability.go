package research

import (
	"net/url"
	"strings"
)

// Reliability codes attached to every source.
const (
	ReliabilityCommunity = 1
	ReliabilityNews      = 2
	ReliabilityOfficial  = 3
)

// Official domains match by suffix; news and community domains match
// anywhere in the host.
var (
	officialDomains = []string{
		"gov.uk",
		"ofsted.gov.uk",
		"isi.net",
		"dfe.org.uk",
		"education.gov.uk",
		"schooljotter2.com",
	}
	newsDomains = []string{
		"theguardian.com",
		"standard.co.uk",
		"telegraph.co.uk",
		"times.co.uk",
		"news.sky.com",
		"bbc.co.uk",
		"bbc.com",
		"chiswickcalendar.co.uk",
		"richmondandtwickenhamtimes.co.uk",
		"schoolsweek.co.uk",
	}
	communityDomains = []string{
		"mumsnet.com",
		"reddit.com",
		"netmums.com",
		"facebook.com",
		"instagram.com",
		"twitter.com",
		"x.com",
	}
)

// ClassifyReliability rates a source URL by its host: 3 for official and
// inspection bodies, 1 for forums and social media, 2 for news and
// everything else.
func ClassifyReliability(rawURL string) int {
	host := ""
	if u, err := url.Parse(rawURL); err == nil {
		host = strings.ToLower(u.Host)
	}

	for _, d := range officialDomains {
		if strings.HasSuffix(host, d) {
			return ReliabilityOfficial
		}
	}
	for _, d := range newsDomains {
		if strings.Contains(host, d) {
			return ReliabilityNews
		}
	}
	for _, d := range communityDomains {
		if strings.Contains(host, d) {
			return ReliabilityCommunity
		}
	}
	return ReliabilityNews
}
