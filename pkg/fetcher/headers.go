package fetcher

import "net/http"

// HeaderTemplate holds the configurable part of the browser-like header set.
// The origin rejects or throttles requests that do not look like a browser
// loading an <img> from its own pages.
type HeaderTemplate struct {
	UserAgent      string
	Accept         string
	AcceptLanguage string
	Referer        string
}

func DefaultHeaderTemplate() HeaderTemplate {
	return HeaderTemplate{
		UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:144.0) Gecko/20100101 Firefox/144.0",
		Accept:         "image/avif,image/webp,image/apng,image/svg+xml,image/*,*/*;q=0.8",
		AcceptLanguage: "en-US,en;q=0.9",
		Referer:        "https://imgur.com/",
	}
}

func (template HeaderTemplate) Apply(header http.Header) {
	header.Set("User-Agent", template.UserAgent)
	header.Set("Accept", template.Accept)
	header.Set("Accept-Language", template.AcceptLanguage)
	header.Set("Referer", template.Referer)

	header.Set("Accept-Encoding", "gzip, deflate")
	header.Set("DNT", "1")
	header.Set("Sec-Fetch-Dest", "image")
	header.Set("Sec-Fetch-Mode", "no-cors")
	header.Set("Sec-Fetch-Site", "cross-site")
}
