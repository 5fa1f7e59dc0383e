package probe

import (
	"context"
	"net/url"

	"github.com/hamed0406/uptimecore/internal/domain"
)

const DefaultPagespeedEndpoint = "https://pagespeedonline.googleapis.com/pagespeedonline/v5/runPagespeed"

var pagespeedCategories = []string{"seo", "accessibility", "best-practices", "performance"}

// PagespeedChecker runs the monitor URL through PageSpeed Insights and
// reports the raw Lighthouse response as payload.
type PagespeedChecker struct {
	HTTP     *HTTPChecker
	Endpoint string
	APIKey   string
}

func (p *PagespeedChecker) Check(ctx context.Context, m *domain.Monitor) domain.ProbeResult {
	target := *m
	target.URL = p.buildURL(m.URL)
	return p.HTTP.Check(ctx, &target)
}

func (p *PagespeedChecker) buildURL(site string) string {
	endpoint := p.Endpoint
	if endpoint == "" {
		endpoint = DefaultPagespeedEndpoint
	}
	q := url.Values{}
	q.Set("url", site)
	for _, c := range pagespeedCategories {
		q.Add("category", c)
	}
	if p.APIKey != "" {
		q.Set("key", p.APIKey)
	}
	return endpoint + "?" + q.Encode()
}
