package observability

import (
	"net/http"
	"time"

	"github.com/aws/aws-xray-sdk-go/xray"
)

// NewHTTPClient builds the shared outbound HTTP client for upstream calls.
// When tracing is enabled (Lambda deployments) the client is wrapped with
// X-Ray so each third-party call shows up as a subsegment.
func NewHTTPClient(timeout time.Duration, tracing bool) *http.Client {
	client := &http.Client{
		Timeout: timeout,
	}

	if tracing {
		return xray.Client(client)
	}

	return client
}
