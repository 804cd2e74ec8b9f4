package llm

import (
	"net/http"
	"time"

	"github.com/ppiankov/schoolscope/internal/util"
)

// newHTTPClient builds the client used by the JSON providers. A zero timeout
// leaves request deadlines to the caller's context.
func newHTTPClient(timeout time.Duration, config Config) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: util.NewProxyFunc(config.HTTPProxy, config.HTTPSProxy, config.NoProxy),
		},
	}
}
