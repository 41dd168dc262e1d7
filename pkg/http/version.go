package http

import (
	"net/http"

	"github.com/glorpus-work/kagglehub/internal/logger"
	"github.com/hashicorp/go-version"
)

// HubVersionHeader carries the latest client version known to the server.
const HubVersionHeader = "X-Kaggle-HubVersion"

var clientVersion = version.Must(version.NewVersion(ClientVersion))

// checkHubVersion warns once per client when the server advertises a newer
// client release. Unparseable versions are ignored.
func (hc *HTTPClient) checkHubVersion(resp *http.Response) {
	raw := resp.Header.Get(HubVersionHeader)
	if raw == "" || hc.warnedHub.Load() {
		return
	}
	latest, err := version.NewVersion(raw)
	if err != nil {
		logger.Debug("Ignoring unparseable hub version", logger.Fields{"version": raw})
		return
	}
	if !latest.GreaterThan(clientVersion) {
		return
	}
	if hc.warnedHub.CompareAndSwap(false, true) {
		logger.Warn("A newer kagglehub client is available", logger.Fields{
			"current": clientVersion.String(),
			"latest":  latest.String(),
		})
	}
}
