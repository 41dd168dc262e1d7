package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/glorpus-work/kagglehub/pkg/errors"
	"github.com/glorpus-work/kagglehub/pkg/handle"
)

// maxErrorBody caps how much of an error response is read for its message.
const maxErrorBody = 64 << 10

// raiseForStatus turns a non-2xx response into an *errors.HTTPError whose
// message tells the user what to check.
func raiseForStatus(resp *http.Response, h handle.Handle) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	resourceURL := resp.Request.URL.String()
	if h != nil {
		resourceURL = h.URL()
	}
	return &errors.HTTPError{
		StatusCode: resp.StatusCode,
		URL:        resourceURL,
		Message:    statusMessage(resp.StatusCode, resourceURL, serverMessage(resp.Body), h),
	}
}

func statusMessage(status int, resourceURL, serverMsg string, h handle.Handle) string {
	reported := ""
	if serverMsg != "" {
		reported = fmt.Sprintf(" The server reported the following issues: %s.", serverMsg)
	}
	prefix := fmt.Sprintf("%d %s.", status, statusClass(status))

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		if _, ok := h.(handle.Competition); ok {
			return fmt.Sprintf("%s You don't have permission to access resource at URL: %s.%s"+
				" Please make sure you are authenticated and have accepted the competition rules which can be found at: %s/rules",
				prefix, resourceURL, reported, resourceURL)
		}
		return fmt.Sprintf("%s You don't have permission to access resource at URL: %s.%s"+
			" Please make sure you are authenticated if you are trying to access a private resource or a resource requiring consent.",
			prefix, resourceURL, reported)
	case http.StatusNotFound:
		return fmt.Sprintf("%s Resource not found at URL: %s.%s Please make sure you specified the correct resource identifiers.",
			prefix, resourceURL, reported)
	default:
		return fmt.Sprintf("%s %s for URL: %s.%s", prefix, http.StatusText(status), resourceURL, reported)
	}
}

func statusClass(status int) string {
	if status >= 500 {
		return "Server Error"
	}
	return "Client Error"
}

// serverMessage extracts the "message" field of a JSON error body, if any.
func serverMessage(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return ""
	}
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return ""
	}
	return strings.TrimSpace(payload.Message)
}
