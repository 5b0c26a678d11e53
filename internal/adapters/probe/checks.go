package probe

import "vigil/internal/core/checker"

// Registry keys for the built-in probe constructors
const (
	KeyHTTPStatus = "probe/http_status"
	KeyHTMLMarker = "probe/html_marker"
	KeyStatusPage = "probe/status_page"
)

// RegisterChecks installs the built-in probe constructors into the checker
// registry. Binaries call this once at boot, before any checker registration
// that references the keys
func RegisterChecks() {
	checker.RegisterCheck(KeyHTTPStatus, NewHTTPStatus)
	checker.RegisterCheck(KeyHTMLMarker, NewHTMLMarker)
	checker.RegisterCheck(KeyStatusPage, NewStatusPage)
}

// resultFor seeds a Result from a buffered response: default status bands,
// latency, http status, and any client annotations such as truncation
func resultFor(key string, resp *checker.Response) checker.Result {
	ms := int(resp.Latency.Milliseconds())
	code := resp.StatusCode
	res := checker.Result{
		CheckKey:   key,
		Status:     checker.StatusForHTTP(code),
		LatencyMS:  &ms,
		HTTPStatus: &code,
	}
	if len(resp.Meta) > 0 {
		res.Metadata = make(map[string]any, len(resp.Meta))
		for k, v := range resp.Meta {
			res.Metadata[k] = v
		}
	}
	return res
}

func setMeta(res *checker.Result, key string, val any) {
	if res.Metadata == nil {
		res.Metadata = map[string]any{}
	}
	res.Metadata[key] = val
}
