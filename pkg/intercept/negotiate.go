package intercept

import (
	"encoding/json"
	"fmt"
)

// Transport is one entry of a negotiate response's availableTransports.
type Transport struct {
	Transport       string   `json:"transport"`
	TransferFormats []string `json:"transferFormats"`
}

// DowngradedTransports replaces the transport list of a negotiate response
// that offers WebSockets.
var DowngradedTransports = []Transport{
	{Transport: "ServerSentEvents", TransferFormats: []string{"Text"}},
	{Transport: "LongPolling", TransferFormats: []string{"Text", "Binary"}},
}

// DowngradeNegotiate rewrites a negotiate response body so that it no longer
// offers WebSockets. The body is returned unchanged when preferWebSocket is
// set, when availableTransports is absent, or when it lists no WebSockets
// entry. changed reports whether the body was rewritten.
func DowngradeNegotiate(body []byte, preferWebSocket bool) (out []byte, changed bool, err error) {
	if preferWebSocket {
		return body, false, nil
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(body, &doc); err != nil {
		return body, false, fmt.Errorf("intercept: negotiate body: %w", err)
	}
	raw, ok := doc["availableTransports"]
	if !ok {
		return body, false, nil
	}
	var transports []map[string]any
	if err := json.Unmarshal(raw, &transports); err != nil {
		return body, false, fmt.Errorf("intercept: availableTransports: %w", err)
	}
	offersWebSocket := false
	for _, t := range transports {
		if name, _ := t["transport"].(string); name == "WebSockets" {
			offersWebSocket = true
			break
		}
	}
	if !offersWebSocket {
		return body, false, nil
	}

	replacement, err := json.Marshal(DowngradedTransports)
	if err != nil {
		return body, false, err
	}
	doc["availableTransports"] = replacement
	out, err = json.Marshal(doc)
	if err != nil {
		return body, false, err
	}
	return out, true, nil
}
