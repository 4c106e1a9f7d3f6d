package feed

import "strings"

// cefHeaderFields is the number of pipe-delimited header fields in a CEF
// line: version, vendor, product, device version, signature ID, name,
// severity, and the extension remainder.
const cefHeaderFields = 8

// CEFFields is the positional breakdown of one CEF line, used only when
// building structured search-sink documents. Pure forwarding never
// parses beyond line splitting.
type CEFFields struct {
	Version       string
	Vendor        string
	Product       string
	DeviceVersion string
	SignatureID   string
	Name          string
	Severity      string
	Extension     string
}

// SplitCEF splits a raw CEF payload into its non-empty lines, preserving
// feed order. Whitespace-only lines are discarded; everything else is
// forwarded verbatim.
func SplitCEF(raw []byte) []string {
	var lines []string
	for _, line := range strings.Split(string(raw), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// ParseCEFLine interprets the first 8 pipe-delimited fields of a CEF
// line positionally. The extension field is the remainder of the line
// and may itself contain pipes. Lines with fewer than 8 fields report
// ok=false and are dropped from indexing.
func ParseCEFLine(line string) (CEFFields, bool) {
	parts := strings.SplitN(line, "|", cefHeaderFields)
	if len(parts) < cefHeaderFields {
		return CEFFields{}, false
	}

	return CEFFields{
		Version:       strings.TrimPrefix(parts[0], "CEF:"),
		Vendor:        parts[1],
		Product:       parts[2],
		DeviceVersion: parts[3],
		SignatureID:   parts[4],
		Name:          parts[5],
		Severity:      parts[6],
		Extension:     parts[7],
	}, true
}
