// Package feed fetches the Watchtower IOC feed and normalizes its two
// wire formats (newline-delimited CEF and STIX bundle JSON) into ordered
// record sequences for the downstream sinks.
package feed

import "fmt"

// Format selects the feed wire format.
type Format string

const (
	FormatCEF  Format = "cef"
	FormatSTIX Format = "stix"
)

// ParseFormat validates a format string. Anything other than "cef" or
// "stix" is rejected so a misconfigured run fails before any network
// call is made.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatCEF:
		return FormatCEF, nil
	case FormatSTIX:
		return FormatSTIX, nil
	default:
		return "", fmt.Errorf("unsupported feed format %q (supported: cef, stix)", s)
	}
}
