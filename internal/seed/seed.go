// Package seed generates sample Watchtower IOC feeds in both wire
// formats, for exercising the shippers without a running Watchtower.
package seed

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
)

type iocType string

const (
	typeIPv4   iocType = "ipv4"
	typeDomain iocType = "domain"
	typeURL    iocType = "url"
	typeSHA256 iocType = "sha256"
)

var iocTypes = []iocType{typeIPv4, typeDomain, typeURL, typeSHA256}

type ioc struct {
	Type       iocType
	Value      string
	Confidence int
	FirstSeen  time.Time
}

// Seed makes the generators deterministic; pass 0 for random output.
func Seed(seed int64) {
	if seed == 0 {
		gofakeit.Seed(time.Now().UnixNano())
		return
	}
	gofakeit.Seed(seed)
}

func randomIOC() ioc {
	t := iocTypes[gofakeit.Number(0, len(iocTypes)-1)]

	var value string
	switch t {
	case typeIPv4:
		value = gofakeit.IPv4Address()
	case typeDomain:
		value = gofakeit.DomainName()
	case typeURL:
		value = gofakeit.URL()
	case typeSHA256:
		value = gofakeit.Regex("[a-f0-9]{64}")
	}

	return ioc{
		Type:       t,
		Value:      value,
		Confidence: gofakeit.Number(50, 100),
		FirstSeen:  time.Now().Add(-time.Duration(gofakeit.Number(1, 72)) * time.Hour).UTC(),
	}
}

// severity maps a confidence score to the 0-10 CEF severity scale.
func severity(confidence int) int {
	switch {
	case confidence >= 90:
		return 10
	case confidence >= 80:
		return 8
	case confidence >= 70:
		return 6
	case confidence >= 60:
		return 4
	default:
		return 2
	}
}

// escapeField escapes CEF special characters in field values.
func escapeField(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "=", "\\=")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	return s
}

// GenerateCEF produces n CEF lines in the Watchtower export layout:
// CEF:Version|Vendor|Product|Device Version|Signature ID|Name|Severity|Extension
func GenerateCEF(n int) []string {
	lines := make([]string, 0, n)
	for i := 0; i < n; i++ {
		entry := randomIOC()

		extensions := []string{
			fmt.Sprintf("src=%s", escapeField(entry.Value)),
			"cn1Label=ConfidenceScore",
			fmt.Sprintf("cn1=%d", entry.Confidence),
			fmt.Sprintf("rt=%d", entry.FirstSeen.Unix()*1000),
		}

		lines = append(lines, fmt.Sprintf("CEF:0|Watchtower|ThreatIntel|1.0|%s|%s IOC Detected|%d|%s",
			entry.Type,
			strings.ToUpper(string(entry.Type)),
			severity(entry.Confidence),
			strings.Join(extensions, " "),
		))
	}
	return lines
}

func pattern(entry ioc) string {
	switch entry.Type {
	case typeIPv4:
		return fmt.Sprintf("[ipv4-addr:value = '%s']", entry.Value)
	case typeDomain:
		return fmt.Sprintf("[domain-name:value = '%s']", entry.Value)
	case typeURL:
		return fmt.Sprintf("[url:value = '%s']", entry.Value)
	default:
		return fmt.Sprintf("[file:hashes.'SHA-256' = '%s']", entry.Value)
	}
}

// GenerateSTIX produces a STIX 2.1 bundle with n indicator objects,
// marshaled with indentation the way the Watchtower API serves it.
func GenerateSTIX(n int) ([]byte, error) {
	now := time.Now().UTC().Format(time.RFC3339)

	objects := make([]map[string]any, 0, n)
	for i := 0; i < n; i++ {
		entry := randomIOC()
		objects = append(objects, map[string]any{
			"type":         "indicator",
			"spec_version": "2.1",
			"id":           "indicator--" + uuid.NewString(),
			"created":      now,
			"modified":     now,
			"name":         fmt.Sprintf("%s Indicator", strings.ToUpper(string(entry.Type))),
			"pattern":      pattern(entry),
			"pattern_type": "stix",
			"valid_from":   entry.FirstSeen.Format(time.RFC3339),
			"confidence":   entry.Confidence,
		})
	}

	bundle := map[string]any{
		"type":         "bundle",
		"id":           "bundle--" + uuid.NewString(),
		"spec_version": "2.1",
		"objects":      objects,
	}

	data, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal stix bundle: %w", err)
	}
	return data, nil
}
