package elastic

import (
	"time"

	"github.com/hive-corporation/watchtower-shippers/internal/feed"
)

// Document is one bulk index action body.
type Document map[string]any

// IndexName returns the dated index for this run, <prefix>-<YYYY.MM.DD>.
func IndexName(prefix string, now time.Time) string {
	return prefix + "-" + now.Format("2006.01.02")
}

// BuildSTIXDocs wraps each STIX object in the fixed ingestion metadata.
// The original object fields are preserved untouched; the input is not
// mutated.
func BuildSTIXDocs(objects []map[string]any, now time.Time) []Document {
	ts := now.UTC().Format(time.RFC3339)

	docs := make([]Document, 0, len(objects))
	for _, obj := range objects {
		doc := make(Document, len(obj)+4)
		for k, v := range obj {
			doc[k] = v
		}
		doc["source"] = "watchtower"
		doc["format"] = string(feed.FormatSTIX)
		doc["ingestion_timestamp"] = ts
		doc["@timestamp"] = ts
		docs = append(docs, doc)
	}
	return docs
}

// BuildCEFDocs builds one structured document per CEF line. Lines with
// fewer than 8 pipe-delimited fields are dropped; the logs sink still
// forwards such lines, only indexing skips them.
func BuildCEFDocs(lines []string, now time.Time) []Document {
	ts := now.UTC().Format(time.RFC3339)

	docs := make([]Document, 0, len(lines))
	for _, line := range lines {
		fields, ok := feed.ParseCEFLine(line)
		if !ok {
			continue
		}
		docs = append(docs, Document{
			"message": line,
			"cef": map[string]any{
				"version":        fields.Version,
				"vendor":         fields.Vendor,
				"product":        fields.Product,
				"device_version": fields.DeviceVersion,
				"signature_id":   fields.SignatureID,
				"name":           fields.Name,
				"severity":       fields.Severity,
				"extension":      fields.Extension,
			},
			"source":              "watchtower",
			"format":              string(feed.FormatCEF),
			"ingestion_timestamp": ts,
			"@timestamp":          ts,
		})
	}
	return docs
}
