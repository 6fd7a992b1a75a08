// Package cmrmeta rewrites file URLs embedded in CMR science metadata
// documents after the files they describe have been relocated. Two formats
// are supported: ECHO10 XML (OnlineAccessURLs/OnlineAccessURL/URL) and
// UMM-G JSON (RelatedUrls[].URL). Only URLs present in the old-to-new
// mapping are touched; every other entry survives the round trip.
package cmrmeta

import (
	"bytes"
	"fmt"
	"strings"
)

type Format string

const (
	FormatEcho10 Format = "echo10"
	FormatUMMG   Format = "umm-g"
)

var ErrUnknownFormat = fmt.Errorf("unknown metadata format")

// IsMetadataFile reports whether a file name looks like a CMR metadata
// document belonging to a granule.
func IsMetadataFile(fileName string) bool {
	return strings.HasSuffix(fileName, ".cmr.xml") || strings.HasSuffix(fileName, ".cmr.json")
}

// DetectFormat picks the document format from the file name, falling back
// to sniffing the first significant byte when the name is ambiguous.
func DetectFormat(fileName string, doc []byte) (Format, error) {
	switch {
	case strings.HasSuffix(fileName, ".cmr.xml"):
		return FormatEcho10, nil
	case strings.HasSuffix(fileName, ".cmr.json"):
		return FormatUMMG, nil
	}
	trimmed := bytes.TrimLeft(doc, " \t\r\n")
	if len(trimmed) > 0 {
		switch trimmed[0] {
		case '<':
			return FormatEcho10, nil
		case '{':
			return FormatUMMG, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, fileName)
}

// Rewrite replaces every related-URL entry that matches a key of mapping
// with the mapped value and re-serializes the document. Applying the same
// mapping twice is a no-op: after the first pass the old URLs no longer
// appear.
func Rewrite(doc []byte, format Format, mapping map[string]string) ([]byte, error) {
	if len(mapping) == 0 {
		return doc, nil
	}
	switch format {
	case FormatEcho10:
		return rewriteEcho10(doc, mapping)
	case FormatUMMG:
		return rewriteUMMG(doc, mapping)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
