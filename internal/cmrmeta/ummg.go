package cmrmeta

import (
	"encoding/json"
	"fmt"
)

// rewriteUMMG replaces URL values inside the RelatedUrls list. The document
// is parsed generically so fields outside RelatedUrls pass through intact.
func rewriteUMMG(doc []byte, mapping map[string]string) ([]byte, error) {
	var parsed map[string]any
	if err := json.Unmarshal(doc, &parsed); err != nil {
		return nil, fmt.Errorf("parse umm-g metadata: %w", err)
	}

	relatedURLs, ok := parsed["RelatedUrls"].([]any)
	if ok {
		for _, entry := range relatedURLs {
			record, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			url, ok := record["URL"].(string)
			if !ok {
				continue
			}
			if replacement, found := mapping[url]; found {
				record["URL"] = replacement
			}
		}
	}

	out, err := json.MarshalIndent(parsed, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serialize umm-g metadata: %w", err)
	}
	return out, nil
}
