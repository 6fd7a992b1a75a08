package cmrmeta

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// rewriteEcho10 walks the XML token stream and swaps the character data of
// <URL> elements that match the mapping. Copying tokens instead of
// unmarshalling into structs keeps every element the source document had,
// including ones this package knows nothing about.
func rewriteEcho10(doc []byte, mapping map[string]string) ([]byte, error) {
	decoder := xml.NewDecoder(bytes.NewReader(doc))
	var out bytes.Buffer
	encoder := xml.NewEncoder(&out)

	var stack []string
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse echo10 metadata: %w", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			stack = append(stack, t.Name.Local)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			if len(stack) > 0 && stack[len(stack)-1] == "URL" {
				old := strings.TrimSpace(string(t))
				if replacement, ok := mapping[old]; ok {
					token = xml.CharData(replacement)
				}
			}
		}

		if err := encoder.EncodeToken(token); err != nil {
			return nil, fmt.Errorf("serialize echo10 metadata: %w", err)
		}
	}
	if err := encoder.Flush(); err != nil {
		return nil, fmt.Errorf("serialize echo10 metadata: %w", err)
	}
	return out.Bytes(), nil
}
