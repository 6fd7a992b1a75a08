package cmrmeta

import (
	"errors"
	"strings"
	"testing"
)

const echo10Doc = `<Granule>
  <GranuleUR>MOD09GQ.A2017025.h21v00.006</GranuleUR>
  <OnlineAccessURLs>
    <OnlineAccessURL>
      <URL>s3://bucket-a/old/g.txt</URL>
      <URLDescription>File to download</URLDescription>
    </OnlineAccessURL>
    <OnlineAccessURL>
      <URL>https://example.org/unrelated</URL>
    </OnlineAccessURL>
  </OnlineAccessURLs>
</Granule>`

const ummgDoc = `{
  "GranuleUR": "MOD09GQ.A2017025.h21v00.006",
  "RelatedUrls": [
    {"URL": "s3://bucket-a/old/g.txt", "Type": "GET DATA"},
    {"URL": "https://example.org/unrelated", "Type": "VIEW RELATED INFORMATION"}
  ],
  "CollectionReference": {"ShortName": "MOD09GQ", "Version": "006"}
}`

func TestIsMetadataFile(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"g.cmr.xml", true},
		{"g.cmr.json", true},
		{"g.txt", false},
		{"cmr.xml.bak", false},
	}
	for _, tt := range tests {
		if got := IsMetadataFile(tt.name); got != tt.want {
			t.Errorf("IsMetadataFile(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		doc      string
		want     Format
		wantErr  bool
	}{
		{"xml suffix", "g.cmr.xml", "", FormatEcho10, false},
		{"json suffix", "g.cmr.json", "", FormatUMMG, false},
		{"sniff xml", "g.meta", "  <Granule/>", FormatEcho10, false},
		{"sniff json", "g.meta", "\n{\"a\":1}", FormatUMMG, false},
		{"unknown", "g.meta", "plain text", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectFormat(tt.fileName, []byte(tt.doc))
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownFormat) {
					t.Fatalf("expected ErrUnknownFormat, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("detect: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRewriteEcho10(t *testing.T) {
	mapping := map[string]string{"s3://bucket-a/old/g.txt": "s3://bucket-b/moved/g.txt"}
	out, err := Rewrite([]byte(echo10Doc), FormatEcho10, mapping)
	if err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	got := string(out)
	if !strings.Contains(got, "s3://bucket-b/moved/g.txt") {
		t.Errorf("new URL missing from output:\n%s", got)
	}
	if strings.Contains(got, "s3://bucket-a/old/g.txt") {
		t.Errorf("old URL still present:\n%s", got)
	}
	if !strings.Contains(got, "https://example.org/unrelated") {
		t.Errorf("unrelated URL was dropped:\n%s", got)
	}
	if !strings.Contains(got, "<URLDescription>File to download</URLDescription>") {
		t.Errorf("sibling element lost:\n%s", got)
	}
	if !strings.Contains(got, "<GranuleUR>MOD09GQ.A2017025.h21v00.006</GranuleUR>") {
		t.Errorf("unrelated element lost:\n%s", got)
	}
}

func TestRewriteUMMG(t *testing.T) {
	mapping := map[string]string{"s3://bucket-a/old/g.txt": "s3://bucket-b/moved/g.txt"}
	out, err := Rewrite([]byte(ummgDoc), FormatUMMG, mapping)
	if err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	got := string(out)
	if !strings.Contains(got, "s3://bucket-b/moved/g.txt") {
		t.Errorf("new URL missing from output:\n%s", got)
	}
	if strings.Contains(got, "s3://bucket-a/old/g.txt") {
		t.Errorf("old URL still present:\n%s", got)
	}
	if !strings.Contains(got, "https://example.org/unrelated") {
		t.Errorf("unrelated URL was dropped:\n%s", got)
	}
	if !strings.Contains(got, `"ShortName"`) {
		t.Errorf("unrelated field lost:\n%s", got)
	}
}

func TestRewriteIdempotent(t *testing.T) {
	mapping := map[string]string{"s3://bucket-a/old/g.txt": "s3://bucket-b/moved/g.txt"}
	once, err := Rewrite([]byte(ummgDoc), FormatUMMG, mapping)
	if err != nil {
		t.Fatalf("first rewrite: %v", err)
	}
	twice, err := Rewrite(once, FormatUMMG, mapping)
	if err != nil {
		t.Fatalf("second rewrite: %v", err)
	}
	if string(once) != string(twice) {
		t.Errorf("second application changed the document")
	}
}

func TestRewriteEmptyMapping(t *testing.T) {
	out, err := Rewrite([]byte(echo10Doc), FormatEcho10, nil)
	if err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	if string(out) != echo10Doc {
		t.Errorf("empty mapping should leave the document untouched")
	}
}

func TestRewriteUnknownFormat(t *testing.T) {
	if _, err := Rewrite([]byte(echo10Doc), Format("iso19115"), map[string]string{"a": "b"}); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
}
