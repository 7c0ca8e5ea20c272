package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/beevik/etree"
)

func writeTempXML(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestStreamElements(t *testing.T) {
	path := writeTempXML(t, "two.xml", `<?xml version="1.0" encoding="utf-8"?>
<root>
  <unrelated>ignored</unrelated>
  <extract_contract_participation_share_holdings>
    <details_statement><registration_number>КУВИ-1</registration_number></details_statement>
  </extract_contract_participation_share_holdings>
  <extract_contract_participation_share_holdings>
    <details_statement><registration_number>КУВИ-2</registration_number></details_statement>
  </extract_contract_participation_share_holdings>
</root>`)

	var numbers []string
	err := StreamElements(path, ExtractTag, func(el *etree.Element) error {
		numbers = append(numbers, text(el, ".//registration_number"))
		return nil
	})
	if err != nil {
		t.Fatalf("StreamElements failed: %v", err)
	}
	if len(numbers) != 2 || numbers[0] != "КУВИ-1" || numbers[1] != "КУВИ-2" {
		t.Fatalf("unexpected numbers: %v", numbers)
	}
}

func TestStreamElementsNoMatches(t *testing.T) {
	path := writeTempXML(t, "none.xml", `<root><other>x</other></root>`)

	calls := 0
	err := StreamElements(path, ExtractTag, func(*etree.Element) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("StreamElements failed: %v", err)
	}
	if calls != 0 {
		t.Fatalf("expected no callbacks, got %d", calls)
	}
}

func TestStreamElementsMalformed(t *testing.T) {
	path := writeTempXML(t, "broken.xml", `<root><extract_contract_participation_share_holdings>`)

	err := StreamElements(path, ExtractTag, func(*etree.Element) error { return nil })
	if err == nil {
		t.Fatal("expected error for malformed XML")
	}
}

func TestStreamElementsMissingFile(t *testing.T) {
	err := StreamElements(filepath.Join(t.TempDir(), "missing.xml"), ExtractTag,
		func(*etree.Element) error { return nil })
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
