package schema

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Name", "name"},
		{"  Email Address  ", "email_address"},
		{"E-mail / Phone", "e_mail_phone"},
		{"__Total__", "total"},
		{"a   b", "a_b"},
		{"2024 Revenue", "col_2024_revenue"},
		{"", "col"},
		{"   ", "col"},
		{"%%%", "col"},
		{"Select", "col_select"},
		{"order", "col_order"},
		{"Café", "caf"},
		{"given_name", "given_name"},
	}

	for _, tt := range tests {
		if got := Sanitize(tt.header, Options{}); got != tt.want {
			t.Errorf("Sanitize(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}

func TestSanitizeFoldAccents(t *testing.T) {
	got := Sanitize("Café Número", Options{FoldAccents: true})
	if got != "cafe_numero" {
		t.Errorf("Expected 'cafe_numero', got '%s'", got)
	}
}

func TestSanitizeTruncates(t *testing.T) {
	header := strings.Repeat("abc", 40)
	got := Sanitize(header, Options{})
	if len(got) != DefaultMaxIdentifierLength {
		t.Errorf("Expected length %d, got %d (%s)", DefaultMaxIdentifierLength, len(got), got)
	}

	got = Sanitize("abcdefghij", Options{MaxIdentifierLength: 4})
	if got != "abcd" {
		t.Errorf("Expected 'abcd', got '%s'", got)
	}
}

func TestDeriveSuffixesCollisions(t *testing.T) {
	spec, err := Derive("contacts", []string{"Name", "Email", "email"}, Options{})
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}

	want := []string{"name", "email", "email_2"}
	if diff := cmp.Diff(want, spec.ColumnNames()); diff != "" {
		t.Errorf("column names mismatch (-want +got):\n%s", diff)
	}
	if spec.PrimaryKey != "id" {
		t.Errorf("Expected primary key 'id', got '%s'", spec.PrimaryKey)
	}
	for i, c := range spec.Columns {
		if c.Ordinal != i {
			t.Errorf("column %s: expected ordinal %d, got %d", c.SanitizedName, i, c.Ordinal)
		}
		if c.SQLType != "text" {
			t.Errorf("column %s: expected text type, got %s", c.SanitizedName, c.SQLType)
		}
	}
}

func TestDeriveOrderDecidesWinner(t *testing.T) {
	spec, err := Derive("t", []string{"E mail", "e-mail", "E_MAIL", "e mail"}, Options{})
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}
	want := []string{"e_mail", "e_mail_2", "e_mail_3", "e_mail_4"}
	if diff := cmp.Diff(want, spec.ColumnNames()); diff != "" {
		t.Errorf("column names mismatch (-want +got):\n%s", diff)
	}
}

func TestDeriveReservesSurrogateKey(t *testing.T) {
	spec, err := Derive("t", []string{"ID", "Name", "id"}, Options{})
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}
	want := []string{"id_2", "name", "id_3"}
	if diff := cmp.Diff(want, spec.ColumnNames()); diff != "" {
		t.Errorf("column names mismatch (-want +got):\n%s", diff)
	}
}

func TestDeriveSkipsSuffixTakenByLiteralHeader(t *testing.T) {
	spec, err := Derive("t", []string{"email_2", "Email", "EMAIL"}, Options{})
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}
	want := []string{"email_2", "email", "email_3"}
	if diff := cmp.Diff(want, spec.ColumnNames()); diff != "" {
		t.Errorf("column names mismatch (-want +got):\n%s", diff)
	}
}

func TestDeriveSuffixFitsLengthLimit(t *testing.T) {
	long := strings.Repeat("x", 80)
	spec, err := Derive("t", []string{long, long}, Options{})
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}
	second := spec.Columns[1].SanitizedName
	if len(second) > DefaultMaxIdentifierLength {
		t.Errorf("suffixed name exceeds limit: %d", len(second))
	}
	if !strings.HasSuffix(second, "_2") {
		t.Errorf("Expected suffix _2, got '%s'", second)
	}
}

func TestDeriveExhaustedIsUnreachableForRealInput(t *testing.T) {
	headers := make([]string, 500)
	for i := range headers {
		headers[i] = "dup"
	}
	spec, err := Derive("t", headers, Options{})
	if errors.Is(err, ErrCollisionExhausted) {
		t.Fatalf("unexpected exhaustion for %d headers", len(headers))
	}
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}
	if got := spec.Columns[499].SanitizedName; got != "dup_500" {
		t.Errorf("Expected 'dup_500', got '%s'", got)
	}
}

func TestDeriveNamesAreUniqueAndValid(t *testing.T) {
	alphabet := []rune("aAbB1 _-#.éZ9")
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 200; round++ {
		headers := make([]string, rng.Intn(30))
		for i := range headers {
			n := rng.Intn(8)
			var b strings.Builder
			for j := 0; j < n; j++ {
				b.WriteRune(alphabet[rng.Intn(len(alphabet))])
			}
			headers[i] = b.String()
		}

		spec, err := Derive("t", headers, Options{})
		if err != nil {
			t.Fatalf("round %d: Derive failed: %v", round, err)
		}

		seen := map[string]bool{"id": true}
		for _, c := range spec.Columns {
			if !IsValidIdentifier(c.SanitizedName) {
				t.Errorf("round %d: invalid identifier %q from %q", round, c.SanitizedName, c.OriginalHeader)
			}
			if IsReserved(c.SanitizedName) {
				t.Errorf("round %d: reserved identifier %q", round, c.SanitizedName)
			}
			if seen[c.SanitizedName] {
				t.Errorf("round %d: duplicate identifier %q in %s", round, c.SanitizedName, fmt.Sprint(headers))
			}
			seen[c.SanitizedName] = true
		}
	}
}

func TestRenamedFlag(t *testing.T) {
	spec, err := Derive("t", []string{"Name", "Email Address"}, Options{})
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}
	if spec.Columns[0].Renamed() {
		t.Error("Expected 'Name' -> 'name' not to be flagged as renamed")
	}
	if !spec.Columns[1].Renamed() {
		t.Error("Expected 'Email Address' -> 'email_address' to be flagged as renamed")
	}
}
