package filter

import (
	"testing"

	"github.com/Rana718/sheetsync/internal/types"
	"github.com/google/go-cmp/cmp"
)

func record(row int, values map[string]any) types.SyncRecord {
	return types.SyncRecord{SourceRow: row, Values: values}
}

func TestApplyRequiredGroup(t *testing.T) {
	f, err := New([]RequiredGroup{{Name: "contact", Fields: []string{"email", "email_2"}}}, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	records := []types.SyncRecord{
		record(2, map[string]any{"name": "Jane", "email": nil, "email_2": nil}),
		record(3, map[string]any{"name": "Jane", "email": "jane@x.com", "email_2": nil}),
		record(4, map[string]any{"name": "Bob", "email": "  ", "email_2": "bob@x.com"}),
	}

	res := f.Apply(records)

	if len(res.Kept) != 2 {
		t.Fatalf("Expected 2 kept rows, got %d", len(res.Kept))
	}
	if res.Kept[0].SourceRow != 3 || res.Kept[1].SourceRow != 4 {
		t.Errorf("Expected rows 3 and 4 in order, got %d and %d", res.Kept[0].SourceRow, res.Kept[1].SourceRow)
	}
	if diff := cmp.Diff(records[1].Values, res.Kept[0].Values); diff != "" {
		t.Errorf("kept record was modified (-want +got):\n%s", diff)
	}

	want := []Drop{{SourceRow: 2, Reason: "required:contact"}}
	if diff := cmp.Diff(want, res.Dropped); diff != "" {
		t.Errorf("dropped mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyEveryGroupMustHold(t *testing.T) {
	f, err := New([]RequiredGroup{
		{Name: "contact", Fields: []string{"email", "phone"}},
		{Name: "identity", Fields: []string{"name"}},
	}, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	res := f.Apply([]types.SyncRecord{
		record(2, map[string]any{"email": "a@x.com"}),
		record(3, map[string]any{"phone": "555", "name": "Al"}),
	})

	if len(res.Kept) != 1 || res.Kept[0].SourceRow != 3 {
		t.Fatalf("Expected only row 3 kept, got %+v", res.Kept)
	}
	if got := res.CountByReason()["required:identity"]; got != 1 {
		t.Errorf("Expected 1 drop for identity, got %d", got)
	}
}

func TestApplyDenyRuleWinsOverPresence(t *testing.T) {
	f, err := New(
		[]RequiredGroup{{Name: "contact", Fields: []string{"email_address", "phone_number"}}},
		[]DenyRule{
			{Name: "test entries", FoldCase: true, Match: map[string]string{"given_name": "john", "family_name": "doe"}},
			{Name: "qa", Match: map[string]string{"email_address": "qa@example.com"}},
		},
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	res := f.Apply([]types.SyncRecord{
		record(2, map[string]any{"given_name": " John ", "family_name": "DOE", "email_address": "j@x.com"}),
		record(3, map[string]any{"given_name": "John", "family_name": "Smith", "email_address": "j@x.com"}),
		record(4, map[string]any{"email_address": "QA@example.com"}),
		record(5, map[string]any{"email_address": "qa@example.com"}),
	})

	if len(res.Kept) != 2 {
		t.Fatalf("Expected 2 kept rows, got %d", len(res.Kept))
	}
	if res.Kept[0].SourceRow != 3 || res.Kept[1].SourceRow != 4 {
		t.Errorf("Expected rows 3 and 4 kept, got %d and %d", res.Kept[0].SourceRow, res.Kept[1].SourceRow)
	}

	counts := res.CountByReason()
	if counts["deny:test entries"] != 1 || counts["deny:qa"] != 1 {
		t.Errorf("unexpected drop counts: %v", counts)
	}
}

func TestDenyRuleIgnoresMissingField(t *testing.T) {
	f, err := New(nil, []DenyRule{{Match: map[string]string{"given_name": "test", "family_name": "subject"}}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	res := f.Apply([]types.SyncRecord{record(2, map[string]any{"given_name": "test", "family_name": nil})})
	if len(res.Kept) != 1 {
		t.Errorf("Expected row with NULL family_name to be kept")
	}
}

func TestDenyRuleEmptySentinelMatchesBlankCell(t *testing.T) {
	f, err := New(nil, []DenyRule{{Name: "anonymous", Match: map[string]string{"given_name": ""}}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	res := f.Apply([]types.SyncRecord{
		record(2, map[string]any{"given_name": nil}),
		record(3, map[string]any{"given_name": "  "}),
		record(4, map[string]any{"given_name": "Jane"}),
		record(5, map[string]any{"family_name": "Doe"}),
	})
	if len(res.Kept) != 2 || res.Kept[0].SourceRow != 4 || res.Kept[1].SourceRow != 5 {
		t.Errorf("Expected rows 4 and 5 kept, got %+v", res.Kept)
	}
	if res.CountByReason()["deny:anonymous"] != 2 {
		t.Errorf("unexpected drop counts: %v", res.CountByReason())
	}
}

func TestEmptyPolicyKeepsEverything(t *testing.T) {
	f, err := New(nil, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	res := f.Apply([]types.SyncRecord{record(2, map[string]any{}), record(3, nil)})
	if len(res.Kept) != 2 || len(res.Dropped) != 0 {
		t.Errorf("Expected all rows kept, got kept=%d dropped=%d", len(res.Kept), len(res.Dropped))
	}
}

func TestNewRejectsEmptyDefinitions(t *testing.T) {
	if _, err := New([]RequiredGroup{{Name: "x"}}, nil); err == nil {
		t.Error("Expected error for group without fields")
	}
	if _, err := New(nil, []DenyRule{{Name: "y"}}); err == nil {
		t.Error("Expected error for rule without match")
	}
}

func TestIsBlank(t *testing.T) {
	empty := ""
	word := "x"
	tests := []struct {
		in   any
		want bool
	}{
		{nil, true},
		{"", true},
		{" \t\n", true},
		{"a", false},
		{(*string)(nil), true},
		{&empty, true},
		{&word, false},
		{0, false},
	}
	for _, tt := range tests {
		if got := IsBlank(tt.in); got != tt.want {
			t.Errorf("IsBlank(%#v) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if Normalize("  ") != nil {
		t.Error("Expected whitespace cell to normalize to nil")
	}
	if Normalize(" a ") != " a " {
		t.Error("Expected non-blank cell to be kept verbatim")
	}
}

func TestFields(t *testing.T) {
	f, _ := New(
		[]RequiredGroup{{Fields: []string{"phone", "email"}}},
		[]DenyRule{{Match: map[string]string{"name": "x", "email": "y"}}},
	)
	want := []string{"email", "name", "phone"}
	if diff := cmp.Diff(want, f.Fields()); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
}
