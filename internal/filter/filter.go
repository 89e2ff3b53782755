package filter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Rana718/sheetsync/internal/types"
)

// RequiredGroup keeps a row only if at least one of Fields is non-blank.
type RequiredGroup struct {
	Name   string   `json:"name" mapstructure:"name"`
	Fields []string `json:"fields" mapstructure:"fields"`
}

// DenyRule drops a row when every Match field equals its sentinel. Both
// sides are trimmed; a blank cell equals the empty sentinel. A field the
// row does not carry never matches.
type DenyRule struct {
	Name     string            `json:"name" mapstructure:"name"`
	Match    map[string]string `json:"match" mapstructure:"match"`
	FoldCase bool              `json:"fold_case" mapstructure:"fold_case"`
}

// Drop records why a row was excluded.
type Drop struct {
	SourceRow int
	Reason    string
}

type Result struct {
	Kept    []types.SyncRecord
	Dropped []Drop
}

// CountByReason groups dropped rows by reason.
func (r Result) CountByReason() map[string]int {
	counts := make(map[string]int)
	for _, d := range r.Dropped {
		counts[d.Reason]++
	}
	return counts
}

type Filter struct {
	groups []RequiredGroup
	rules  []DenyRule
}

// New validates the policy. An empty policy keeps every row.
func New(groups []RequiredGroup, rules []DenyRule) (*Filter, error) {
	for i, g := range groups {
		if len(g.Fields) == 0 {
			return nil, fmt.Errorf("required group %q has no fields", groupName(g, i))
		}
	}
	for i, r := range rules {
		if len(r.Match) == 0 {
			return nil, fmt.Errorf("deny rule %q has no match fields", ruleName(r, i))
		}
	}
	return &Filter{groups: groups, rules: rules}, nil
}

// Fields returns every field the policy reads, sorted.
func (f *Filter) Fields() []string {
	set := make(map[string]bool)
	for _, g := range f.groups {
		for _, field := range g.Fields {
			set[field] = true
		}
	}
	for _, r := range f.rules {
		for field := range r.Match {
			set[field] = true
		}
	}
	fields := make([]string, 0, len(set))
	for field := range set {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

// Apply splits records into kept and dropped, preserving order. Kept
// records are returned untouched.
func (f *Filter) Apply(records []types.SyncRecord) Result {
	res := Result{Kept: make([]types.SyncRecord, 0, len(records))}
	for _, rec := range records {
		if reason, drop := f.check(rec); drop {
			res.Dropped = append(res.Dropped, Drop{SourceRow: rec.SourceRow, Reason: reason})
			continue
		}
		res.Kept = append(res.Kept, rec)
	}
	return res
}

func (f *Filter) check(rec types.SyncRecord) (string, bool) {
	for i, r := range f.rules {
		if denied(r, rec) {
			return "deny:" + ruleName(r, i), true
		}
	}
	for i, g := range f.groups {
		if !satisfied(g, rec) {
			return "required:" + groupName(g, i), true
		}
	}
	return "", false
}

func denied(r DenyRule, rec types.SyncRecord) bool {
	for field, sentinel := range r.Match {
		var v string
		switch c := rec.Values[field].(type) {
		case string:
			v = strings.TrimSpace(c)
		case nil:
			if _, present := rec.Values[field]; !present {
				return false
			}
		default:
			return false
		}
		sentinel = strings.TrimSpace(sentinel)
		if r.FoldCase {
			if !strings.EqualFold(v, sentinel) {
				return false
			}
		} else if v != sentinel {
			return false
		}
	}
	return true
}

func satisfied(g RequiredGroup, rec types.SyncRecord) bool {
	for _, field := range g.Fields {
		if !IsBlank(rec.Values[field]) {
			return true
		}
	}
	return false
}

// IsBlank reports whether a cell value counts as absent: nil, the empty
// string or whitespace only.
func IsBlank(v any) bool {
	switch s := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(s) == ""
	case *string:
		return s == nil || strings.TrimSpace(*s) == ""
	default:
		return false
	}
}

// Normalize maps a raw cell to its stored value: blank cells become nil.
func Normalize(cell string) any {
	if IsBlank(cell) {
		return nil
	}
	return cell
}

func groupName(g RequiredGroup, i int) string {
	if g.Name != "" {
		return g.Name
	}
	return fmt.Sprintf("group_%d", i+1)
}

func ruleName(r DenyRule, i int) string {
	if r.Name != "" {
		return r.Name
	}
	return fmt.Sprintf("rule_%d", i+1)
}
