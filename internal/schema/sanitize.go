package schema

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/Rana718/sheetsync/internal/types"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultMaxIdentifierLength matches PostgreSQL's NAMEDATALEN-1.
const DefaultMaxIdentifierLength = 63

const (
	columnPrefix = "col_"
	emptyName    = "col"
	maxSuffix    = 1 << 16
)

var (
	invalidChars      = regexp.MustCompile(`[^a-z0-9_]`)
	repeatedUnderline = regexp.MustCompile(`_+`)
	validIdentifier   = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)
)

// ErrCollisionExhausted is returned when no numeric suffix is left for a
// colliding name.
var ErrCollisionExhausted = errors.New("sanitization collision suffixes exhausted")

type Options struct {
	// FoldAccents strips diacritics before sanitizing, so "Café" becomes
	// "cafe" instead of "caf".
	FoldAccents bool
	// MaxIdentifierLength caps every derived name. Zero means the default.
	MaxIdentifierLength int
}

func (o Options) maxLen() int {
	if o.MaxIdentifierLength <= 0 {
		return DefaultMaxIdentifierLength
	}
	return o.MaxIdentifierLength
}

// Sanitize turns one header into a valid lower-case SQL identifier. It does
// not make the name unique; Derive does.
func Sanitize(header string, opts Options) string {
	name := strings.TrimSpace(header)
	if opts.FoldAccents {
		name = foldAccents(name)
	}
	name = strings.ToLower(name)
	name = invalidChars.ReplaceAllString(name, "_")
	name = repeatedUnderline.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")

	switch {
	case name == "":
		name = emptyName
	case name[0] >= '0' && name[0] <= '9':
		name = columnPrefix + name
	case IsReserved(name):
		name = columnPrefix + name
	}
	return truncate(name, opts.maxLen())
}

func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func truncate(name string, limit int) string {
	if len(name) <= limit {
		return name
	}
	name = strings.TrimRight(name[:limit], "_")
	if name == "" {
		return emptyName
	}
	return name
}

// Derive sanitizes headers left to right into a TableSpec. The first header
// to produce a name keeps it; later collisions take the smallest free
// suffix starting at _2. The surrogate key name is reserved up front.
func Derive(table string, headers []string, opts Options) (*types.TableSpec, error) {
	limit := opts.maxLen()
	used := map[string]bool{types.SurrogateKey: true}

	spec := &types.TableSpec{
		Name:       table,
		PrimaryKey: types.SurrogateKey,
		Columns:    make([]types.ColumnSpec, 0, len(headers)),
	}

	for i, header := range headers {
		base := Sanitize(header, opts)
		name := base
		if used[name] {
			var err error
			name, err = nextFree(base, used, limit)
			if err != nil {
				return nil, fmt.Errorf("header %q (column %d): %w", header, i+1, err)
			}
		}
		used[name] = true
		spec.Columns = append(spec.Columns, types.ColumnSpec{
			OriginalHeader: header,
			SanitizedName:  name,
			Ordinal:        i,
			SQLType:        types.TypeText,
		})
	}
	return spec, nil
}

func nextFree(base string, used map[string]bool, limit int) (string, error) {
	for n := 2; n < maxSuffix; n++ {
		suffix := "_" + strconv.Itoa(n)
		candidate := truncate(base, limit-len(suffix)) + suffix
		if !used[candidate] {
			return candidate, nil
		}
	}
	return "", ErrCollisionExhausted
}

// IsValidIdentifier reports whether name is a safe unquoted identifier of
// at most DefaultMaxIdentifierLength characters.
func IsValidIdentifier(name string) bool {
	return len(name) <= DefaultMaxIdentifierLength && validIdentifier.MatchString(name)
}
