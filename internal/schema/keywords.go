package schema

// reservedWords are identifiers that would need quoting in at least one of
// the supported dialects. A sanitized header that lands on one of them gets
// the column prefix.
var reservedWords = map[string]bool{
	"all": true, "alter": true, "analyse": true, "analyze": true, "and": true,
	"any": true, "array": true, "as": true, "asc": true, "between": true,
	"both": true, "by": true, "case": true, "cast": true, "check": true,
	"collate": true, "column": true, "constraint": true, "create": true,
	"cross": true, "current_date": true, "current_time": true,
	"current_timestamp": true, "current_user": true, "database": true,
	"default": true, "delete": true, "desc": true, "distinct": true, "do": true,
	"drop": true, "else": true, "end": true, "except": true, "exists": true,
	"false": true, "fetch": true, "for": true, "foreign": true, "from": true,
	"full": true, "grant": true, "group": true, "having": true, "in": true,
	"index": true, "inner": true, "insert": true, "intersect": true,
	"interval": true, "into": true, "is": true, "join": true, "key": true,
	"leading": true, "left": true, "like": true, "limit": true, "natural": true,
	"not": true, "null": true, "offset": true, "on": true, "only": true,
	"or": true, "order": true, "outer": true, "primary": true,
	"references": true, "returning": true, "right": true, "rows": true,
	"select": true, "set": true, "some": true, "table": true, "then": true,
	"to": true, "trailing": true, "true": true, "union": true, "unique": true,
	"update": true, "user": true, "using": true, "values": true, "when": true,
	"where": true, "window": true, "with": true,
}

// IsReserved reports whether name is a reserved SQL word.
func IsReserved(name string) bool {
	return reservedWords[name]
}
