package database

import (
	"strconv"
	"strings"
)

// placeholderPrefix maps a driver to its ordinal placeholder prefix; 0 means '?' as written.
var placeholderPrefix = map[string]byte{
	DriverSQLite:   0,
	DriverMySQL:    '?',
	DriverPostgres: '$',
}

// Rebind rewrites every '?' in query as the driver's placeholder ($1, $2, ... for pgx).
// Queries are written with '?' throughout the repository layer. '??' is left untouched.
func Rebind(driver, query string) string {
	prefix := placeholderPrefix[driver]
	if prefix == '?' || prefix == 0 {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 1
	for i := 0; i < len(query); i++ {
		c := query[i]
		if c != '?' {
			b.WriteByte(c)
			continue
		}
		if i+1 < len(query) && query[i+1] == '?' {
			b.WriteString("??")
			i++
			continue
		}
		b.WriteByte(prefix)
		b.WriteString(strconv.Itoa(n))
		n++
	}
	return b.String()
}
