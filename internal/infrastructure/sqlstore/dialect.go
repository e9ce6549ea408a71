package sqlstore

import (
	"strconv"
	"strings"
)

// dialect covers the SQL differences between the supported drivers.
type dialect struct {
	name        string
	placeholder func(n int) string
}

var (
	sqliteDialect   = dialect{name: DriverSQLite, placeholder: func(int) string { return "?" }}
	postgresDialect = dialect{name: DriverPostgres, placeholder: func(n int) string { return "$" + strconv.Itoa(n) }}
)

// rebind replaces each '?' in query with the dialect's placeholder.
func (d dialect) rebind(query string) string {
	if d.name == DriverSQLite {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString(d.placeholder(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
