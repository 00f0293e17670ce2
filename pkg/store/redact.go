package store

import (
	"net/url"
	"strings"
)

// RedactDSN hides the password in URL and key=value style connection strings.
func RedactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}

	if strings.Contains(dsn, "://") {
		parsed, err := url.Parse(dsn)
		if err != nil {
			return "[REDACTED: invalid DSN]"
		}
		if parsed.User != nil {
			if _, hasPassword := parsed.User.Password(); hasPassword {
				parsed.User = url.UserPassword(parsed.User.Username(), "REDACTED")
			}
		}
		q := parsed.Query()
		if q.Has("password") {
			q.Set("password", "REDACTED")
			parsed.RawQuery = q.Encode()
		}
		return parsed.String()
	}

	if strings.Contains(dsn, "password=") {
		parts := strings.Fields(dsn)
		for i, part := range parts {
			if strings.HasPrefix(part, "password=") {
				parts[i] = "password=REDACTED"
			}
		}
		return strings.Join(parts, " ")
	}

	return dsn
}
