package config

import (
	"net/url"
	"strings"
)

const masked = "****"

var secretKeys = map[string]bool{
	"password": true,
}

var urlKeys = map[string]bool{
	"url": true,
	"uri": true,
}

// redact masks passwords and URL credentials in a settings tree in place
func redact(settings map[string]any) {
	for key, value := range settings {
		switch v := value.(type) {
		case map[string]any:
			redact(v)
		case string:
			lower := strings.ToLower(key)
			switch {
			case secretKeys[lower] && v != "":
				settings[key] = masked
			case urlKeys[lower]:
				settings[key] = redactURL(v)
			}
		}
	}
}

func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	return u.Redacted()
}
