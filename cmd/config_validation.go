package cmd

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	errors "github.com/Laisky/errors/v2"
	gconfig "github.com/Laisky/go-config/v2"

	"github.com/Laisky/notion-blog/library/config"
)

// configGetter retrieves raw configuration values by dotted key path.
type configGetter func(key string) any

// validateStartupConfig validates startup configuration from the shared config source.
// It returns an error when any configured value is malformed or violates constraints.
func validateStartupConfig() error {
	return validateStartupConfigWithGetter(func(key string) any {
		return gconfig.S.Get(key)
	})
}

// validateStartupConfigWithGetter validates startup configuration via a key-value getter.
// It accepts a value getter and returns nil when all configured values are valid.
func validateStartupConfigWithGetter(get configGetter) error {
	if get == nil {
		return errors.New("config getter is nil")
	}

	validationErrs := make([]string, 0)

	validateSiteConfig(get, &validationErrs)
	validateNotionConfig(get, &validationErrs)
	validatePostsConfig(get, &validationErrs)
	validateRedisConfig(get, &validationErrs)
	validateEngagementConfig(get, &validationErrs)
	validateWebConfig(get, &validationErrs)

	if len(validationErrs) == 0 {
		return nil
	}

	return errors.Errorf("invalid configuration:\n - %s", strings.Join(validationErrs, "\n - "))
}

// validateSiteConfig validates the public site identity.
// It accepts a getter and an error collector pointer and appends validation errors.
func validateSiteConfig(get configGetter, errs *[]string) {
	validateOptionalStringNonEmpty(get, "settings.site.title", errs)
	validateOptionalURL(get, "settings.site.link", errs)
	validateOptionalURL(get, "settings.site.og_image_url", errs)
}

// validateNotionConfig validates the content source settings.
// It accepts a getter and an error collector pointer and appends validation errors.
func validateNotionConfig(get configGetter, errs *[]string) {
	validateRequiredString(get, "settings.notion.page_id", errs)
	validateOptionalURL(get, "settings.notion.api_base_url", errs)
	validateOptionalIntMin(get, "settings.notion.timeout_sec", 1, errs)
}

// validatePostsConfig validates the post cache and feed settings.
// It accepts a getter and an error collector pointer and appends validation errors.
func validatePostsConfig(get configGetter, errs *[]string) {
	validateOptionalIntMin(get, "settings.posts.revalidate_sec", 0, errs)
	validateOptionalIntMin(get, "settings.posts.page_size", 1, errs)
}

// validateRedisConfig validates redis-related startup configuration values.
// It accepts a getter and an error collector pointer and appends validation errors.
func validateRedisConfig(get configGetter, errs *[]string) {
	validateOptionalURL(get, "settings.db.redis.url", errs)
	validateOptionalIntMin(get, "settings.db.redis.db", 0, errs)

	if raw := get("settings.db.redis.addr"); raw != nil {
		addr, parseErr := parseStrictString(raw)
		if parseErr != nil || !isValidHost(addr) {
			appendValidationError(errs, "settings.db.redis.addr must be a valid host:port")
		}
	}
}

// validateEngagementConfig validates likes and comments settings.
// It accepts a getter and an error collector pointer and appends validation errors.
func validateEngagementConfig(get configGetter, errs *[]string) {
	validateOptionalBool(get, "settings.engagement.production", errs)

	raw := get("settings.engagement.likes_mode")
	if raw == nil {
		return
	}
	mode, parseErr := parseStrictString(raw)
	if parseErr != nil {
		appendValidationError(errs, "settings.engagement.likes_mode must be a string")
		return
	}
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case config.LikesModeFull, config.LikesModeLite:
	default:
		appendValidationError(errs, "settings.engagement.likes_mode must be one of [%s, %s]",
			config.LikesModeFull, config.LikesModeLite)
	}
}

// validateWebConfig validates the http server settings.
// It accepts a getter and an error collector pointer and appends validation errors.
func validateWebConfig(get configGetter, errs *[]string) {
	if raw := get("settings.web.cors_hosts"); raw != nil {
		hosts, ok := parseStrictStringList(raw)
		if !ok {
			appendValidationError(errs, "settings.web.cors_hosts must be a list of hosts")
		}
		for i, host := range hosts {
			if !isValidHost(host) {
				appendValidationError(errs, "settings.web.cors_hosts[%d] must be a valid host", i)
			}
		}
	}

	if raw := get("settings.web.trusted_proxies"); raw != nil {
		if _, ok := parseStrictStringList(raw); !ok {
			appendValidationError(errs, "settings.web.trusted_proxies must be a list of strings")
		}
	}
}

// validateOptionalBool validates an optionally configured boolean key.
// It accepts a getter, the key, and an error collector pointer and appends validation errors.
func validateOptionalBool(get configGetter, key string, errs *[]string) {
	raw := get(key)
	if raw == nil {
		return
	}

	if _, ok := parseStrictBool(raw); !ok {
		appendValidationError(errs, "%s must be a boolean", key)
	}
}

// validateOptionalIntMin validates an optionally configured integer key with a minimum constraint.
// It accepts a getter, the key, a minimum value, and an error collector pointer and appends validation errors.
func validateOptionalIntMin(get configGetter, key string, min int, errs *[]string) {
	raw := get(key)
	if raw == nil {
		return
	}

	value, parseErr := parseStrictInt(raw)
	if parseErr != nil {
		appendValidationError(errs, "%s must be an integer", key)
		return
	}

	if value < min {
		appendValidationError(errs, "%s must be >= %d", key, min)
	}
}

// validateOptionalURL validates an optionally configured absolute URL key.
// It accepts a getter, the key, and an error collector pointer and appends validation errors.
func validateOptionalURL(get configGetter, key string, errs *[]string) {
	raw := get(key)
	if raw == nil {
		return
	}

	value, parseErr := parseStrictString(raw)
	if parseErr != nil {
		appendValidationError(errs, "%s must be a string URL", key)
		return
	}

	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		appendValidationError(errs, "%s must not be empty", key)
		return
	}

	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		appendValidationError(errs, "%s must be a valid absolute URL", key)
	}
}

// validateOptionalStringNonEmpty validates an optionally configured non-empty string key.
// It accepts a getter, the key, and an error collector pointer and appends validation errors.
func validateOptionalStringNonEmpty(get configGetter, key string, errs *[]string) {
	raw := get(key)
	if raw == nil {
		return
	}

	value, parseErr := parseStrictString(raw)
	if parseErr != nil {
		appendValidationError(errs, "%s must be a string", key)
		return
	}

	if strings.TrimSpace(value) == "" {
		appendValidationError(errs, "%s must not be empty", key)
	}
}

// validateRequiredString validates that a key is configured as a non-empty string.
// It accepts a getter, the key, and an error collector pointer and appends validation errors.
func validateRequiredString(get configGetter, key string, errs *[]string) {
	if get(key) == nil {
		appendValidationError(errs, "%s is required", key)
		return
	}

	validateOptionalStringNonEmpty(get, key, errs)
}

// parseStrictBool parses a value as boolean using strict conversion rules.
// It accepts a raw value and returns the parsed boolean and whether parsing succeeded.
func parseStrictBool(value any) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case int:
		return v != 0, true
	case int64:
		return v != 0, true
	case float64:
		if math.Trunc(v) != v {
			return false, false
		}
		return int64(v) != 0, true
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return false, false
		}
		switch strings.ToLower(trimmed) {
		case "true", "1", "yes":
			return true, true
		case "false", "0", "no":
			return false, true
		default:
			return false, false
		}
	default:
		return false, false
	}
}

// parseStrictInt parses a value as a strict integer.
// It accepts a raw value and returns the parsed int and an error when parsing fails.
func parseStrictInt(value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if math.Trunc(v) != v {
			return 0, errors.Errorf("%v is not an integer", v)
		}
		return int(v), nil
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0, errors.New("empty integer string")
		}
		parsed, err := strconv.Atoi(trimmed)
		if err != nil {
			return 0, errors.Wrap(err, "atoi")
		}
		return parsed, nil
	default:
		return 0, errors.Errorf("unsupported int type %T", value)
	}
}

// parseStrictString parses a value as a strict string.
// It accepts a raw value and returns the parsed string and an error when parsing fails.
func parseStrictString(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return "", errors.Errorf("unsupported string type %T", value)
	}
}

// parseStrictStringList parses a yaml list of strings.
// It accepts a raw value and returns the parsed items and whether every item is a string.
func parseStrictStringList(value any) ([]string, bool) {
	switch v := value.(type) {
	case []string:
		return v, true
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, err := parseStrictString(item)
			if err != nil {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}

// isValidHost validates a host string without scheme or path components.
// It accepts a host string and returns true when the host is syntactically acceptable.
func isValidHost(host string) bool {
	trimmed := strings.TrimSpace(host)
	if trimmed == "" {
		return false
	}
	if strings.Contains(trimmed, "://") || strings.Contains(trimmed, "/") {
		return false
	}
	return true
}

// appendValidationError appends a formatted validation error to the collector.
// It accepts an error slice pointer, a format string, and format arguments, and has no return value.
func appendValidationError(errs *[]string, format string, args ...any) {
	if errs == nil {
		return
	}
	*errs = append(*errs, fmt.Sprintf(format, args...))
}
