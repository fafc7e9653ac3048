// Package redact masks secrets before they reach logs or terminal listings.
//
// Tool definitions routinely carry API tokens in env values, in arguments
// such as --api-key=..., or as credentials inside a server URL; everything
// printed by mcpsel goes through this package first.
package redact

import (
	"net/url"
	"strings"
)

// secretWords mark a key (env name, flag, header) as sensitive. Matching is
// case-insensitive and by substring.
var secretWords = []string{"TOKEN", "KEY", "SECRET", "PASSWORD", "AUTH", "CREDENTIAL", "PRIVATE"}

// tokenPrefixes identify well-known credential formats regardless of key.
var tokenPrefixes = []string{
	"ghp_", "gho_", "ghu_", "ghs_", "ghr_", // GitHub
	"sk-",            // OpenAI, Anthropic
	"AKIA",           // AWS access key id
	"xoxb-", "xoxp-", // Slack
}

// ShouldMask reports whether key names something secret.
func ShouldMask(key string) bool {
	upper := strings.ToUpper(key)
	for _, w := range secretWords {
		if strings.Contains(upper, w) {
			return true
		}
	}
	return false
}

// ContainsTokenPrefix reports whether value starts like a known token.
func ContainsTokenPrefix(value string) bool {
	for _, p := range tokenPrefixes {
		if strings.HasPrefix(value, p) {
			return true
		}
	}
	return false
}

// MaskValue keeps the last four characters of values longer than four and
// hides the rest; short values are fully replaced.
func MaskValue(value string) string {
	const keep = 4
	if len(value) <= keep {
		return "********"
	}
	return "****" + value[len(value)-keep:]
}

func maskIf(key, value string) string {
	if ShouldMask(key) || ContainsTokenPrefix(value) {
		return MaskValue(value)
	}
	return value
}

// Env returns a copy of env with sensitive values masked. nil stays nil.
func Env(env map[string]string) map[string]string {
	if env == nil {
		return nil
	}
	out := make(map[string]string, len(env))
	for k, v := range env {
		out[k] = maskIf(k, v)
	}
	return out
}

// Args returns a copy of args with secrets masked: bare tokens,
// "--flag=value" pairs with a sensitive flag name, the argument following a
// sensitive "--flag", and URL credentials.
func Args(args []string) []string {
	if args == nil {
		return nil
	}
	out := make([]string, len(args))
	pending := false
	for i, arg := range args {
		isFlag := strings.HasPrefix(arg, "-")
		flag, value, hasValue := strings.Cut(arg, "=")
		switch {
		case pending && !isFlag:
			out[i] = MaskValue(arg)
		case isFlag && hasValue:
			out[i] = flag + "=" + URL(maskIf(flag, value))
		case ContainsTokenPrefix(arg):
			out[i] = MaskValue(arg)
		default:
			out[i] = URL(arg)
		}
		pending = isFlag && !hasValue && ShouldMask(arg)
	}
	return out
}

// URL masks the password of a URL with userinfo and the values of
// sensitive query parameters, leaving the rest of raw byte for byte.
// Strings without "://" are returned unchanged.
func URL(raw string) string {
	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok || scheme == "" {
		return raw
	}
	rest, fragment, hasFragment := strings.Cut(rest, "#")
	rest, query, hasQuery := strings.Cut(rest, "?")

	if at := strings.LastIndex(rest, "@"); at >= 0 && !strings.Contains(rest[:at], "/") {
		if user, pw, ok := strings.Cut(rest[:at], ":"); ok {
			rest = user + ":" + MaskValue(pw) + rest[at:]
		}
	}

	out := scheme + "://" + rest
	if hasQuery {
		pairs := strings.Split(query, "&")
		for i, pair := range pairs {
			k, v, ok := strings.Cut(pair, "=")
			if !ok {
				continue
			}
			key, err := url.QueryUnescape(k)
			if err != nil {
				key = k
			}
			pairs[i] = k + "=" + maskIf(key, v)
		}
		out += "?" + strings.Join(pairs, "&")
	}
	if hasFragment {
		out += "#" + fragment
	}
	return out
}
