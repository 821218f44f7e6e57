package http

import (
	"net"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

const publicURLTag = "public_url"

// newValidator reports fields by their json names and registers public_url,
// which accepts absolute http(s) URLs whose host is neither blocked nor loopback.
func newValidator(blockedHosts []string) *validator.Validate {
	validate := validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	blocked := make(map[string]struct{}, len(blockedHosts))
	for _, h := range blockedHosts {
		blocked[normalizeHost(strings.Trim(h, "[]"))] = struct{}{}
	}

	// RegisterValidation only fails on an empty tag or a nil func.
	_ = validate.RegisterValidation(publicURLTag, func(fl validator.FieldLevel) bool {
		return isPublicURL(fl.Field().String(), blocked)
	})

	return validate
}

func isPublicURL(raw string, blocked map[string]struct{}) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}

	host := normalizeHost(u.Hostname())
	if host == "" {
		return false
	}

	if _, ok := blocked[host]; ok {
		return false
	}

	ip := net.ParseIP(host)
	if ip == nil {
		// Browsers resolve hosts like 0x7f000001, 2130706433 or 127.1 as IPv4.
		return !endsInNumber(host)
	}

	return !ip.IsLoopback() && !ip.IsUnspecified()
}

// normalizeHost lowercases h and drops the trailing dots of a fully qualified name.
func normalizeHost(h string) string {
	return strings.TrimRight(strings.ToLower(h), ".")
}

// endsInNumber reports whether the last label of host is decimal or 0x-prefixed hex,
// which makes URL parsers treat the whole host as an IPv4 address.
func endsInNumber(host string) bool {
	label := host[strings.LastIndex(host, ".")+1:]
	if label == "" {
		return false
	}

	if strings.HasPrefix(label, "0x") {
		label = label[2:]
		return strings.Trim(label, "0123456789abcdef") == ""
	}

	return strings.Trim(label, "0123456789") == ""
}
