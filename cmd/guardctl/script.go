package main

import (
	"fmt"
	"strings"
)

type opKind string

const (
	opAcquire opKind = "acquire"
	opRelease opKind = "release"
)

type op struct {
	kind    opKind
	key     string
	payload string
}

func (o op) String() string {
	if o.payload != "" {
		return fmt.Sprintf("%s %s=%s", o.kind, o.key, o.payload)
	}
	return fmt.Sprintf("%s %s", o.kind, o.key)
}

// parseOps parses "acquire:key[=payload],release:key,...". "+key" and
// "-key" are shorthands for acquire and release.
func parseOps(s string) ([]op, error) {
	var ops []op
	for _, raw := range strings.Split(s, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}

		var o op
		switch {
		case strings.HasPrefix(raw, "+"):
			o.kind, raw = opAcquire, raw[1:]
		case strings.HasPrefix(raw, "-"):
			o.kind, raw = opRelease, raw[1:]
		default:
			verb, rest, found := strings.Cut(raw, ":")
			if !found {
				return nil, fmt.Errorf("operation %q: want acquire:key or release:key", raw)
			}
			switch opKind(strings.ToLower(verb)) {
			case opAcquire:
				o.kind = opAcquire
			case opRelease:
				o.kind = opRelease
			default:
				return nil, fmt.Errorf("operation %q: unknown verb %q", raw, verb)
			}
			raw = rest
		}

		key, payload, _ := strings.Cut(raw, "=")
		if o.kind == opRelease && payload != "" {
			return nil, fmt.Errorf("release %q takes no payload", key)
		}
		o.key, o.payload = key, payload
		ops = append(ops, o)
	}
	return ops, nil
}
