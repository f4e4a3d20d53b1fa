package params

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

var (
	ErrMissingKey = errors.New("params: missing key")
	ErrBadValue   = errors.New("params: malformed value")
)

// Dict is the decoded parameter block. Keys keep their -/+ prefix: the
// controller marks values set this cycle with - and carried-over values
// with +, and both spellings are distinct keys.
type Dict map[string]string

// Decode splits the raw parameter block into CRLF-separated lines and each
// line into a key and the remainder after the first space. A line without a
// space maps the whole line to the empty string. The last occurrence of a
// duplicated key wins.
func Decode(raw []byte) Dict {
	d := make(Dict)
	for _, line := range strings.Split(string(raw), "\r\n") {
		if line == "" {
			continue
		}
		if key, value, found := strings.Cut(line, " "); found {
			d[key] = value
		} else {
			d[line] = ""
		}
	}
	return d
}

// Encode serializes the dict back to the CRLF wire form, keys sorted.
func Encode(d Dict) []byte {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		if d[k] != "" {
			b.WriteByte(' ')
			b.WriteString(d[k])
		}
		b.WriteString("\r\n")
	}
	return []byte(b.String())
}

// Require returns the value for key or ErrMissingKey.
func (d Dict) Require(key string) (string, error) {
	v, ok := d[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissingKey, key)
	}
	return v, nil
}

// First returns the value of the first present key.
func (d Dict) First(keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := d[k]; ok {
			return v, true
		}
	}
	return "", false
}

// Int parses the value of key as a base-10 integer.
func (d Dict) Int(key string) (int, error) {
	v, err := d.Require(key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrBadValue, key, v)
	}
	return n, nil
}

// IntFirst parses the first present key of keys as an integer.
func (d Dict) IntFirst(keys ...string) (int, error) {
	v, ok := d.First(keys...)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrMissingKey, strings.Join(keys, "|"))
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrBadValue, strings.Join(keys, "|"), v)
	}
	return n, nil
}

// Float parses the value of key as a float64.
func (d Dict) Float(key string) (float64, error) {
	v, err := d.Require(key)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrBadValue, key, v)
	}
	return f, nil
}
