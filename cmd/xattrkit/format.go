package main

import (
	"encoding/hex"
	"strconv"
	"unicode"
	"unicode/utf8"
)

// isText reports whether value can be printed to a terminal unchanged. A
// single trailing NUL, as stored by many C programs, is accepted.
func isText(value []byte) bool {
	value = textValue(value)
	if !utf8.Valid(value) {
		return false
	}
	for _, r := range string(value) {
		if !unicode.IsPrint(r) && r != '\n' && r != '\t' {
			return false
		}
	}
	return true
}

// textValue returns value without the trailing NUL accepted by isText.
func textValue(value []byte) []byte {
	if n := len(value); n > 0 && value[n-1] == 0 {
		return value[:n-1]
	}
	return value
}

// quoteValue formats value for a single line listing.
func quoteValue(value []byte) string {
	if isText(value) {
		return strconv.Quote(string(value))
	}
	return "0x" + hex.EncodeToString(value)
}

// parseValue decodes a value given on the command line. Values with a 0x
// prefix or given with --hex are hex encoded.
func parseValue(s string, isHex bool) ([]byte, error) {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
		isHex = true
	}
	if !isHex {
		return []byte(s), nil
	}
	return hex.DecodeString(s)
}
