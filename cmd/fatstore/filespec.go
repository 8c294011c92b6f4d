package main

import (
	"fmt"
	"strconv"
	"strings"
)

// parseFileSpec splits "PATH=SIZE" at the last '='.
func parseFileSpec(spec string) (string, int64, error) {
	i := strings.LastIndexByte(spec, '=')
	if i <= 0 {
		return "", 0, fmt.Errorf("file %q: want PATH=SIZE", spec)
	}
	size, err := strconv.ParseInt(spec[i+1:], 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("file %q: bad size: %w", spec, err)
	}
	return spec[:i], size, nil
}
