// Package probe reports details of the host NVIDIA driver.
package probe

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
)

const driverVersionPath = "/proc/driver/nvidia/version"

// ErrNoVersion is returned when the driver's proc file does not carry a
// recognizable version string.
var ErrNoVersion = errors.New("no NVRM version found")

// DriverVersion returns the loaded kernel module version, e.g.
// "525.60.12".
func DriverVersion() (string, error) {
	data, err := os.ReadFile(driverVersionPath)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", driverVersionPath, err)
	}

	return ParseDriverVersion(data)
}

// ParseDriverVersion extracts the module version from the contents of
// /proc/driver/nvidia/version. The NVRM line looks like:
//
//	NVRM version: NVIDIA UNIX x86_64 Kernel Module  525.60.12  ...
func ParseDriverVersion(data []byte) (string, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "NVRM version:") {
			continue
		}

		for _, field := range strings.Fields(line) {
			if isVersion(field) {
				return field, nil
			}
		}
	}

	return "", ErrNoVersion
}

// isVersion matches dotted decimal tokens such as 525.60.12.
func isVersion(s string) bool {
	dots := 0

	for _, r := range s {
		switch {
		case r == '.':
			dots++
		case r < '0' || r > '9':
			return false
		}
	}

	return dots >= 1 && s[0] != '.' && s[len(s)-1] != '.'
}
