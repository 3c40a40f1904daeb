package version

import (
	"fmt"
	"strings"

	"golang.org/x/mod/semver"
)

func canonical(s string) (string, error) {
	v := "v" + strings.TrimPrefix(strings.TrimSpace(s), "v")
	if !semver.IsValid(v) {
		return "", fmt.Errorf("invalid version %q", s)
	}
	return v, nil
}

// Compare orders two semantic versions, with or without a leading "v". It returns 1 if a > b,
// -1 if a < b and 0 if they are equal. A pre-release sorts before its release and build metadata is ignored.
func Compare(a, b string) (int, error) {
	av, err := canonical(a)
	if err != nil {
		return 0, err
	}

	bv, err := canonical(b)
	if err != nil {
		return 0, err
	}

	return semver.Compare(av, bv), nil
}
