// Package sequence derives human-readable codes such as PED0007 or PRV0012
// from the greatest code already allocated. Deleted codes are never reused.
package sequence

import (
	"fmt"
	"regexp"
	"strconv"
)

const padWidth = 4

var suffixPattern = regexp.MustCompile(`(\d+)$`)

// Next returns the code following currentMax for the given prefix.
// When currentMax is empty or its numeric suffix cannot be parsed, the
// sequence restarts at prefix + "0001".
//
// Next alone is not safe under concurrent allocation; callers must run it
// inside a serializing transaction and back the column with a unique
// constraint.
func Next(prefix, currentMax string) string {
	last := 0
	if currentMax != "" {
		if m := suffixPattern.FindStringSubmatch(currentMax); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				last = n
			}
		}
	}
	return fmt.Sprintf("%s%0*d", prefix, padWidth, last+1)
}
