package chapters

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/brogergvhs/ebangla2epub/internal/providers"
)

// Filter narrows all to a range ("3-7") or a list ("1,4,9"). With neither set
// it returns all unchanged. Numbers are the 1-based chapter indexes.
func Filter(all []providers.Chapter, rng string, list string) ([]providers.Chapter, error) {
	rng = strings.TrimSpace(rng)
	list = strings.TrimSpace(list)

	switch {
	case rng != "" && list != "":
		return nil, fmt.Errorf("use either a range or a list, not both")
	case rng != "":
		return FilterRange(all, rng)
	case list != "":
		return FilterList(all, list)
	}

	return all, nil
}

func FilterRange(all []providers.Chapter, rng string) ([]providers.Chapter, error) {
	parts := strings.Split(rng, "-")
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid range %q: want start-end", rng)
	}
	start, err1 := atoi(parts[0])
	end, err2 := atoi(parts[1])
	if err1 != nil || err2 != nil {
		return nil, fmt.Errorf("invalid range %q: want start-end", rng)
	}
	if start <= 0 || start > end || end > len(all) {
		return nil, fmt.Errorf("range %q out of bounds (1-%d)", rng, len(all))
	}

	return all[start-1 : end], nil
}

// FilterList keeps the listed chapters in site order, ignoring duplicates.
func FilterList(all []providers.Chapter, list string) ([]providers.Chapter, error) {
	want := map[int]bool{}
	for n := range strings.SplitSeq(list, ",") {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		idx, err := atoi(n)
		if err != nil {
			return nil, fmt.Errorf("invalid chapter number %q", n)
		}
		if idx <= 0 || idx > len(all) {
			return nil, fmt.Errorf("chapter %d out of bounds (1-%d)", idx, len(all))
		}
		want[idx] = true
	}

	out := []providers.Chapter{}
	for i, ch := range all {
		if want[i+1] {
			out = append(out, ch)
		}
	}

	return out, nil
}

func atoi(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}
