package sky

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

type MOCMode string

const (
	MOCHealpix MOCMode = "healpix"
	MOCBorders MOCMode = "border"
)

// MOCOptions are the display options of an addMOC command.
type MOCOptions struct {
	Color   string  `json:"color"`
	Opacity float64 `json:"opacity"`
	Mode    MOCMode `json:"mode"`
}

// MOCFromOrders renders an order -> cells map as the JSON object the
// frontend expects. Cells may be single indices or inclusive "a-b" ranges.
// Orders are emitted in ascending numeric order.
func MOCFromOrders(orders map[string][]string) (string, error) {
	keys := make([]string, 0, len(orders))
	for k := range orders {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, errA := strconv.Atoi(keys[i])
		b, errB := strconv.Atoi(keys[j])
		if errA != nil || errB != nil {
			return keys[i] < keys[j]
		}
		return a < b
	})

	parts := make([]string, 0, len(keys))
	for _, order := range keys {
		cells, err := expandCells(orders[order])
		if err != nil {
			return "", err
		}
		parts = append(parts, fmt.Sprintf("%q:[%s]", order, strings.Join(cells, ",")))
	}
	return "{" + strings.Join(parts, ",") + "}", nil
}

// MOCFromASCII converts the ASCII serialisation ("3/1-3 4/10 12") into the
// frontend JSON form. Strings without an order separator are returned
// unchanged, since they are assumed to already be JSON.
func MOCFromASCII(s string) (string, error) {
	if !strings.Contains(s, "/") {
		return s, nil
	}

	var (
		parts []string
		order string
		cells []string
	)
	flush := func() error {
		if order == "" {
			return nil
		}
		expanded, err := expandCells(cells)
		if err != nil {
			return err
		}
		parts = append(parts, fmt.Sprintf("%q:[%s]", order, strings.Join(expanded, ",")))
		return nil
	}

	for _, tok := range strings.Fields(s) {
		if i := strings.Index(tok, "/"); i >= 0 {
			if err := flush(); err != nil {
				return "", err
			}
			order = tok[:i]
			cells = nil
			tok = tok[i+1:]
		}
		if tok != "" {
			cells = append(cells, tok)
		}
	}
	if err := flush(); err != nil {
		return "", err
	}
	return "{" + strings.Join(parts, ",") + "}", nil
}

func expandCells(cells []string) ([]string, error) {
	out := make([]string, 0, len(cells))
	for _, c := range cells {
		lo, hi, isRange := strings.Cut(c, "-")
		if !isRange {
			if _, err := strconv.Atoi(c); err != nil {
				return nil, fmt.Errorf("invalid moc cell %q", c)
			}
			out = append(out, c)
			continue
		}
		start, err := strconv.Atoi(lo)
		if err != nil {
			return nil, fmt.Errorf("invalid moc range %q", c)
		}
		end, err := strconv.Atoi(hi)
		if err != nil || end < start {
			return nil, fmt.Errorf("invalid moc range %q", c)
		}
		for i := start; i <= end; i++ {
			out = append(out, strconv.Itoa(i))
		}
	}
	return out, nil
}
