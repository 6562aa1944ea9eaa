package organizer

import (
	"encoding/json"
	"sort"
)

// ResolveOrder produces the display order of the observed category labels.
//
// The sentinel always comes first. Labels found in saved follow in saved order, then the
// remaining labels case-insensitively. Saved labels that are no longer observed are left out.
func ResolveOrder(observed, saved []string) []string {
	pos := make(map[string]int, len(saved))
	for i, label := range saved {
		if _, ok := pos[label]; !ok {
			pos[label] = i
		}
	}

	var known, unknown []string
	seen := make(map[string]struct{}, len(observed))
	for _, label := range observed {
		if label == "" || label == AllCategory {
			continue
		}
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		if _, ok := pos[label]; ok {
			known = append(known, label)
		} else {
			unknown = append(unknown, label)
		}
	}

	sort.Slice(known, func(i, j int) bool { return pos[known[i]] < pos[known[j]] })
	sort.Slice(unknown, func(i, j int) bool { return lessFold(unknown[i], unknown[j]) })

	out := make([]string, 0, 1+len(known)+len(unknown))
	out = append(out, AllCategory)
	out = append(out, known...)
	return append(out, unknown...)
}

// MoveUp swaps label with its previous non-sentinel neighbour.
func MoveUp(label string, current []string) []string {
	return move(label, current, -1)
}

// MoveDown swaps label with its next non-sentinel neighbour.
func MoveDown(label string, current []string) []string {
	return move(label, current, 1)
}

func move(label string, current []string, step int) []string {
	out := make([]string, len(current))
	copy(out, current)
	if label == AllCategory {
		return out
	}

	from := -1
	for i, l := range out {
		if l == label {
			from = i
			break
		}
	}
	if from < 0 {
		return out
	}

	to := from + step
	for to >= 0 && to < len(out) && out[to] == AllCategory {
		to += step
	}
	if to < 0 || to >= len(out) {
		return out
	}
	out[from], out[to] = out[to], out[from]
	return out
}

// StoredOrder is the form of an order that gets persisted: the sentinel is never stored.
func StoredOrder(order []string) []string {
	out := make([]string, 0, len(order))
	for _, label := range order {
		if label != AllCategory {
			out = append(out, label)
		}
	}
	return out
}

// MergeStoredOrder returns the order to persist after the visible order changed. Saved labels
// that are not visible keep their slots; the visible labels fill the remaining slots in their new
// order, and any visible label that was never saved goes at the end.
func MergeStoredOrder(order, saved []string) []string {
	visible := StoredOrder(order)
	isVisible := make(map[string]struct{}, len(visible))
	for _, label := range visible {
		isVisible[label] = struct{}{}
	}

	out := make([]string, 0, len(saved)+len(visible))
	emitted := make(map[string]struct{}, len(saved)+len(visible))
	next := 0
	for _, label := range saved {
		if label == AllCategory {
			continue
		}
		if _, ok := isVisible[label]; !ok {
			if _, dup := emitted[label]; !dup {
				emitted[label] = struct{}{}
				out = append(out, label)
			}
			continue
		}
		if next < len(visible) {
			if _, dup := emitted[visible[next]]; !dup {
				emitted[visible[next]] = struct{}{}
				out = append(out, visible[next])
			}
			next++
		}
	}
	for ; next < len(visible); next++ {
		if _, dup := emitted[visible[next]]; !dup {
			emitted[visible[next]] = struct{}{}
			out = append(out, visible[next])
		}
	}
	return out
}

// DecodeOrder reads a persisted order. Anything that is not a JSON array of strings is an empty order.
func DecodeOrder(raw []byte) []string {
	if len(raw) == 0 {
		return nil
	}
	var order []string
	if err := json.Unmarshal(raw, &order); err != nil {
		return nil
	}
	return order
}
