package format

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// TotalItemsLimit caps the region-wide item preview.
const TotalItemsLimit = 20

// NoContainers is the line emitted when the region holds no containers.
const NoContainers = "No containers found in this region."

// Item is one entry of an item tally.
type Item struct {
	ID          string
	Count       Number
	DisplayName string
}

type itemEntry struct {
	Count       Number  `json:"count"`
	DisplayName *string `json:"displayName"`
}

type chestPayload struct {
	Region     json.RawMessage `json:"region"`
	TotalItems json.RawMessage `json:"totalItems"`
	Containers json.RawMessage `json:"containers"`
}

type containerRecord struct {
	Pos   []Number                   `json:"pos"`
	Items map[string]json.RawMessage `json:"items"`
}

// ChestInfo renders the container query report: region, sorted region-wide
// totals (capped) and every container's contents (uncapped). A totals or
// containers value of the wrong shape is reported inline for that section.
func ChestInfo(payload json.RawMessage) (string, error) {
	var p chestPayload
	if err := decodeObject(payload, &p); err != nil {
		return "", fmt.Errorf("chest info: %w", err)
	}
	totals, totalsErr := itemTally(p.TotalItems)
	containers, containersErr := recordList(p.Containers)

	var b strings.Builder
	b.WriteString("Container query report\n")
	fmt.Fprintf(&b, "Region: %s\n", region(p.Region))
	fmt.Fprintf(&b, "Containers: %s\n", countOrMarker(len(containers), containersErr))
	fmt.Fprintf(&b, "Distinct items: %s\n", countOrMarker(len(totals), totalsErr))

	b.WriteString("\nTotal items")
	if len(totals) > TotalItemsLimit {
		fmt.Fprintf(&b, " (top %d by count)", TotalItemsLimit)
	}
	b.WriteString(":\n")
	lines := tallyLines(totals, TotalItemsLimit)
	switch {
	case totalsErr != nil:
		lines = []string{parseErrorMarker(totalsErr)}
	case len(lines) == 0:
		lines = []string{"(none)"}
	}
	for _, line := range lines {
		b.WriteString("  " + line + "\n")
	}

	b.WriteString("\n")
	if containersErr != nil {
		b.WriteString("Container details:\n  " + parseErrorMarker(containersErr))
		return b.String(), nil
	}
	if len(containers) == 0 {
		b.WriteString(NoContainers)
		return b.String(), nil
	}

	b.WriteString("Container details:")
	for i, raw := range containers {
		b.WriteString("\n")
		b.WriteString(renderRecord(raw, func(raw json.RawMessage) (string, error) {
			return containerBlock(i+1, raw)
		}))
	}
	return b.String(), nil
}

// itemTally decodes an item-id keyed tally; a missing or null value is empty.
func itemTally(raw json.RawMessage) (map[string]json.RawMessage, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var tally map[string]json.RawMessage
	if err := decodeObject(raw, &tally); err != nil {
		return nil, err
	}
	return tally, nil
}

func countOrMarker(n int, err error) string {
	if err != nil {
		return parseErrorMarker(err)
	}
	return strconv.Itoa(n)
}

func containerBlock(index int, raw json.RawMessage) (string, error) {
	var c containerRecord
	if err := decodeObject(raw, &c); err != nil {
		return "", fmt.Errorf("container #%d: %w", index, err)
	}
	pos := "unknown position"
	if p, ok := triple(c.Pos); ok {
		pos = p
	}

	var b strings.Builder
	fmt.Fprintf(&b, "  #%d at %s:", index, pos)
	lines := tallyLines(c.Items, 0)
	if len(lines) == 0 {
		b.WriteString("\n    (empty)")
	}
	for _, line := range lines {
		b.WriteString("\n    " + line)
	}
	return b.String(), nil
}

// SortItems orders a tally by descending count, ties broken by id.
func SortItems(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		ci, cj := items[i].Count.or(0), items[j].Count.or(0)
		if ci != cj {
			return ci > cj
		}
		return items[i].ID < items[j].ID
	})
}

// tallyLines renders a tally sorted by count. limit <= 0 means no cap.
// Entries that cannot be decoded are reported inline after the rest.
func tallyLines(tally map[string]json.RawMessage, limit int) []string {
	items := make([]Item, 0, len(tally))
	var broken []string
	for id, raw := range tally {
		var e itemEntry
		if err := decodeObject(raw, &e); err != nil {
			broken = append(broken, fmt.Sprintf("%s %s", id, parseErrorMarker(err)))
			continue
		}
		name := or(e.DisplayName, id)
		items = append(items, Item{ID: id, Count: e.Count, DisplayName: name})
	}
	SortItems(items)
	sort.Strings(broken)

	shown := items
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}
	lines := make([]string, 0, len(shown)+len(broken)+1)
	for _, it := range shown {
		lines = append(lines, fmt.Sprintf("%s [%s]: %s", it.DisplayName, it.ID, Count(it.Count)))
	}
	if hidden := len(items) - len(shown); hidden > 0 {
		lines = append(lines, fmt.Sprintf("... and %d more item types", hidden))
	}
	return append(lines, broken...)
}

func region(raw json.RawMessage) string {
	const unavailable = "unavailable"
	if len(raw) == 0 {
		return unavailable
	}
	var r struct {
		From []Number `json:"from"`
		To   []Number `json:"to"`
	}
	if err := decodeObject(raw, &r); err != nil {
		return unavailable
	}
	from, ok1 := triple(r.From)
	to, ok2 := triple(r.To)
	if !ok1 || !ok2 {
		return unavailable
	}
	return from + " -> " + to
}

// triple renders an integer 3-tuple as "(x, y, z)".
func triple(v []Number) (string, bool) {
	if len(v) != 3 {
		return "", false
	}
	for _, n := range v {
		if !n.Valid {
			return "", false
		}
	}
	return fmt.Sprintf("(%d, %d, %d)", int64(v[0].Value), int64(v[1].Value), int64(v[2].Value)), true
}
