package format

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Preview sizes for the overhead report.
const (
	DiskLimit    = 5
	NetworkLimit = 5
)

type overheadSnapshot struct {
	Timestamp         Number          `json:"timestamp"`
	CPU               json.RawMessage `json:"cpu"`
	Memory            json.RawMessage `json:"memory"`
	LoadAverages      json.RawMessage `json:"loadAverages"`
	UptimeSeconds     Number          `json:"uptimeSeconds"`
	ProcessCount      Number          `json:"processCount"`
	ThreadCount       Number          `json:"threadCount"`
	Disks             json.RawMessage `json:"disks"`
	NetworkInterfaces json.RawMessage `json:"networkInterfaces"`
	FileStores        json.RawMessage `json:"fileStores"`
}

type cpuStats struct {
	SystemLoad    Number   `json:"systemLoad"`
	PerCore       []Number `json:"perCore"`
	User          Number   `json:"user"`
	System        Number   `json:"system"`
	Idle          Number   `json:"idle"`
	LogicalCount  Number   `json:"logicalCount"`
	PhysicalCount Number   `json:"physicalCount"`
}

type memoryStats struct {
	TotalBytes      Number `json:"totalBytes"`
	AvailableBytes  Number `json:"availableBytes"`
	UsedBytes       Number `json:"usedBytes"`
	UsedPercent     Number `json:"usedPercent"`
	SwapTotalBytes  Number `json:"swapTotalBytes"`
	SwapUsedBytes   Number `json:"swapUsedBytes"`
	SwapUsedPercent Number `json:"swapUsedPercent"`
}

// Disk is one physical disk entry.
type Disk struct {
	Name             string `json:"name"`
	Model            string `json:"model"`
	SizeBytes        Number `json:"sizeBytes"`
	ReadBytesPerSec  Number `json:"readBytesPerSec"`
	WriteBytesPerSec Number `json:"writeBytesPerSec"`
}

// NetworkInterface is one network adapter entry.
type NetworkInterface struct {
	Name            string `json:"name"`
	DisplayName     string `json:"displayName"`
	RecvBytesPerSec Number `json:"recvBytesPerSec"`
	SentBytesPerSec Number `json:"sentBytesPerSec"`
}

type fileStore struct {
	Name        string `json:"name"`
	Mount       string `json:"mount"`
	Type        string `json:"type"`
	TotalBytes  Number `json:"totalBytes"`
	UsedBytes   Number `json:"usedBytes"`
	UsedPercent Number `json:"usedPercent"` // 0-1
}

// Overhead renders the host metrics snapshot. The payload is either
// {"overhead": {...}} or the snapshot itself. Each section is decoded on its
// own so one malformed section does not hide the others.
func Overhead(payload json.RawMessage) (string, error) {
	raw := payload
	if inner, ok := member(payload, "overhead"); ok {
		raw = inner
	}
	var snap overheadSnapshot
	if err := decodeObject(raw, &snap); err != nil {
		return "", fmt.Errorf("overhead: %w", err)
	}

	sections := []string{
		fmt.Sprintf("System overhead (sampled %s)", Timestamp(snap.Timestamp)),
		section("CPU", snap.CPU, cpuSection),
		section("Memory", snap.Memory, memorySection),
		section("Load average", snap.LoadAverages, loadSection),
		systemSection(snap),
		listSection("Disks", snap.Disks, disksSection),
		listSection("Network", snap.NetworkInterfaces, networkSection),
	}
	if stores, err := recordList(snap.FileStores); err != nil || len(stores) > 0 {
		sections = append(sections, listSection("File systems", snap.FileStores, fileStoresSection))
	}
	return strings.Join(sections, "\n\n"), nil
}

// listSection decodes a JSON array of records and hands it to render; a
// value that is not an array becomes a marker for the section.
func listSection(title string, raw json.RawMessage, render func([]json.RawMessage) string) string {
	records, err := recordList(raw)
	if err != nil {
		return fmt.Sprintf("[%s]\n  %s", title, parseErrorMarker(err))
	}
	return render(records)
}

func recordList(raw json.RawMessage) ([]json.RawMessage, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var records []json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("expected array, got %s", preview(raw))
	}
	return records, nil
}

func section(title string, raw json.RawMessage, render func(json.RawMessage) (string, error)) string {
	if len(raw) == 0 || string(raw) == "null" {
		return fmt.Sprintf("[%s]\n  %s", title, NA)
	}
	return fmt.Sprintf("[%s]\n%s", title, renderRecord(raw, render))
}

func cpuSection(raw json.RawMessage) (string, error) {
	var c cpuStats
	if err := decodeObject(raw, &c); err != nil {
		return "", err
	}
	lines := []string{"  System load: " + Percent(c.SystemLoad)}
	if c.LogicalCount.Valid || c.PhysicalCount.Valid {
		lines = append(lines, fmt.Sprintf("  Cores: %s logical / %s physical", Count(c.LogicalCount), Count(c.PhysicalCount)))
	}
	if len(c.PerCore) > 0 {
		cores := make([]string, len(c.PerCore))
		for i, n := range c.PerCore {
			cores[i] = fmt.Sprintf("#%d %s", i, Percent(n))
		}
		lines = append(lines, "  Per core: "+strings.Join(cores, ", "))
	}
	if c.User.Valid || c.System.Valid || c.Idle.Valid {
		lines = append(lines, fmt.Sprintf("  User: %s  System: %s  Idle: %s", Percent(c.User), Percent(c.System), Percent(c.Idle)))
	}
	return strings.Join(lines, "\n"), nil
}

func memorySection(raw json.RawMessage) (string, error) {
	var m memoryStats
	if err := decodeObject(raw, &m); err != nil {
		return "", err
	}
	lines := []string{
		fmt.Sprintf("  Used: %s / %s (%s)", Bytes(m.UsedBytes), Bytes(m.TotalBytes), Percent(m.UsedPercent)),
	}
	if m.AvailableBytes.Valid {
		lines = append(lines, "  Available: "+Bytes(m.AvailableBytes))
	}
	lines = append(lines, fmt.Sprintf("  Swap: %s / %s (%s)", Bytes(m.SwapUsedBytes), Bytes(m.SwapTotalBytes), Percent(m.SwapUsedPercent)))
	return strings.Join(lines, "\n"), nil
}

func loadSection(raw json.RawMessage) (string, error) {
	var loads []Number
	if err := json.Unmarshal(raw, &loads); err != nil {
		return "", err
	}
	labels := []string{"1 min", "5 min", "15 min"}
	parts := make([]string, len(labels))
	for i, label := range labels {
		v := Number{}
		if i < len(loads) {
			v = loads[i]
		}
		parts[i] = fmt.Sprintf("%s: %s", label, Decimal(v))
	}
	return "  " + strings.Join(parts, "  "), nil
}

func systemSection(snap overheadSnapshot) string {
	return fmt.Sprintf("[System]\n  Uptime: %s\n  Processes: %s  Threads: %s",
		Uptime(snap.UptimeSeconds), Count(snap.ProcessCount), Count(snap.ThreadCount))
}

// SortDisks orders disks by descending write rate, ties broken by name.
func SortDisks(disks []Disk) {
	sort.SliceStable(disks, func(i, j int) bool {
		wi, wj := disks[i].WriteBytesPerSec.or(0), disks[j].WriteBytesPerSec.or(0)
		if wi != wj {
			return wi > wj
		}
		return disks[i].Name < disks[j].Name
	})
}

// SortInterfaces orders interfaces by descending receive rate, ties broken
// by name.
func SortInterfaces(nics []NetworkInterface) {
	sort.SliceStable(nics, func(i, j int) bool {
		ri, rj := nics[i].RecvBytesPerSec.or(0), nics[j].RecvBytesPerSec.or(0)
		if ri != rj {
			return ri > rj
		}
		return nics[i].Name < nics[j].Name
	})
}

func disksSection(records []json.RawMessage) string {
	var disks []Disk
	var broken []string
	for _, raw := range records {
		var d Disk
		if err := decodeObject(raw, &d); err != nil {
			broken = append(broken, "  "+parseErrorMarker(err))
			continue
		}
		disks = append(disks, d)
	}
	SortDisks(disks)

	lines := []string{previewTitle("Disks", "write rate", len(records), DiskLimit)}
	if len(records) == 0 {
		lines = append(lines, "  (none)")
	}
	for i, d := range disks {
		if i == DiskLimit {
			break
		}
		model := d.Model
		if model == "" {
			model = Unknown
		}
		lines = append(lines, fmt.Sprintf("  %s (%s) size %s, read %s, write %s",
			nonEmpty(d.Name), model, Bytes(d.SizeBytes), Rate(d.ReadBytesPerSec), Rate(d.WriteBytesPerSec)))
	}
	return strings.Join(append(lines, broken...), "\n")
}

func networkSection(records []json.RawMessage) string {
	var nics []NetworkInterface
	var broken []string
	for _, raw := range records {
		var n NetworkInterface
		if err := decodeObject(raw, &n); err != nil {
			broken = append(broken, "  "+parseErrorMarker(err))
			continue
		}
		nics = append(nics, n)
	}
	SortInterfaces(nics)

	lines := []string{previewTitle("Network", "receive rate", len(records), NetworkLimit)}
	if len(records) == 0 {
		lines = append(lines, "  (none)")
	}
	for i, n := range nics {
		if i == NetworkLimit {
			break
		}
		display := n.DisplayName
		if display == "" {
			display = nonEmpty(n.Name)
		}
		lines = append(lines, fmt.Sprintf("  %s (%s) recv %s, sent %s",
			display, nonEmpty(n.Name), Rate(n.RecvBytesPerSec), Rate(n.SentBytesPerSec)))
	}
	return strings.Join(append(lines, broken...), "\n")
}

func fileStoresSection(records []json.RawMessage) string {
	lines := []string{"[File systems]"}
	for _, raw := range records {
		var fs fileStore
		if err := decodeObject(raw, &fs); err != nil {
			lines = append(lines, "  "+parseErrorMarker(err))
			continue
		}
		mount := fs.Mount
		if mount == "" {
			mount = nonEmpty(fs.Name)
		}
		fsType := fs.Type
		if fsType == "" {
			fsType = Unknown
		}
		lines = append(lines, fmt.Sprintf("  %s (%s) %s used of %s (%s)",
			mount, fsType, Bytes(fs.UsedBytes), Bytes(fs.TotalBytes), Fraction(fs.UsedPercent)))
	}
	return strings.Join(lines, "\n")
}

func previewTitle(title, key string, total, limit int) string {
	if total > limit {
		return fmt.Sprintf("[%s] (top %d of %d by %s)", title, limit, total, key)
	}
	return fmt.Sprintf("[%s]", title)
}

func nonEmpty(s string) string {
	if strings.TrimSpace(s) == "" {
		return Unknown
	}
	return s
}
