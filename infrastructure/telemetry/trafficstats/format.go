package trafficstats

import "fmt"

func FormatRate(bytesPerSecond uint64) string {
	return formatBinary(float64(bytesPerSecond), "/s")
}

func FormatTotal(bytes uint64) string {
	return formatBinary(float64(bytes), "")
}

func formatBinary(value float64, suffix string) string {
	units := []string{"B", "KiB", "MiB", "GiB", "TiB"}
	unitIdx := 0
	for value >= 1024 && unitIdx < len(units)-1 {
		value /= 1024
		unitIdx++
	}
	if unitIdx == 0 {
		return fmt.Sprintf("%.0f %s%s", value, units[unitIdx], suffix)
	}
	return fmt.Sprintf("%.1f %s%s", value, units[unitIdx], suffix)
}

// Summary renders one line, e.g. "up 12 pkts 1.2 KiB (300 B/s), down ...".
func (s Snapshot) Summary() string {
	return fmt.Sprintf("up %d pkts %s (%s), down %d pkts %s (%s)",
		s.Up.Packets, FormatTotal(s.Up.Bytes), FormatRate(s.Up.Rate),
		s.Down.Packets, FormatTotal(s.Down.Bytes), FormatRate(s.Down.Rate))
}
