// Package suggestion derives behavioral configuration hints from a user's
// message history using fixed thresholds.
package suggestion

import (
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	hoursPerDay  = 24
	topHourCount = 3
)

// Stats is the per-hour rollup of a user's own messages.
type Stats struct {
	Counts       [hoursPerDay]int
	Chars        int64
	Exclamations int64
}

func (s Stats) Messages() int {
	total := 0
	for _, count := range s.Counts {
		total += count
	}
	return total
}

// Add accounts one message sent at hour.
func (s *Stats) Add(hour int, content string) {
	if hour < 0 || hour >= hoursPerDay {
		return
	}
	s.Counts[hour]++
	s.Chars += int64(utf8.RuneCountInString(content))
	s.Exclamations += int64(strings.Count(content, "!"))
}

type Sample struct {
	Content   string
	CreatedAt time.Time
}

// StatsFromMessages builds Stats in memory, reading hours in loc (UTC when nil).
func StatsFromMessages(samples []Sample, loc *time.Location) Stats {
	if loc == nil {
		loc = time.UTC
	}
	var stats Stats
	for _, sample := range samples {
		stats.Add(sample.CreatedAt.In(loc).Hour(), sample.Content)
	}
	return stats
}

type Metrics struct {
	Messages   int     `json:"messages"`
	AvgLen     float64 `json:"avg_len"`
	ExclamAvg  float64 `json:"exclam_avg"`
	TopHours   []int   `json:"topHours"`
	QuietStart int     `json:"quietStart"`
}

func Aggregate(stats Stats) Metrics {
	metrics := Metrics{
		TopHours:   topHours(stats.Counts),
		QuietStart: quietStart(stats.Counts),
	}
	if messages := stats.Messages(); messages > 0 {
		metrics.Messages = messages
		metrics.AvgLen = float64(stats.Chars) / float64(messages)
		metrics.ExclamAvg = float64(stats.Exclamations) / float64(messages)
	}
	return metrics
}

// topHours ranks hours with at least one message by count descending; equal
// counts keep the lower hour first.
func topHours(counts [hoursPerDay]int) []int {
	hours := make([]int, 0, hoursPerDay)
	for hour, count := range counts {
		if count > 0 {
			hours = append(hours, hour)
		}
	}
	sort.SliceStable(hours, func(i, j int) bool {
		return counts[hours[i]] > counts[hours[j]]
	})
	if len(hours) > topHourCount {
		hours = hours[:topHourCount]
	}
	return hours
}

// quietStart is the least used hour across all 24, lowest hour on ties.
func quietStart(counts [hoursPerDay]int) int {
	quiet := 0
	for hour := 1; hour < hoursPerDay; hour++ {
		if counts[hour] < counts[quiet] {
			quiet = hour
		}
	}
	return quiet
}
