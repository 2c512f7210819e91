package temporal

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/jengzang/patroliq-backend-go/internal/models"
	"github.com/jengzang/patroliq-backend-go/internal/stats"
)

type clusterAccumulator struct {
	label  int
	hours  []int
	days   []int
	months []int
	types  []string
}

// Summarize describes each temporal cluster. labels[i] is the cluster of incidents[i].
// Clusters are returned in ascending label order.
func Summarize(incidents []models.Incident, labels []int) ([]models.TimeClusterSummary, error) {
	if len(labels) != len(incidents) {
		return nil, fmt.Errorf("%d labels for %d incidents", len(labels), len(incidents))
	}

	groups := make(map[int]*clusterAccumulator)
	for i, inc := range incidents {
		acc, ok := groups[labels[i]]
		if !ok {
			acc = &clusterAccumulator{label: labels[i]}
			groups[labels[i]] = acc
		}
		acc.hours = append(acc.hours, inc.Hour)
		acc.days = append(acc.days, inc.DayOfWeek)
		acc.months = append(acc.months, inc.Month)
		acc.types = append(acc.types, inc.PrimaryType)
	}

	summaries := make([]models.TimeClusterSummary, 0, len(groups))
	for _, acc := range groups {
		peakHour := stats.ModeInt(acc.hours)
		pattern := PatternForHour(peakHour)
		summaries = append(summaries, models.TimeClusterSummary{
			TimeCluster:   acc.label,
			CrimeCount:    len(acc.hours),
			PeakHour:      peakHour,
			PeakDay:       dayName(stats.ModeInt(acc.days)),
			PeakMonth:     monthName(stats.ModeInt(acc.months)),
			MeanHour:      stats.CircularMeanHour(acc.hours),
			Concentration: stats.HourConcentration(acc.hours),
			TopCrimes:     stats.TopLabels(acc.types, 3),
			PatternType:   pattern,
			PatrolWindow:  PatrolWindow(pattern),
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].TimeCluster < summaries[j].TimeCluster
	})
	return summaries, nil
}

// Overview computes the headline temporal figures. labels may be nil, in which
// case the hour and month crosstabs are omitted.
func Overview(incidents []models.Incident, labels []int) (*models.TemporalOverview, error) {
	if labels != nil && len(labels) != len(incidents) {
		return nil, fmt.Errorf("%d labels for %d incidents", len(labels), len(incidents))
	}

	hours := make([]string, len(incidents))
	seasons := make([]string, len(incidents))
	overview := &models.TemporalOverview{}
	for i, inc := range incidents {
		hours[i] = strconv.Itoa(inc.Hour)
		seasons[i] = SeasonForMonth(inc.Month)
		if IsWeekend(inc.DayOfWeek) {
			overview.WeekendCount++
		} else {
			overview.WeekdayCount++
		}
	}

	for _, h := range stats.TopLabels(hours, 3) {
		hour, _ := strconv.Atoi(h)
		overview.PeakHours = append(overview.PeakHours, hour)
	}
	overview.TopSeason = firstOrEmpty(stats.TopLabels(seasons, 1))
	overview.HigherOn = "Weekdays"
	if overview.WeekendCount > overview.WeekdayCount {
		overview.HigherOn = "Weekends"
	}

	if labels != nil {
		overview.HourByCluster = hourCrosstab(incidents, labels)
		overview.MonthByCluster = monthCrosstab(incidents, labels)
	}
	return overview, nil
}

type bucketCluster struct{ bucket, cluster int }

// crosstab counts incidents per (bucket, cluster), ordered by bucket then cluster
func crosstab(incidents []models.Incident, labels []int, bucket func(models.Incident) int) ([]bucketCluster, map[bucketCluster]int) {
	counts := make(map[bucketCluster]int)
	for i, inc := range incidents {
		counts[bucketCluster{bucket(inc), labels[i]}]++
	}

	keys := make([]bucketCluster, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].bucket != keys[j].bucket {
			return keys[i].bucket < keys[j].bucket
		}
		return keys[i].cluster < keys[j].cluster
	})
	return keys, counts
}

func hourCrosstab(incidents []models.Incident, labels []int) []models.HourClusterCount {
	keys, counts := crosstab(incidents, labels, func(inc models.Incident) int { return inc.Hour })
	cells := make([]models.HourClusterCount, len(keys))
	for i, k := range keys {
		cells[i] = models.HourClusterCount{Hour: k.bucket, TimeCluster: k.cluster, Count: counts[k]}
	}
	return cells
}

func monthCrosstab(incidents []models.Incident, labels []int) []models.MonthClusterCount {
	keys, counts := crosstab(incidents, labels, func(inc models.Incident) int { return inc.Month })
	cells := make([]models.MonthClusterCount, len(keys))
	for i, k := range keys {
		cells[i] = models.MonthClusterCount{Month: k.bucket, TimeCluster: k.cluster, Count: counts[k]}
	}
	return cells
}

func dayName(d int) string {
	if d < 0 || d >= len(models.DayNames) {
		return ""
	}
	return models.DayNames[d][:3]
}

func monthName(m int) string {
	if m < 1 || m > len(models.MonthNames) {
		return ""
	}
	return models.MonthNames[m-1]
}

func firstOrEmpty(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
