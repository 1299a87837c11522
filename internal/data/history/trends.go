package history

import (
	"fmt"
	"math"
	"time"
)

// BuildTrendReport derives per-scan deltas and a moving average of total
// declarations over window. Snapshots must be ordered oldest first.
func BuildTrendReport(projectKey string, snapshots []Snapshot, window time.Duration) (TrendReport, error) {
	if len(snapshots) == 0 {
		return TrendReport{}, fmt.Errorf("no snapshots available")
	}

	points := make([]TrendPoint, 0, len(snapshots))
	for i, current := range snapshots {
		point := TrendPoint{
			Timestamp:            current.Timestamp,
			ScanID:               current.ScanID,
			CommitHash:           current.CommitHash,
			FileCount:            current.FileCount,
			ParseFailures:        current.ParseFailures,
			VariableDeclarations: current.VariableDeclarations,
			FunctionDeclarations: current.FunctionDeclarations,
			ClassDeclarations:    current.ClassDeclarations,
			ExportDeclarations:   current.ExportDeclarations,
		}

		if i > 0 {
			prev := snapshots[i-1]
			point.DeltaFiles = current.FileCount - prev.FileCount
			point.DeltaVariables = current.VariableDeclarations - prev.VariableDeclarations
			point.DeltaFunctions = current.FunctionDeclarations - prev.FunctionDeclarations
			point.DeltaClasses = current.ClassDeclarations - prev.ClassDeclarations
			point.DeltaExports = current.ExportDeclarations - prev.ExportDeclarations
			if prevTotal := prev.Declarations(); prevTotal > 0 {
				delta := current.Declarations() - prevTotal
				point.GrowthPct = round2(float64(delta) / float64(prevTotal) * 100)
			}
		}

		point.AvgDeclarations = round2(movingAverage(snapshots, i, window))
		point.WindowHours = round2(window.Hours())
		points = append(points, point)
	}

	return TrendReport{
		SchemaVersion: SchemaVersion,
		ProjectKey:    normalizeProjectKey(projectKey),
		Since:         snapshots[0].Timestamp,
		Until:         snapshots[len(snapshots)-1].Timestamp,
		Window:        window.String(),
		ScanCount:     len(points),
		Points:        points,
	}, nil
}

func movingAverage(snapshots []Snapshot, index int, window time.Duration) float64 {
	if window <= 0 {
		return float64(snapshots[index].Declarations())
	}

	cutoff := snapshots[index].Timestamp.Add(-window)
	total := 0
	count := 0
	for i := index; i >= 0; i-- {
		if snapshots[i].Timestamp.Before(cutoff) {
			break
		}
		total += snapshots[i].Declarations()
		count++
	}
	if count == 0 {
		return 0
	}
	return float64(total) / float64(count)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
