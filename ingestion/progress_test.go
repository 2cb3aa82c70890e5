package ingestion

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProgressTracker_UnknownTotal(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 0, 10)

	tracker.Start()
	tracker.Add(10, 12)
	time.Sleep(time.Millisecond)
	assert.Greater(t, tracker.Elapsed(), time.Duration(0))

	output := buf.String()
	assert.Contains(t, output, "10 rows, 12 fragments")
	assert.Contains(t, output, "rows/s")
	assert.NotContains(t, output, "%")
}

func TestProgressTracker_KnownTotal(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 100, 10)

	tracker.Start()
	tracker.Add(150, 150)

	assert.Contains(t, buf.String(), "100/100 rows (100.0%)", "should cap at total")
}

func TestProgressTracker_ReportInterval(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 0, 100)

	tracker.Start()
	tracker.Add(50, 50)
	assert.Equal(t, "", buf.String(), "should not print under interval")

	tracker.Add(50, 50)
	assert.NotEmpty(t, buf.String(), "should print at interval")
}

func TestProgressTracker_Finish(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 0, 1000)

	tracker.Start()
	tracker.Add(5, 7)
	tracker.Finish()

	output := buf.String()
	assert.Contains(t, output, "5 rows, 7 fragments")
	assert.Contains(t, output, "\n", "finish should print newline")
	assert.Equal(t, time.Duration(0), tracker.Elapsed(), "finish stops the tracker")
}

func TestProgressTracker_NotStarted(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 100, 10)

	tracker.Add(10, 10)
	tracker.Finish()

	assert.Equal(t, "", buf.String(), "should have no output when not started")
}
