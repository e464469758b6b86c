package render

import (
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/sherine-k/outbreak/pkg/config"
)

const snapshotColumns = 6

// DaySchedule maps simulation days onto the calendar and matches them against
// a cron schedule.
type DaySchedule struct {
	schedule cron.Schedule
	start    time.Time
}

// NewDaySchedule parses expr. Day 0 falls on start.
func NewDaySchedule(expr string, start time.Time) (*DaySchedule, error) {
	schedule, err := config.ParseSchedule(expr)
	if err != nil {
		return nil, err
	}
	return &DaySchedule{schedule: schedule, start: start}, nil
}

// Date returns the calendar date of day
func (d *DaySchedule) Date(day int) time.Time {
	return d.start.AddDate(0, 0, day)
}

// Matches reports whether the schedule fires at any time during day.
func (d *DaySchedule) Matches(day int) bool {
	date := d.Date(day)
	next := d.schedule.Next(date.Add(-time.Second))
	return !next.Before(date) && next.Before(date.AddDate(0, 0, 1))
}

// SnapshotSink keeps the frames of scheduled days and writes them as a single
// sheet on Close
type SnapshotSink struct {
	path     string
	schedule *DaySchedule
	images   []*image.RGBA
	days     []int
}

func NewSnapshotSink(path string, schedule *DaySchedule) *SnapshotSink {
	return &SnapshotSink{path: path, schedule: schedule}
}

func (s *SnapshotSink) AddFrame(day int, img *image.RGBA) error {
	if !s.schedule.Matches(day) {
		return nil
	}
	// Frames are retained past the call.
	dup := image.NewRGBA(img.Bounds())
	draw.Draw(dup, dup.Bounds(), img, img.Bounds().Min, draw.Src)
	s.images = append(s.images, dup)
	s.days = append(s.days, day)
	return nil
}

// Days returns the days captured so far
func (s *SnapshotSink) Days() []int {
	return s.days
}

// Close writes the sheet. Nothing is written when no day matched.
func (s *SnapshotSink) Close() error {
	if len(s.images) == 0 {
		return nil
	}

	sheet := combineImages(s.images, snapshotColumns)
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot sheet: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, sheet); err != nil {
		return fmt.Errorf("failed to encode snapshot sheet: %w", err)
	}
	return nil
}

// combineImages lays same-sized images out left to right, wrapping after
// columns images.
func combineImages(images []*image.RGBA, columns int) *image.RGBA {
	cell := images[0].Bounds()
	cols := columns
	if len(images) < cols {
		cols = len(images)
	}
	rows := (len(images) + cols - 1) / cols

	sheet := image.NewRGBA(image.Rect(0, 0, cell.Dx()*cols, cell.Dy()*rows))
	draw.Draw(sheet, sheet.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)
	for i, img := range images {
		x := (i % cols) * cell.Dx()
		y := (i / cols) * cell.Dy()
		dst := image.Rect(x, y, x+cell.Dx(), y+cell.Dy())
		draw.Draw(sheet, dst, img, img.Bounds().Min, draw.Src)
	}
	return sheet
}
