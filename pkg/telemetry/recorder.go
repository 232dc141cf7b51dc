// Package telemetry records a per-tick movement trace and summarizes it.
// The simulation never reads a trace back; ReadCSV exists for tooling.
package telemetry

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/opd-ai/go-topdown/pkg/event"
	"github.com/opd-ai/go-topdown/pkg/physics"
)

// Sample is one row of the trace
type Sample struct {
	Tick    uint64  `csv:"tick"`
	DT      float64 `csv:"dt"`
	PosX    float64 `csv:"pos_x"`
	PosY    float64 `csv:"pos_y"`
	VelX    float64 `csv:"vel_x"`
	VelY    float64 `csv:"vel_y"`
	Speed   float64 `csv:"speed"`
	Facing  float64 `csv:"facing"`
	IntentX float64 `csv:"intent_x"`
	IntentY float64 `csv:"intent_y"`
}

// SampleFromTick flattens a tick event into a row
func SampleFromTick(e *event.TickEvent) Sample {
	s := e.State
	return Sample{
		Tick:    e.Tick,
		DT:      e.DT,
		PosX:    s.Position.X,
		PosY:    s.Position.Y,
		VelX:    s.Velocity.X,
		VelY:    s.Velocity.Y,
		Speed:   s.Speed(),
		Facing:  s.Facing,
		IntentX: e.Intent.X,
		IntentY: e.Intent.Y,
	}
}

// Summary describes a finished run
type Summary struct {
	Ticks         int
	SimTime       float64 // sum of dt, seconds
	Distance      float64 // sum of per-tick speeds
	MeanSpeed     float64
	StdDevSpeed   float64
	MedianSpeed   float64
	P90Speed      float64
	PeakSpeed     float64
	FinalPosition physics.Vector2D
	FinalFacing   float64
}

// Recorder collects samples. With a stream writer each sample is also
// written as a CSV row as it arrives; otherwise samples are kept for
// WriteCSV.
type Recorder struct {
	mu      sync.Mutex
	samples []Sample
	speeds  []float64
	simTime float64
	last    Sample

	stream        io.Writer
	headerWritten bool
	err           error

	sub *event.Subscription
}

// NewRecorder creates a recorder that keeps every sample in memory
func NewRecorder() *Recorder {
	return &Recorder{}
}

// NewStreamingRecorder creates a recorder that writes rows to w as they
// arrive and keeps only what Summarize needs.
func NewStreamingRecorder(w io.Writer) *Recorder {
	return &Recorder{stream: w}
}

// Attach records every TickCompleted event published on bus
func (r *Recorder) Attach(bus *event.Bus) {
	r.Detach()
	sub := bus.Subscribe(event.TickCompleted, r.HandleEvent)

	r.mu.Lock()
	r.sub = sub
	r.mu.Unlock()
}

// Detach stops recording from the bus
func (r *Recorder) Detach() {
	r.mu.Lock()
	sub := r.sub
	r.sub = nil
	r.mu.Unlock()

	if sub != nil {
		sub.Cancel()
	}
}

// HandleEvent records tick events and ignores the rest
func (r *Recorder) HandleEvent(e event.Event) {
	if tick, ok := e.(*event.TickEvent); ok {
		r.Record(SampleFromTick(tick))
	}
}

// Record adds one sample. Streaming write errors are kept; the first
// one is returned by Err and further rows are not written.
func (r *Recorder) Record(s Sample) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.speeds = append(r.speeds, s.Speed)
	r.simTime += s.DT
	r.last = s

	if r.stream == nil {
		r.samples = append(r.samples, s)
		return
	}
	if r.err != nil {
		return
	}

	rows := []Sample{s}
	var err error
	if !r.headerWritten {
		err = gocsv.Marshal(rows, r.stream)
		r.headerWritten = true
	} else {
		err = gocsv.MarshalWithoutHeaders(rows, r.stream)
	}
	if err != nil {
		r.err = fmt.Errorf("writing trace row %d: %w", s.Tick, err)
	}
}

// Err returns the first streaming write error
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.err
}

// Len returns the number of samples recorded
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.speeds)
}

// Samples returns a copy of the retained samples
func (r *Recorder) Samples() []Sample {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Sample, len(r.samples))
	copy(out, r.samples)
	return out
}

// WriteCSV writes the retained samples with a header row
func (r *Recorder) WriteCSV(w io.Writer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stream != nil {
		return errors.New("streaming recorder does not retain samples")
	}
	if err := gocsv.Marshal(r.samples, w); err != nil {
		return fmt.Errorf("writing trace: %w", err)
	}
	return nil
}

// ReadCSV parses a trace written by WriteCSV or a streaming recorder
func ReadCSV(r io.Reader) ([]Sample, error) {
	var samples []Sample
	if err := gocsv.Unmarshal(r, &samples); err != nil {
		return nil, fmt.Errorf("reading trace: %w", err)
	}
	return samples, nil
}

// ReadCSVFile parses the trace at path
func ReadCSVFile(path string) ([]Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadCSV(f)
}

// Summarize computes run statistics. An empty recorder gives a zero Summary.
func (r *Recorder) Summarize() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.speeds)
	if n == 0 {
		return Summary{}
	}

	sorted := make([]float64, n)
	copy(sorted, r.speeds)
	sort.Float64s(sorted)

	mean, std := stat.MeanStdDev(sorted, nil)
	if n == 1 {
		std = 0
	}

	return Summary{
		Ticks:         n,
		SimTime:       r.simTime,
		Distance:      floats.Sum(r.speeds),
		MeanSpeed:     mean,
		StdDevSpeed:   std,
		MedianSpeed:   stat.Quantile(0.5, stat.Empirical, sorted, nil),
		P90Speed:      stat.Quantile(0.9, stat.Empirical, sorted, nil),
		PeakSpeed:     floats.Max(sorted),
		FinalPosition: physics.Vector2D{X: r.last.PosX, Y: r.last.PosY},
		FinalFacing:   r.last.Facing,
	}
}
