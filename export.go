package post

import (
	"fmt"
	"os"

	kitlog "github.com/go-kit/kit/log"
)

// Sink receives one State per completed integration step (spec §4.N).
type Sink interface {
	WriteState(s State) error
	Close() error
}

// StdoutSink logs every state as a single logfmt line, in the teacher's
// structured-logging style. When Verbose is false it only logs once per
// phase (the first step of each), matching the CLI's default quiet mode.
type StdoutSink struct {
	Verbose bool

	logger   kitlog.Logger
	lastSeen int
	seenAny  bool
}

// NewStdoutSink returns a Sink that logs to stdout via go-kit's logfmt
// logger.
func NewStdoutSink(verbose bool) *StdoutSink {
	return &StdoutSink{Verbose: verbose, logger: kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout)), lastSeen: -1}
}

// WriteState implements Sink.
func (s *StdoutSink) WriteState(st State) error {
	if !s.Verbose {
		if s.seenAny && st.PhaseIndex == s.lastSeen {
			return nil
		}
		s.lastSeen = st.PhaseIndex
		s.seenAny = true
	}
	return s.logger.Log(
		"phase", st.PhaseIndex,
		"step", st.StepIndex,
		"t", st.Time,
		"position_x", st.PositionInertial[0],
		"position_y", st.PositionInertial[1],
		"position_z", st.PositionInertial[2],
		"velocity_x", st.VelocityInertial[0],
		"velocity_y", st.VelocityInertial[1],
		"velocity_z", st.VelocityInertial[2],
		"velocity_mps", Norm(st.VelocityInertial),
		"altitude_m", st.Altitude,
		"mass_kg", st.Mass,
		"propellant_kg", st.PropellantMass,
		"throttle", st.Throttle,
	)
}

// Close implements Sink.
func (s *StdoutSink) Close() error { return nil }

// TraceSink appends every state as a line of <t> <x> <y> <z> <vx> <vy> <vz>
// to a Cosmographia-style .xyzv file, the optional trace output (spec §4.N).
// Position and velocity are recorded in the native SI units of State rather
// than the original km/km-s convention, since this core carries no
// ephemeris/Julian-date layer to anchor a TDB epoch to.
type TraceSink struct {
	f *os.File
}

// NewTraceSink creates (or truncates) path and writes the file header.
func NewTraceSink(path string) (*TraceSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating trace file: %w", err)
	}
	fmt.Fprintf(f, "# Records are <t_s> <x_m> <y_m> <z_m> <vx_mps> <vy_mps> <vz_mps>\n")
	return &TraceSink{f: f}, nil
}

// WriteState implements Sink.
func (t *TraceSink) WriteState(s State) error {
	_, err := fmt.Fprintf(t.f, "%.9f %.6f %.6f %.6f %.6f %.6f %.6f\n",
		s.Time,
		s.PositionInertial[0], s.PositionInertial[1], s.PositionInertial[2],
		s.VelocityInertial[0], s.VelocityInertial[1], s.VelocityInertial[2])
	return err
}

// Close implements Sink.
func (t *TraceSink) Close() error { return t.f.Close() }

// MultiSink fans one state record out to several sinks, in order.
type MultiSink []Sink

// WriteState implements Sink.
func (m MultiSink) WriteState(s State) error {
	for _, sink := range m {
		if err := sink.WriteState(s); err != nil {
			return err
		}
	}
	return nil
}

// Close implements Sink.
func (m MultiSink) Close() error {
	var first error
	for _, sink := range m {
		if err := sink.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
