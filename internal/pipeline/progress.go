package pipeline

// ProgressSink receives milestone updates. Report is called synchronously
// from the converting goroutine.
type ProgressSink interface {
	Report(current, max int)
}

// ProgressFunc adapts a function to ProgressSink.
type ProgressFunc func(current, max int)

// Report calls f.
func (f ProgressFunc) Report(current, max int) { f(current, max) }

type nopSink struct{}

func (nopSink) Report(int, int) {}

// StepsPerVideo is the number of milestones one video contributes.
func StepsPerVideo(keepAspectRatio bool) int {
	if keepAspectRatio {
		return 3
	}
	return 2
}

// progress tracks milestones for a batch so a failed video still advances the
// total to the start of the next video.
type progress struct {
	sink    ProgressSink
	perStep int
	max     int
	current int
}

func newProgress(sink ProgressSink, videos int, keepAspectRatio bool) *progress {
	if sink == nil {
		sink = nopSink{}
	}
	per := StepsPerVideo(keepAspectRatio)
	return &progress{sink: sink, perStep: per, max: videos * per}
}

func (p *progress) step() {
	if p == nil || p.current >= p.max {
		return
	}
	p.current++
	p.sink.Report(p.current, p.max)
}

// finishVideo moves the counter to the end of video i (0-based).
func (p *progress) finishVideo(i int) {
	if p == nil {
		return
	}
	target := min((i+1)*p.perStep, p.max)
	if target <= p.current {
		return
	}
	p.current = target
	p.sink.Report(p.current, p.max)
}
