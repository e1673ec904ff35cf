package batch_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"upright/internal/batch"
	"upright/internal/channel"
	"upright/internal/compose"
	"upright/internal/ledger"
	"upright/internal/logging"
	"upright/internal/media/ffprobe"
	"upright/internal/services"
)

type stubProcessor struct {
	mu      sync.Mutex
	calls   []string
	outcome func(item batch.Item) (compose.Result, error)
}

func (s *stubProcessor) Process(_ context.Context, item batch.Item) (compose.Result, error) {
	s.mu.Lock()
	s.calls = append(s.calls, item.Profile.Label+":"+item.SourcePath)
	s.mu.Unlock()
	if s.outcome != nil {
		return s.outcome(item)
	}
	return compose.Result{Outcome: compose.OutcomeCompleted, OutputPath: "/out/x.mp4"}, nil
}

func item(label, path string) batch.Item {
	return batch.Item{
		Profile:    channel.Profile{Label: label},
		SourcePath: path,
		ContentID:  path,
	}
}

func TestRunProcessesAllItems(t *testing.T) {
	processor := &stubProcessor{}
	runner := batch.NewRunner(processor, "", logging.NewNop())

	summary, err := runner.Run(context.Background(), []batch.Item{
		item("a", "1.mp4"), item("a", "2.mp4"), item("b", "3.mp4"),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Completed != 3 {
		t.Fatalf("completed = %d", summary.Completed)
	}
	if len(summary.Results) != 3 {
		t.Fatalf("results = %d", len(summary.Results))
	}
}

func TestRunIsolatesFailingChannel(t *testing.T) {
	processor := &stubProcessor{
		outcome: func(it batch.Item) (compose.Result, error) {
			if it.Profile.Label == "broken" {
				return compose.Result{Outcome: compose.OutcomeFailed},
					services.Wrap(services.ErrRender, "compose", "render", "boom", nil)
			}
			return compose.Result{Outcome: compose.OutcomeCompleted}, nil
		},
	}
	runner := batch.NewRunner(processor, "", logging.NewNop())

	summary, err := runner.Run(context.Background(), []batch.Item{
		item("broken", "1.mp4"), item("broken", "2.mp4"), item("healthy", "3.mp4"),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Failed != 2 {
		t.Fatalf("failed = %d", summary.Failed)
	}
	if summary.Completed != 1 {
		t.Fatalf("completed = %d, healthy channel should finish", summary.Completed)
	}
}

func TestRunCountsSkips(t *testing.T) {
	processor := &stubProcessor{
		outcome: func(batch.Item) (compose.Result, error) {
			return compose.Result{Outcome: compose.OutcomeSkipped, SkipReason: compose.ReasonDuplicate}, nil
		},
	}
	runner := batch.NewRunner(processor, "", logging.NewNop())

	summary, err := runner.Run(context.Background(), []batch.Item{item("a", "1.mp4")})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Skipped != 1 {
		t.Fatalf("skipped = %d", summary.Skipped)
	}
	if summary.Results[0].SkipReason != compose.ReasonDuplicate {
		t.Fatalf("skip reason = %q", summary.Results[0].SkipReason)
	}
}

func TestRunCancelledContextMarksAborted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	processor := &stubProcessor{}
	runner := batch.NewRunner(processor, "", logging.NewNop())

	summary, err := runner.Run(ctx, []batch.Item{item("a", "1.mp4"), item("a", "2.mp4")})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Aborted != 2 {
		t.Fatalf("aborted = %d", summary.Aborted)
	}
	if len(processor.calls) != 0 {
		t.Fatalf("processor calls = %v, want none", processor.calls)
	}
}

func TestRunEmpty(t *testing.T) {
	runner := batch.NewRunner(&stubProcessor{}, "", logging.NewNop())
	summary, err := runner.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(summary.Results) != 0 {
		t.Fatalf("results = %d", len(summary.Results))
	}
}

func TestRunInstanceLock(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "batch.lock")

	block := make(chan struct{})
	slow := &stubProcessor{
		outcome: func(batch.Item) (compose.Result, error) {
			<-block
			return compose.Result{Outcome: compose.OutcomeCompleted}, nil
		},
	}
	first := batch.NewRunner(slow, lockPath, logging.NewNop())

	started := make(chan struct{})
	done := make(chan struct{})
	go func() {
		close(started)
		_, _ = first.Run(context.Background(), []batch.Item{item("a", "1.mp4")})
		close(done)
	}()
	<-started

	// Give the first runner time to take the lock.
	for i := 0; i < 200; i++ {
		time.Sleep(5 * time.Millisecond)
		second := batch.NewRunner(&stubProcessor{}, lockPath, logging.NewNop())
		_, err := second.Run(context.Background(), []batch.Item{item("b", "2.mp4")})
		if err != nil {
			if !errors.Is(err, batch.ErrAlreadyRunning) {
				t.Fatalf("err = %v, want already-running", err)
			}
			close(block)
			<-done
			return
		}
	}
	close(block)
	<-done
	t.Fatal("second runner never observed the lock")
}

type recordingCompositor struct {
	result compose.Result
	clips  []compose.SourceClip
	ids    []string
	outs   []string
}

func (r *recordingCompositor) Process(_ context.Context, clip compose.SourceClip, _ channel.Profile, contentID, outputPath string) (compose.Result, error) {
	r.clips = append(r.clips, clip)
	r.ids = append(r.ids, contentID)
	r.outs = append(r.outs, outputPath)
	result := r.result
	result.ContentID = contentID
	result.OutputPath = outputPath
	return result, nil
}

type recordingHistory struct {
	records []ledger.Record
}

func (r *recordingHistory) Append(_ context.Context, record ledger.Record) error {
	r.records = append(r.records, record)
	return nil
}

func stubInspector(width, height int, duration string, audio bool) batch.Inspector {
	return func(context.Context, string) (ffprobe.Result, error) {
		streams := []ffprobe.Stream{{CodecType: "video", Width: width, Height: height}}
		if audio {
			streams = append(streams, ffprobe.Stream{CodecType: "audio", Channels: 2})
		}
		return ffprobe.Result{
			Streams: streams,
			Format:  ffprobe.Format{Duration: duration},
		}, nil
	}
}

func TestClipProcessorCommitsCompletedRenders(t *testing.T) {
	compositor := &recordingCompositor{result: compose.Result{Outcome: compose.OutcomeCompleted, Title: "Near miss"}}
	history := &recordingHistory{}
	processor := batch.NewClipProcessorWithInspector(
		stubInspector(1920, 1080, "30.0", true),
		"/out", compositor, history, logging.NewNop())

	it := batch.Item{
		Profile:    channel.Profile{Label: "dashcam"},
		SourcePath: "/in/clip.mp4",
		Origin:     "https://example.com/post/1",
	}
	result, err := processor.Process(context.Background(), it)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if result.Outcome != compose.OutcomeCompleted {
		t.Fatalf("outcome = %q", result.Outcome)
	}

	clip := compositor.clips[0]
	if clip.Width != 1920 || clip.Height != 1080 || clip.Duration != 30 || !clip.HasAudioStream {
		t.Fatalf("clip = %+v", clip)
	}
	if compositor.ids[0] == "" {
		t.Fatal("content id should be derived from origin")
	}
	if !strings.HasPrefix(compositor.outs[0], "/out/dashcam-") || !strings.HasSuffix(compositor.outs[0], ".mp4") {
		t.Fatalf("output path = %q", compositor.outs[0])
	}

	if len(history.records) != 1 {
		t.Fatalf("records = %d", len(history.records))
	}
	record := history.records[0]
	if record.Channel != "dashcam" || record.Title != "Near miss" {
		t.Fatalf("record = %+v", record)
	}
}

func TestClipProcessorSkipDoesNotCommit(t *testing.T) {
	compositor := &recordingCompositor{result: compose.Result{Outcome: compose.OutcomeSkipped, SkipReason: compose.ReasonDuplicate}}
	history := &recordingHistory{}
	processor := batch.NewClipProcessorWithInspector(
		stubInspector(1920, 1080, "30.0", true),
		"/out", compositor, history, logging.NewNop())

	it := batch.Item{Profile: channel.Profile{Label: "dashcam"}, SourcePath: "/in/clip.mp4", ContentID: "abc"}
	result, err := processor.Process(context.Background(), it)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if result.Outcome != compose.OutcomeSkipped {
		t.Fatalf("outcome = %q", result.Outcome)
	}
	if len(history.records) != 0 {
		t.Fatal("skips must not reach the ledger")
	}
}

func TestClipProcessorRejectsClipWithoutVideo(t *testing.T) {
	inspector := func(context.Context, string) (ffprobe.Result, error) {
		return ffprobe.Result{
			Streams: []ffprobe.Stream{{CodecType: "audio"}},
			Format:  ffprobe.Format{Duration: "30"},
		}, nil
	}
	processor := batch.NewClipProcessorWithInspector(inspector, "/out", &recordingCompositor{}, &recordingHistory{}, logging.NewNop())

	it := batch.Item{Profile: channel.Profile{Label: "dashcam"}, SourcePath: "/in/clip.mp4", ContentID: "abc"}
	if _, err := processor.Process(context.Background(), it); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestClipProcessorProbeFailure(t *testing.T) {
	inspector := func(context.Context, string) (ffprobe.Result, error) {
		return ffprobe.Result{}, errors.New("unreadable")
	}
	processor := batch.NewClipProcessorWithInspector(inspector, "/out", &recordingCompositor{}, &recordingHistory{}, logging.NewNop())

	it := batch.Item{Profile: channel.Profile{Label: "dashcam"}, SourcePath: "/in/clip.mp4", ContentID: "abc"}
	if _, err := processor.Process(context.Background(), it); !errors.Is(err, services.ErrDecode) {
		t.Fatalf("err = %v, want decode error", err)
	}
}
