package hooks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/scanify/scankit/core"
)

func TestInMemoryMetrics_Snapshot(t *testing.T) {
	m := NewInMemoryMetrics()
	hook := NewMetricsHook(m)
	page := core.NewPage(10, 10, 3)

	hook.AfterStage(context.Background(), "warp", page, 20*time.Millisecond, nil)
	hook.AfterStage(context.Background(), "warp", page, 30*time.Millisecond, nil)
	hook.AfterStage(context.Background(), "noise", nil, time.Millisecond, errors.New("boom"))

	snap := m.Snapshot()
	if snap.StageCalls["warp"] != 2 {
		t.Errorf("warp calls: got %d, want 2", snap.StageCalls["warp"])
	}
	if snap.StageDurationsMs["warp"] != 50 {
		t.Errorf("warp duration: got %d, want 50", snap.StageDurationsMs["warp"])
	}
	if snap.StageErrors["noise"] != 1 {
		t.Errorf("noise errors: got %d, want 1", snap.StageErrors["noise"])
	}
	if want := int64(2 * 300); snap.TotalThroughputB != want {
		t.Errorf("throughput: got %d, want %d", snap.TotalThroughputB, want)
	}
}

func TestSnapshot_IsACopy(t *testing.T) {
	m := NewInMemoryMetrics()
	m.RecordError("warp", "stage")

	snap := m.Snapshot()
	snap.StageErrors["warp"] = 99

	if got := m.Snapshot().StageErrors["warp"]; got != 1 {
		t.Errorf("snapshot mutation leaked into the store: got %d", got)
	}
}
