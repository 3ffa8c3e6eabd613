package analytics

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestRunHistory(t *testing.T) {
	a := newTestAggregator(
		row("https://nike.com", "iad1", 10, batch("old"), at(testNow.Add(-5*time.Hour))),
		row("https://apple.com", "iad1", 10, batch("old"), at(testNow.Add(-5*time.Hour))),
		row("https://nike.com", "iad1", 10, batch("new"), at(testNow.Add(-30*time.Minute))),
		row("https://nike.com", "lhr1", 0, batch("new"), at(testNow.Add(-29*time.Minute)), failed("x")),
	)

	runs, err := a.RunHistory(context.Background(), RunHistoryQuery{})
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %+v", runs)
	}
	latest := runs[0]
	if latest.BatchID != "new" || latest.ProbeCount != 2 || latest.BrandsCount != 1 || latest.ErrorCount != 1 {
		t.Errorf("newest = %+v", latest)
	}
	if !latest.RunTime.Equal(testNow.Add(-30 * time.Minute)) {
		t.Errorf("run time = %v, want earliest row", latest.RunTime)
	}
	if runs[1].BatchID != "old" || runs[1].BrandsCount != 2 {
		t.Errorf("oldest = %+v", runs[1])
	}

	limited, err := a.RunHistory(context.Background(), RunHistoryQuery{Limit: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 || limited[0].BatchID != "new" {
		t.Errorf("limited = %+v", limited)
	}

	since := testNow.Add(-time.Hour)
	recent, err := a.RunHistory(context.Background(), RunHistoryQuery{Since: &since})
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 1 || recent[0].BatchID != "new" {
		t.Errorf("since = %+v", recent)
	}
}

func TestRunHistory_LimitIsPushedToStore(t *testing.T) {
	reader := &memReader{}
	for i := 0; i < 30; i++ {
		reader.rows = append(reader.rows,
			row("https://nike.com", "iad1", 10, batch(fmt.Sprintf("run-%02d", i)), at(testNow.Add(time.Duration(i-30)*time.Hour))))
	}
	a := NewAggregator(reader)
	a.now = func() time.Time { return testNow }

	runs, err := a.RunHistory(context.Background(), RunHistoryQuery{})
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != DefaultRunLimit || runs[0].BatchID != "run-29" {
		t.Errorf("got %d runs, first %+v", len(runs), runs[0])
	}
	if len(reader.batchQueries) != 1 || reader.batchQueries[0].Limit != DefaultRunLimit {
		t.Errorf("store queries = %+v, want one with limit %d", reader.batchQueries, DefaultRunLimit)
	}

	empty, err := newTestAggregator().RunHistory(context.Background(), RunHistoryQuery{Limit: 5})
	if err != nil {
		t.Fatal(err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("empty = %#v, want empty slice", empty)
	}
}

func TestLatestRun(t *testing.T) {
	a := newTestAggregator(
		row("https://nike.com", "iad1", 10, batch("stale"), at(testNow.Add(-3*time.Hour))),
	)
	run, err := a.LatestRun(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if run != nil {
		t.Errorf("got %+v, want nil outside two hours", run)
	}

	run, err = a.LatestRun(context.Background(), 4*time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if run == nil || run.BatchID != "stale" {
		t.Errorf("got %+v", run)
	}
}
