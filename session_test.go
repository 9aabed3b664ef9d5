package clustergen

import (
	"errors"
	"strings"
	"testing"
)

func loadedSession(t *testing.T) *Session {
	t.Helper()
	s := NewSession()
	if err := s.LoadInterpretation(mustParseTable(t, sampleTable)); err != nil {
		t.Fatalf("LoadInterpretation() error = %v", err)
	}
	return s
}

func TestSessionGenerate(t *testing.T) {
	s := loadedSession(t)
	one := NumericClusterID(1)

	if _, err := s.Generate(one); !errors.Is(err, ErrApproachRequired) {
		t.Fatalf("got %v, want ErrApproachRequired", err)
	}
	if _, err := s.Generate(NumericClusterID(99)); !errors.Is(err, ErrUnknownCluster) {
		t.Fatalf("got %v, want ErrUnknownCluster", err)
	}

	if err := s.SetApproach(one, ApproachTextDriven); err != nil {
		t.Fatal(err)
	}
	s.AddToken(one, "neon")
	spec, err := s.Generate(one)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if spec.Approach != ApproachTextDriven || spec.TrendTokens.Tokens[0] != "neon" {
		t.Errorf("spec: got %+v", spec)
	}
	if last, ok := s.LastBuilt(); !ok || last != one {
		t.Errorf("last built: got %v, %v", last, ok)
	}
	if _, ok := s.Specs()[one]; !ok {
		t.Error("spec should be stored")
	}
}

func TestSessionCopyOnWrite(t *testing.T) {
	s := loadedSession(t)
	one, three := NumericClusterID(1), NumericClusterID(3)

	if err := s.SetApproach(one, ApproachTextDriven); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Generate(one); err != nil {
		t.Fatal(err)
	}
	snapshot := s.Specs()

	if err := s.SetApproach(three, ApproachMotionFocused); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Generate(three); err != nil {
		t.Fatal(err)
	}
	if err := s.SetApproach(one, ApproachImageConditioned); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Generate(one); err != nil {
		t.Fatal(err)
	}

	if len(snapshot) != 1 || snapshot[one].Approach != ApproachTextDriven {
		t.Errorf("earlier snapshot changed: %+v", snapshot)
	}
	if got := s.Specs()[one].Approach; got != ApproachImageConditioned {
		t.Errorf("regenerated spec: got %s, want %s", got, ApproachImageConditioned)
	}

	tokens := s.AddToken(one, "a")
	s.AddToken(one, "b")
	if len(tokens) != 1 {
		t.Errorf("returned tokens changed after a later add: %v", tokens)
	}
}

func TestSessionTokens(t *testing.T) {
	s := loadedSession(t)
	one := NumericClusterID(1)

	for _, tok := range []string{"a", "a", " ", "b", "c", "d"} {
		s.AddToken(one, tok)
	}
	if got := s.Tokens(one); len(got) != MaxTrendTokens {
		t.Errorf("tokens: got %v, want 3", got)
	}
	if got := s.RemoveToken(one, "b"); strings.Join(got, ",") != "a,c" {
		t.Errorf("after remove: got %v, want [a c]", got)
	}
	if got := s.Tokens(NumericClusterID(3)); len(got) != 0 {
		t.Errorf("other cluster: got %v, want none", got)
	}
}

func TestSessionSetApproachValidation(t *testing.T) {
	s := loadedSession(t)
	if err := s.SetApproach(NumericClusterID(1), "audio-driven"); !errors.Is(err, ErrUnknownApproach) {
		t.Errorf("got %v, want ErrUnknownApproach", err)
	}
	if err := s.SetApproach(NumericClusterID(2), ApproachTextDriven); !errors.Is(err, ErrUnknownCluster) {
		t.Errorf("got %v, want ErrUnknownCluster", err)
	}
	if _, ok := s.ApproachFor(NumericClusterID(1)); ok {
		t.Error("failed SetApproach should not store anything")
	}
}

func TestSessionAcceptSuggestion(t *testing.T) {
	s := loadedSession(t)
	approach, err := s.AcceptSuggestion(NumericClusterID(3))
	if err != nil {
		t.Fatal(err)
	}
	if approach != ApproachMotionFocused {
		t.Errorf("got %s, want %s", approach, ApproachMotionFocused)
	}
	if got, _ := s.ApproachFor(NumericClusterID(3)); got != approach {
		t.Errorf("stored approach: got %s, want %s", got, approach)
	}
	if _, err := s.AcceptSuggestion(NumericClusterID(42)); !errors.Is(err, ErrUnknownCluster) {
		t.Errorf("got %v, want ErrUnknownCluster", err)
	}
}

func TestSessionSpecsSurviveReload(t *testing.T) {
	s := loadedSession(t)
	one := NumericClusterID(1)
	if err := s.SetApproach(one, ApproachTextDriven); err != nil {
		t.Fatal(err)
	}
	before, err := s.Generate(one)
	if err != nil {
		t.Fatal(err)
	}

	changed := mustParseTable(t, "cluster,motion_mean,cut_rate_per_min\n1,0.9,200\n")
	if err := s.LoadInterpretation(changed); err != nil {
		t.Fatal(err)
	}

	stats, _ := s.Cluster(one)
	if stats.AvgMotion != 0.9 {
		t.Errorf("stats should be recomputed: got %v", stats.AvgMotion)
	}
	if got := s.Specs()[one]; got.MotionProfile != before.MotionProfile {
		t.Errorf("stale spec should be kept until regenerated: got %+v", got.MotionProfile)
	}
}

func TestSessionRejectedTableLeavesState(t *testing.T) {
	s := loadedSession(t)
	if err := s.SelectCluster(NumericClusterID(3)); err != nil {
		t.Fatal(err)
	}

	if err := s.LoadInterpretation(mustParseTable(t, "video,motion_mean\nx,0.1\n")); !errors.Is(err, ErrMissingClusterColumn) {
		t.Fatalf("got %v, want ErrMissingClusterColumn", err)
	}
	if got := len(s.Clusters()); got != 2 {
		t.Errorf("clusters: got %d, want 2", got)
	}
	if id, ok := s.Selected(); !ok || id != NumericClusterID(3) {
		t.Errorf("selection: got %v, %v", id, ok)
	}
}

func TestSessionSelectionClearedWhenClusterDisappears(t *testing.T) {
	s := loadedSession(t)
	if err := s.SelectCluster(NumericClusterID(3)); err != nil {
		t.Fatal(err)
	}
	if err := s.SelectCluster(NumericClusterID(8)); !errors.Is(err, ErrUnknownCluster) {
		t.Errorf("got %v, want ErrUnknownCluster", err)
	}

	if err := s.LoadInterpretation(mustParseTable(t, "cluster,motion_mean\n1,0.2\n")); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Selected(); ok {
		t.Error("selection should be cleared")
	}
}

func TestSessionRestoreSpecs(t *testing.T) {
	s := loadedSession(t)
	spec, err := BuildSpec(ClusterStats{Cluster: NumericClusterID(1)}, ApproachImageConditioned, NewTrendTokens("film"))
	if err != nil {
		t.Fatal(err)
	}
	skipped := s.RestoreSpecs(map[ClusterID]GenerationSpec{
		NumericClusterID(1):  spec,
		StringClusterID("x"): spec,
	})

	if len(skipped) != 1 || skipped[0] != StringClusterID("x") {
		t.Errorf("skipped: got %v, want [x]", skipped)
	}
	if got, _ := s.ApproachFor(NumericClusterID(1)); got != ApproachImageConditioned {
		t.Errorf("approach: got %s", got)
	}
	if got := s.Tokens(NumericClusterID(1)); len(got) != 1 || got[0] != "film" {
		t.Errorf("tokens: got %v", got)
	}
}
