package simulation

import "testing"

const (
	testWarmTime = 10
	testExecTime = 2
	testSimEnd   = 25
	testFn       = "Function_A"
)

func runBoth(requests []Request, limit int) (lcs, mru Result) {
	base := Config{
		WarmTime:      testWarmTime,
		ExecutionTime: testExecTime,
		SimulationEnd: testSimEnd,
		DefaultLimit:  limit,
		Requests:      requests,
	}
	return Compare(base)
}

func TestScenario1StaggeredPair(t *testing.T) {
	reqs := []Request{
		{ArrivalTime: 1, FunctionID: testFn},
		{ArrivalTime: 2, FunctionID: testFn},
		{ArrivalTime: 12, FunctionID: testFn},
		{ArrivalTime: 13, FunctionID: testFn},
	}
	lcs, mru := runBoth(reqs, 5)
	if lcs.ColdStarts != 2 {
		t.Errorf("LCS cold starts = %d, want 2", lcs.ColdStarts)
	}
	if mru.ColdStarts != 3 {
		t.Errorf("MRU cold starts = %d, want 3", mru.ColdStarts)
	}
}

func TestScenario2SingleRequest(t *testing.T) {
	reqs := []Request{{ArrivalTime: 0, FunctionID: testFn}}
	lcs, mru := runBoth(reqs, 5)
	if lcs.ColdStarts != 1 || mru.ColdStarts != 1 {
		t.Errorf("cold starts = %d/%d, want 1/1", lcs.ColdStarts, mru.ColdStarts)
	}
}

func TestScenario3BackToBackReuse(t *testing.T) {
	reqs := []Request{
		{ArrivalTime: 0, FunctionID: testFn},
		{ArrivalTime: 5, FunctionID: testFn},
	}
	lcs, mru := runBoth(reqs, 5)
	if lcs.ColdStarts != 1 || mru.ColdStarts != 1 {
		t.Errorf("cold starts = %d/%d, want 1/1", lcs.ColdStarts, mru.ColdStarts)
	}
}

func TestScenario4ExpirationThenNewRequest(t *testing.T) {
	reqs := []Request{
		{ArrivalTime: 0, FunctionID: testFn},
		{ArrivalTime: 20, FunctionID: testFn},
	}
	lcs, mru := runBoth(reqs, 5)
	if lcs.ColdStarts != 2 || mru.ColdStarts != 2 {
		t.Errorf("cold starts = %d/%d, want 2/2", lcs.ColdStarts, mru.ColdStarts)
	}
}

func TestScenario5QueueingAtLimit(t *testing.T) {
	reqs := []Request{
		{ArrivalTime: 0, FunctionID: testFn},
		{ArrivalTime: 1, FunctionID: testFn},
	}
	lcs, _ := runBoth(reqs, 1)
	if lcs.ColdStarts != 1 {
		t.Errorf("cold starts = %d, want 1", lcs.ColdStarts)
	}
	if lcs.Queued != 1 {
		t.Errorf("queued = %d, want 1", lcs.Queued)
	}
	if lcs.WarmStarts != 1 {
		t.Errorf("warm starts = %d, want 1 (the drained request)", lcs.WarmStarts)
	}
}

func TestScenario6PolicyEquivalenceSingleContainer(t *testing.T) {
	reqs := []Request{
		{ArrivalTime: 0, FunctionID: testFn},
		{ArrivalTime: 5, FunctionID: testFn},
		{ArrivalTime: 10, FunctionID: testFn},
	}
	lcs, mru := runBoth(reqs, 1)
	if lcs.ColdStarts != 1 || mru.ColdStarts != 1 {
		t.Errorf("cold starts = %d/%d, want 1/1", lcs.ColdStarts, mru.ColdStarts)
	}
}

func TestImprovement(t *testing.T) {
	lcs := Result{ColdStarts: 2}
	mru := Result{ColdStarts: 3}
	got := Improvement(lcs, mru)
	want := 100.0 / 3.0
	if got < want-0.01 || got > want+0.01 {
		t.Errorf("Improvement = %v, want ~%v", got, want)
	}
}
