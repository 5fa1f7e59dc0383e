package probe

import (
	"errors"
	"testing"
	"time"
)

func TestTimeRequest_PopulatesTimeOnError(t *testing.T) {
	boom := errors.New("boom")
	out := timeRequest(func() (string, error) {
		time.Sleep(5 * time.Millisecond)
		return "partial", boom
	})
	if !errors.Is(out.Err, boom) {
		t.Fatalf("want boom, got %v", out.Err)
	}
	if out.Response != "" {
		t.Fatalf("response should be zeroed on error, got %q", out.Response)
	}
	if out.ResponseTime < 5 {
		t.Fatalf("response time not recorded: %d", out.ResponseTime)
	}

	ok := timeRequest(func() (int, error) { return 7, nil })
	if ok.Err != nil || ok.Response != 7 || ok.ResponseTime < 0 {
		t.Fatalf("unexpected %+v", ok)
	}
}
