package progress

import (
	"errors"
	"testing"
	"time"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newMeter(min, max int64) (*Meter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	m := New(min, max)
	m.now = clock.Now
	return m, clock
}

func TestMeter_Transfer(t *testing.T) {
	m, clock := newMeter(0, 100000)
	m.Start()

	steps := []struct {
		cur        int64
		percentage string
		eta        string
		speed      string
	}{
		{10000, " 10 %", "ETA : 00:00:04", "20 KB/s"},
		{20000, " 20 %", "ETA : 00:00:04", "20 KB/s"},
		{30000, " 30 %", "ETA : 00:00:03", "20 KB/s"},
		{40000, " 40 %", "ETA : 00:00:03", "20 KB/s"},
		{50000, " 50 %", "ETA : 00:00:02", "20 KB/s"},
		{60000, " 60 %", "ETA : 00:00:02", "20 KB/s"},
		{70000, " 70 %", "ETA : 00:00:01", "20 KB/s"},
		{80000, " 80 %", "ETA : 00:00:01", "20 KB/s"},
		{90000, " 90 %", "ETA : 00:00:00", "20 KB/s"},
	}
	for _, step := range steps {
		clock.Advance(500 * time.Millisecond)
		if err := m.Update(step.cur); err != nil {
			t.Fatalf("Update(%d) failed: %v", step.cur, err)
		}
		if got := m.Percentage(); got != step.percentage {
			t.Errorf("at %d: Percentage() = %q, want %q", step.cur, got, step.percentage)
		}
		if got := m.ETA(); got != step.eta {
			t.Errorf("at %d: ETA() = %q, want %q", step.cur, got, step.eta)
		}
		if got := m.Speed(); got != step.speed {
			t.Errorf("at %d: Speed() = %q, want %q", step.cur, got, step.speed)
		}
	}

	m.Stop()
	if got := m.Percentage(); got != "100 %" {
		t.Errorf("Percentage() after Stop = %q, want %q", got, "100 %")
	}
	if got := m.ETA(); got != "Done: 00:00:04" {
		t.Errorf("ETA() after Stop = %q, want %q", got, "Done: 00:00:04")
	}
	if got := m.Speed(); got != "22 KB/s" {
		t.Errorf("Speed() after Stop = %q, want %q", got, "22 KB/s")
	}
	if got := m.Current(); got != 100000 {
		t.Errorf("Current() after Stop = %d, want 100000", got)
	}
}

func TestMeter_BeforeFirstUpdate(t *testing.T) {
	m, clock := newMeter(0, 1000)
	m.Start()
	clock.Advance(time.Second)

	if got := m.Percentage(); got != "  0 %" {
		t.Errorf("Percentage() = %q, want %q", got, "  0 %")
	}
	if got := m.ETA(); got != "ETA : 00:00:00" {
		t.Errorf("ETA() = %q, want %q", got, "ETA : 00:00:00")
	}
	if got := m.Speed(); got != "0 B/s" {
		t.Errorf("Speed() = %q, want %q", got, "0 B/s")
	}
}

func TestMeter_UnknownMaximum(t *testing.T) {
	m, clock := newMeter(0, -1)
	m.Start()

	if got := m.Maximum(); got != "UNKNOWN" {
		t.Errorf("Maximum() = %q, want UNKNOWN", got)
	}

	clock.Advance(500 * time.Millisecond)
	if err := m.Update(5000); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if got := m.Percentage(); got != " ?? %" {
		t.Errorf("Percentage() = %q, want %q", got, " ?? %")
	}
	if got := m.ETA(); got != "ETA : ??:??:??" {
		t.Errorf("ETA() = %q, want %q", got, "ETA : ??:??:??")
	}
	if got := m.Speed(); got != "10 KB/s" {
		t.Errorf("Speed() = %q, want %q", got, "10 KB/s")
	}

	m.Stop()
	if got := m.Percentage(); got != "100 %" {
		t.Errorf("Percentage() after Stop = %q, want %q", got, "100 %")
	}
	if got := m.ETA(); got != "Done: 00:00:00" {
		t.Errorf("ETA() after Stop = %q, want %q", got, "Done: 00:00:00")
	}
}

func TestMeter_UpdateBounds(t *testing.T) {
	m, _ := newMeter(10, 100)
	m.Start()

	if err := m.Update(5); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Update(5) error = %v, want ErrOutOfRange", err)
	}
	if err := m.Update(101); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Update(101) error = %v, want ErrOutOfRange", err)
	}
	if err := m.Update(100); err != nil {
		t.Errorf("Update(100) failed: %v", err)
	}

	unknown, _ := newMeter(0, -1)
	unknown.Start()
	if err := unknown.Update(1 << 40); err != nil {
		t.Errorf("Update on unknown maximum failed: %v", err)
	}
}

func TestMeter_Increment(t *testing.T) {
	m, clock := newMeter(0, 100)
	m.Start()

	clock.Advance(time.Second)
	for range 4 {
		if err := m.Increment(10); err != nil {
			t.Fatalf("Increment failed: %v", err)
		}
	}
	if got := m.Current(); got != 40 {
		t.Errorf("Current() = %d, want 40", got)
	}
	if got := m.Percentage(); got != " 40 %" {
		t.Errorf("Percentage() = %q, want %q", got, " 40 %")
	}

	if err := m.Increment(100); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Increment past maximum error = %v, want ErrOutOfRange", err)
	}
}

func TestMeter_Maximum(t *testing.T) {
	m, _ := newMeter(0, 100000)
	if got := m.Maximum(); got != "100000" {
		t.Errorf("Maximum() = %q, want %q", got, "100000")
	}
}

func TestMeter_SpeedUnits(t *testing.T) {
	tests := []struct {
		cur  int64
		want string
	}{
		{500, "500 B/s"},
		{20000, "20 KB/s"},
		{3500000, "3 MB/s"},
		{7000000000, "7 GB/s"},
	}
	for _, tt := range tests {
		m, clock := newMeter(0, -1)
		m.Start()
		clock.Advance(time.Second)
		if err := m.Update(tt.cur); err != nil {
			t.Fatalf("Update(%d) failed: %v", tt.cur, err)
		}
		if got := m.Speed(); got != tt.want {
			t.Errorf("Speed() at %d = %q, want %q", tt.cur, got, tt.want)
		}
	}
}
