package domain

import (
	"testing"
	"time"
)

func TestTimeOfDayFor(t *testing.T) {
	tests := []struct {
		hour int
		want TimeOfDay
	}{
		{hour: 5, want: TimeMorning},
		{hour: 11, want: TimeMorning},
		{hour: 12, want: TimeAfternoon},
		{hour: 16, want: TimeAfternoon},
		{hour: 17, want: TimeEvening},
		{hour: 21, want: TimeEvening},
		{hour: 22, want: TimeNight},
		{hour: 3, want: TimeNight},
	}
	for _, tt := range tests {
		instant := time.Date(2026, 8, 29, tt.hour, 0, 0, 0, time.UTC)
		if got := TimeOfDayFor(instant); got != tt.want {
			t.Errorf("hour %d = %q, want %q", tt.hour, got, tt.want)
		}
	}
}

func TestInitialism(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{name: "Work Stuff", want: "WS"},
		{name: "Reading", want: "RE"},
		{name: "Deep Work Sessions", want: "DWS"},
		{name: "ai", want: "AI"},
		{name: "", want: ""},
	}
	for _, tt := range tests {
		c := Category{Name: tt.name}
		if got := c.Initialism(); got != tt.want {
			t.Errorf("Initialism(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestParseGroupColor(t *testing.T) {
	if got := ParseGroupColor("Blue"); got != ColorBlue {
		t.Errorf("got %q, want blue", got)
	}
	if got := ParseGroupColor("gray"); got != ColorGrey {
		t.Errorf("got %q, want grey for gray spelling", got)
	}
	if got := ParseGroupColor("chartreuse"); got != ColorGrey {
		t.Errorf("got %q, want grey fallback", got)
	}
}

func TestDefaultOrganizeConfig(t *testing.T) {
	cfg := DefaultOrganizeConfig()
	if !cfg.CloseDuplicates || cfg.MinGroupSize != 2 || !cfg.EnableSmartGroups {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}
