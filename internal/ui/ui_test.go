package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestTable_Render(t *testing.T) {
	table := NewTable("ADDRESS", "NAME").
		AddRow("48:E7:29:9F:90:06", "HC-05").
		AddRow("00:11:22:33:44:55", "")

	lines := strings.Split(table.Render(), "\n")
	if len(lines) != 3 {
		t.Fatalf("Render() produced %d lines, want 3:\n%s", len(lines), table.Render())
	}

	// Columns line up under their headers
	nameCol := strings.Index(lines[0], "NAME")
	if got := strings.Index(lines[1], "HC-05"); got != nameCol {
		t.Errorf("NAME column at %d, HC-05 at %d", nameCol, got)
	}
	if !strings.Contains(lines[2], "-") {
		t.Errorf("empty cell should render as '-', got %q", lines[2])
	}
}

func TestHeader_RenderSortsParams(t *testing.T) {
	h := NewHeader("Paired devices", "btterm devices", map[string]string{
		"Zeta":    "last",
		"Adapter": "hci0",
	}).SetWidth(80)

	out := h.Render()
	if !strings.Contains(out, "PAIRED DEVICES") {
		t.Errorf("title should be upper-cased:\n%s", out)
	}
	if strings.Index(out, "Adapter") > strings.Index(out, "Zeta") {
		t.Errorf("params should be sorted by key:\n%s", out)
	}
}

func TestResult_Render(t *testing.T) {
	tests := []struct {
		name   string
		result *Result
		want   []string
	}{
		{
			name:   "success",
			result: NewSuccessResult("Saved", map[string]string{"Device": "48:E7:29:9F:90:06"}),
			want:   []string{"SUCCESS", "Saved", "48:E7:29:9F:90:06"},
		},
		{
			name:   "failure",
			result: NewFailureResult("Connect failed", errors.New("host is down"), []string{"Is the device powered?"}),
			want:   []string{"FAILED", "host is down", "Troubleshooting:", "Is the device powered?"},
		},
		{
			name:   "warning",
			result: NewWarningResult("No devices", nil),
			want:   []string{"WARNING", "No devices"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.result.SetWidth(80).Render()
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("Render() missing %q:\n%s", want, out)
				}
			}
		})
	}
}

func TestPrinter_PrintTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintTable(NewTable("ADDRESS"), "No devices found")
	if !strings.Contains(buf.String(), "No devices found") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestPrinter_Confirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"yes", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			var buf bytes.Buffer
			p := NewPrinter(&buf).SetWidth(80)
			got := p.Confirm(strings.NewReader(tt.input), "Reset configuration", []string{"All saved devices are removed"}, "Continue?")
			if got != tt.want {
				t.Errorf("Confirm(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestGetTerminalWidth_Bounds(t *testing.T) {
	w := GetTerminalWidth()
	if w < MinTerminalWidth || w > MaxContentWidth {
		t.Errorf("GetTerminalWidth() = %d, want within [%d, %d]", w, MinTerminalWidth, MaxContentWidth)
	}
}
