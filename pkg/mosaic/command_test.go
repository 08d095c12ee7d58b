package mosaic

import (
	"testing"

	"github.com/matzehuels/mosaic/pkg/errors"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input   string
		want    Command
		wantErr bool
	}{
		{"fit", CommandFit, false},
		{"reset", CommandReset, false},
		{"Fit", "", true},
		{"eval", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCommand(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCommand(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidCommand) {
				t.Errorf("ParseCommand(%q) code = %v, want INVALID_COMMAND", tt.input, errors.GetCode(err))
			}
			if got != tt.want {
				t.Errorf("ParseCommand(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestExec(t *testing.T) {
	e, _ := New(NewBox(400, ratioItems(2)), DefaultConfig())

	if err := e.Exec(CommandFit); err != nil {
		t.Fatalf("Exec(fit) error: %v", err)
	}
	if len(e.Placements()) != 1 {
		t.Fatalf("Placements() after fit = %d, want 1", len(e.Placements()))
	}

	if err := e.Exec(CommandReset); err != nil {
		t.Fatalf("Exec(reset) error: %v", err)
	}
	if len(e.Placements()) != 0 {
		t.Errorf("Placements() after reset = %d, want 0", len(e.Placements()))
	}

	if err := e.Exec(Command("explode")); err == nil {
		t.Error("Exec(explode) error = nil, want error")
	}
}
