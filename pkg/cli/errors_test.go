package cli

import (
	"errors"
	"testing"
)

func TestConfigErrorMessage(t *testing.T) {
	tests := []struct {
		name  string
		field string
		msg   string
		want  string
	}{
		{
			name:  "with field",
			field: "server.listen_address",
			msg:   "missing required field",
			want:  "config error in server.listen_address: missing required field",
		},
		{
			name: "without field",
			msg:  "failed to load config: open config.yaml: no such file",
			want: "config error: failed to load config: open config.yaml: no such file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewConfigError(tt.field, tt.msg)
			if err.Error() != tt.want {
				t.Errorf("Error() = %q, want %q", err.Error(), tt.want)
			}
		})
	}
}

func TestCommandErrorWrapsCause(t *testing.T) {
	cause := errors.New("store unavailable")
	err := NewCommandError("run", cause)

	want := "command run failed: store unavailable"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is() should find the wrapped cause")
	}

	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatal("errors.As() should match *CommandError")
	}
	if cmdErr.Command != "run" {
		t.Errorf("Command = %q, want %q", cmdErr.Command, "run")
	}
}
