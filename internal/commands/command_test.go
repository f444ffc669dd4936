package commands

import (
	"errors"
	"testing"
)

func TestParseSupportedCommands(t *testing.T) {
	cases := []struct {
		in       string
		typeWant Type
	}{
		{"/new 7d learn to juggle", TypeNew},
		{"show completed", TypeShow},
		{"show category Fitness", TypeShow},
		{"/abandon", TypeAbandon},
		{"lang es", TypeLang},
		{"suggest", TypeSuggest},
	}

	for _, tc := range cases {
		cmd, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("parse %q failed: %v", tc.in, err)
		}
		if cmd.Type != tc.typeWant {
			t.Fatalf("parse %q type = %s, want %s", tc.in, cmd.Type, tc.typeWant)
		}
	}
}

func TestParseNewArgs(t *testing.T) {
	cmd, err := Parse("/new 2h write the intro chapter")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if cmd.New.DurationMinutes != 120 || cmd.New.Goal != "write the intro chapter" {
		t.Fatalf("unexpected new args: %+v", cmd.New)
	}
}

func TestParseShowCategoryKeepsName(t *testing.T) {
	cmd, err := Parse("show category Deep Work")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if cmd.Show.Subject != SubjectCategory || cmd.Show.Category != "Deep Work" {
		t.Fatalf("unexpected show args: %+v", cmd.Show)
	}
}

func TestParseInvalidArguments(t *testing.T) {
	for _, in := range []string{"new 7d", "new soon learn go", "new 45d marathon", "show", "show everything", "show category", "lang", "lang en es"} {
		_, err := Parse(in)
		var ce *CommandError
		if !errors.As(err, &ce) || ce.Code != ErrCodeInvalidArgument {
			t.Fatalf("parse %q: expected invalid argument, got %v", in, err)
		}
	}
}

func TestParseUnknownCommand(t *testing.T) {
	_, err := Parse("/unknown do x")
	if err == nil {
		t.Fatal("expected error")
	}
	var ce *CommandError
	if !errors.As(err, &ce) || ce.Code != ErrCodeUnknownCommand {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

func TestParseEmpty(t *testing.T) {
	for _, in := range []string{"", "   ", "/"} {
		_, err := Parse(in)
		var ce *CommandError
		if !errors.As(err, &ce) || ce.Code != ErrCodeEmptyInput {
			t.Fatalf("parse %q: expected empty input error, got %v", in, err)
		}
	}
}

func TestParseDuration(t *testing.T) {
	cases := map[string]int{
		"15m": 15,
		"30m": 30,
		"2h":  120,
		"1d":  1440,
		"30d": 30 * 1440,
	}
	for in, want := range cases {
		got, err := ParseDuration(in)
		if err != nil {
			t.Fatalf("parse %q: %v", in, err)
		}
		if got != want {
			t.Fatalf("parse %q = %d, want %d", in, got, want)
		}
	}
	for _, in := range []string{"0d", "-2d", "30s", "abc", "31d", "800h"} {
		if _, err := ParseDuration(in); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}

func TestExecuteDispatch(t *testing.T) {
	cmd, err := Parse("/new 30m tidy the desk")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	called := false
	res, err := Execute(cmd, Handlers{
		New: func(a NewArgs) (Result, error) {
			called = true
			if a.Goal != "tidy the desk" || a.DurationMinutes != 30 {
				t.Fatalf("unexpected args: %+v", a)
			}
			return Result{Message: "ok"}, nil
		},
	})
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !called || res.Message != "ok" {
		t.Fatalf("dispatch failed, called=%v res=%+v", called, res)
	}
}

func TestExecuteMissingHandler(t *testing.T) {
	cmd, err := Parse("suggest")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	_, err = Execute(cmd, Handlers{})
	if err == nil {
		t.Fatal("expected error")
	}
	var ce *CommandError
	if !errors.As(err, &ce) || ce.Code != ErrCodeHandlerMissing {
		t.Fatalf("expected missing handler error, got %v", err)
	}
}
