package exitcode_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/concatjs/concatjs/internal/exitcode"
)

func TestGet(t *testing.T) {
	base := exitcode.Set(errors.New(""), 4)
	wrapped := fmt.Errorf("wrapping: %w", base)

	testCases := map[string]struct {
		error
		int
	}{
		"nil":     {nil, exitcode.Success},
		"default": {errors.New(""), exitcode.Failure},
		"usage":   {exitcode.Usagef("usage: %s", "x"), exitcode.Usage},
		"set":     {exitcode.Set(errors.New(""), 3), 3},
		"wrapped": {wrapped, 4},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			err := tc.error
			want := tc.int
			got := exitcode.Get(err)
			if got != want {
				t.Errorf("%v: %d != %d", err, got, want)
			}
		})
	}
}

func TestSet(t *testing.T) {
	t.Run("same-message", func(t *testing.T) {
		err := errors.New("hello")
		coder := exitcode.Set(err, 2)
		got := err.Error()
		want := coder.Error()
		if got != want {
			t.Errorf("error message %q != %q", got, want)
		}
	})
	t.Run("keep-chain", func(t *testing.T) {
		err := errors.New("hello")
		coder := exitcode.Set(err, 3)

		if !errors.Is(coder, err) {
			t.Errorf("broken chain: %v is not %v", coder, err)
		}
	})
	t.Run("nil", func(t *testing.T) {
		if err := exitcode.Set(nil, 3); err != nil {
			t.Errorf("expected nil but got %v", err)
		}
	})
	t.Run("usage-message", func(t *testing.T) {
		if got := exitcode.Usagef("usage: %s <file>", "modname").Error(); got != "usage: modname <file>" {
			t.Errorf("unexpected message %q", got)
		}
	})
}
