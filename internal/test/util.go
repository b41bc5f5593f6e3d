package test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/concatjs/concatjs/internal/logger"
)

func AssertEqual(t *testing.T, observed interface{}, expected interface{}) {
	t.Helper()
	require.Equal(t, expected, observed)
}

func AssertEqualWithDiff(t *testing.T, observed interface{}, expected interface{}) {
	t.Helper()
	if observed != expected {
		stringA := fmt.Sprintf("%v", observed)
		stringB := fmt.Sprintf("%v", expected)
		t.Fatal("\n" + Diff(stringB, stringA, false))
	}
}

func SourceForTest(contents string) logger.Source {
	return logger.Source{
		Index:      0,
		KeyPath:    logger.Path{Text: "<stdin>"},
		PrettyPath: "<stdin>",
		Contents:   contents,
	}
}

// Renders messages the same way the command line does, without colors
func LogText(msgs []logger.Msg) string {
	text := ""
	for _, msg := range msgs {
		text += msg.String(logger.OutputOptions{IncludeSource: true}, logger.TerminalInfo{})
	}
	return text
}
