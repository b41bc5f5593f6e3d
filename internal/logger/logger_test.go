package logger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/concatjs/concatjs/internal/logger"
	"github.com/concatjs/concatjs/internal/test"
)

func TestMsgIDs(t *testing.T) {
	for id := logger.MsgID_None; id <= logger.MsgID_END; id++ {
		str := logger.MsgIDToString(id)
		if str == "" {
			continue
		}

		overrides := make(map[logger.MsgID]logger.LogLevel)
		logger.StringToMsgIDs(str, logger.LevelError, overrides)
		if len(overrides) == 0 {
			t.Fatalf("Failed to find message id(s) for the string %q", str)
		}

		for k, v := range overrides {
			test.AssertEqual(t, logger.MsgIDToString(k), str)
			test.AssertEqual(t, v, logger.LevelError)
		}
	}
}

func TestUnsupportedExportGroup(t *testing.T) {
	overrides := make(map[logger.MsgID]logger.LogLevel)
	logger.StringToMsgIDs("unsupported-export", logger.LevelWarning, overrides)
	assert.Len(t, overrides, 3)
	assert.Equal(t, logger.LevelWarning, overrides[logger.MsgID_Modules_UnsupportedWildcardExport])
}

func TestMsgString(t *testing.T) {
	source := test.SourceForTest("let x = 1\nimport {a} from './missing'\n")
	log := logger.NewDeferLog(nil)
	log.AddID(logger.MsgID_Modules_LoadError, logger.Error, &source,
		logger.Range{Loc: logger.Loc{Start: 26}, Len: 11}, "Failed to load module \"./missing\"")
	msgs := log.Done()

	require.Len(t, msgs, 1)
	assert.True(t, log.HasErrors())
	test.AssertEqualWithDiff(t, test.LogText(msgs), `<stdin>:2:16: error: Failed to load module "./missing"
import {a} from './missing'
                ~~~~~~~~~~~
`)
}

func TestOverrideDowngradesError(t *testing.T) {
	source := test.SourceForTest("export default 1")
	log := logger.NewDeferLog(map[logger.MsgID]logger.LogLevel{
		logger.MsgID_Modules_UnsupportedDefaultExport: logger.LevelWarning,
	})
	log.AddID(logger.MsgID_Modules_UnsupportedDefaultExport, logger.Error, &source,
		logger.Range{Loc: logger.Loc{Start: 0}, Len: 6}, "Default export is not supported yet")
	msgs := log.Done()

	require.Len(t, msgs, 1)
	assert.Equal(t, logger.Warning, msgs[0].Kind)
	assert.False(t, log.HasErrors())
}

func TestOverrideSilences(t *testing.T) {
	log := logger.NewDeferLog(map[logger.MsgID]logger.LogLevel{
		logger.MsgID_Modules_LoadError: logger.LevelSilent,
	})
	log.AddID(logger.MsgID_Modules_LoadError, logger.Error, nil, logger.Range{}, "ignored")
	assert.Empty(t, log.Done())
}

func TestMsgsSortByLocation(t *testing.T) {
	source := test.SourceForTest("a\nb\nc\n")
	log := logger.NewDeferLog(nil)
	log.AddError(&source, logger.Range{Loc: logger.Loc{Start: 4}}, "third")
	log.AddError(&source, logger.Range{Loc: logger.Loc{Start: 0}}, "first")
	log.AddError(nil, logger.Range{}, "no location")
	msgs := log.Done()

	require.Len(t, msgs, 3)
	assert.Equal(t, "no location", msgs[0].Data.Text)
	assert.Equal(t, "first", msgs[1].Data.Text)
	assert.Equal(t, "third", msgs[2].Data.Text)
}
