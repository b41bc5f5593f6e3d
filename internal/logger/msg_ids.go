package logger

// Most recoverable log messages are given a message ID that can be used to
// set the log level for that message. Syntax errors do not get a message ID
// because you cannot turn them into non-errors (otherwise the build would
// incorrectly succeed). Internal messages use "MsgID_None".
type MsgID = uint8

const (
	MsgID_None MsgID = iota

	// Parsing
	MsgID_JSDoc_InvalidType

	// Module rewriting
	MsgID_Modules_LoadError
	MsgID_Modules_UnsupportedDefaultExport
	MsgID_Modules_UnsupportedWildcardExport
	MsgID_Modules_UnsupportedExportFrom
	MsgID_Modules_NamespaceCollision

	// Bundling
	MsgID_Bundler_MissingProvide
	MsgID_Bundler_DuplicateProvide
	MsgID_Bundler_DependencyCycle

	MsgID_END // Keep this at the end (used only for tests)
)

func StringToMsgIDs(str string, logLevel LogLevel, overrides map[MsgID]LogLevel) {
	switch str {
	// Parsing
	case "invalid-jsdoc-type":
		overrides[MsgID_JSDoc_InvalidType] = logLevel

	// Module rewriting
	case "load-error":
		overrides[MsgID_Modules_LoadError] = logLevel
	case "unsupported-default-export":
		overrides[MsgID_Modules_UnsupportedDefaultExport] = logLevel
	case "unsupported-wildcard-export":
		overrides[MsgID_Modules_UnsupportedWildcardExport] = logLevel
	case "unsupported-export-from":
		overrides[MsgID_Modules_UnsupportedExportFrom] = logLevel
	case "unsupported-export":
		overrides[MsgID_Modules_UnsupportedDefaultExport] = logLevel
		overrides[MsgID_Modules_UnsupportedWildcardExport] = logLevel
		overrides[MsgID_Modules_UnsupportedExportFrom] = logLevel
	case "namespace-collision":
		overrides[MsgID_Modules_NamespaceCollision] = logLevel

	// Bundling
	case "missing-provide":
		overrides[MsgID_Bundler_MissingProvide] = logLevel
	case "duplicate-provide":
		overrides[MsgID_Bundler_DuplicateProvide] = logLevel
	case "dependency-cycle":
		overrides[MsgID_Bundler_DependencyCycle] = logLevel

	default:
		// Ignore invalid entries since this message id may have
		// been renamed/removed since when this code was written
	}
}

func MsgIDToString(id MsgID) string {
	switch id {
	// Parsing
	case MsgID_JSDoc_InvalidType:
		return "invalid-jsdoc-type"

	// Module rewriting
	case MsgID_Modules_LoadError:
		return "load-error"
	case MsgID_Modules_UnsupportedDefaultExport:
		return "unsupported-default-export"
	case MsgID_Modules_UnsupportedWildcardExport:
		return "unsupported-wildcard-export"
	case MsgID_Modules_UnsupportedExportFrom:
		return "unsupported-export-from"
	case MsgID_Modules_NamespaceCollision:
		return "namespace-collision"

	// Bundling
	case MsgID_Bundler_MissingProvide:
		return "missing-provide"
	case MsgID_Bundler_DuplicateProvide:
		return "duplicate-provide"
	case MsgID_Bundler_DependencyCycle:
		return "dependency-cycle"
	}

	return ""
}
