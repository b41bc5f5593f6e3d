package es6_modules

import "strings"

// Turns a module address into the JavaScript identifier used for that module's
// namespace object in rewritten code. For example, "./foo/bar.js" becomes
// "module$foo$bar".
func ModuleName(address string) string {
	name := strings.TrimPrefix(address, "./")
	name = strings.ReplaceAll(name, "/", "$")
	name = strings.ReplaceAll(name, "\\", "$")
	name = strings.TrimSuffix(name, ".js")
	name = strings.ReplaceAll(name, "-", "")
	name = strings.ReplaceAll(name, ".", "")
	return "module$" + name
}
