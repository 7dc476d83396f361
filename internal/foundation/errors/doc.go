// Package errors provides classified error primitives used across subscript.
//
// A ClassifiedError carries a category (config, cache, macro, plugin, ...), a
// severity and structured context. Warning-severity errors describe a node or
// asset that was left unchanged; the build keeps going. Fatal errors stop the
// command and are mapped to an exit code by CLIErrorAdapter.
//
//	err := errors.WrapError(readErr, errors.CategoryCache, "asset read failed").
//		Warning().
//		WithContext("path", src).
//		Build()
package errors
