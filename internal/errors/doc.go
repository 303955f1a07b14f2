// Package errors provides structured, coded errors for the btp CLI.
//
// Each error carries a code (e.g. "E141") registered with a category, a
// short message, a longer detail, and optionally the input it concerns, a
// hint, and the underlying error.
//
// # Error Categories
//
//   - codec: BlazorPack input that cannot be decoded or encoded
//   - proxy: proxy startup and upstream problems
//   - archive: capture storage backends
//   - config: btp.json problems
//   - cli: command-line usage
//
// # Usage
//
//	err := errors.New("E060").
//	    WithInput("capture.bin", 412).
//	    WithSuggestion("Check that the file holds a whole batch").
//	    Wrap(cause)
//
//	fmt.Fprint(os.Stderr, err.Format())
//	// Output:
//	// ERROR E060: Invalid BlazorPack batch
//	//
//	//   capture.bin @ byte 412
//	//
//	//   The input is not a sequence of length-prefixed MessagePack frames.
//	//
//	//   Cause: blazorpack: incomplete message
//	//
//	//   Hint: Check that the file holds a whole batch
package errors
