// Package iojson reads and writes JSON documents for command line output
// and input.
package iojson

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// WriteWith writes obj as indented JSON to w. Marshal failures are reported
// on ew as a JSON error object.
func WriteWith(w io.Writer, ew io.Writer, obj any) error {
	bits, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		msg, _ := json.Marshal(err.Error())
		_, werr := fmt.Fprintf(ew, `{"message":"error marshaling output","data":{"json_error":%s}}`+"\n", msg)
		if werr != nil {
			return werr
		}
		return fmt.Errorf("marshal output: %w", err)
	}

	_, err = fmt.Fprintln(w, string(bits))
	return err
}

// Write calls WriteWith with [os.Stdout] and [os.Stderr].
func Write(obj any) error {
	return WriteWith(os.Stdout, os.Stderr, obj)
}
