package formats

import "io"

// Format is a source document dialect the importer can read.
type Format interface {
	ParseFile(io.Reader) error
	Validate() error
}
