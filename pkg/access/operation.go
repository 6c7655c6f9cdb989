package access

import "fmt"

// Operation identifies one of the access-controlled actions a client can
// request on a directory.
type Operation string

const (
	// OpList allows listing the files of a directory.
	OpList Operation = "list"

	// OpRead allows fetching file content.
	OpRead Operation = "read"

	// OpWrite allows uploading files into a directory.
	OpWrite Operation = "write"

	// OpDelete allows removing files from a directory.
	OpDelete Operation = "delete"

	// OpMkdir allows creating subdirectories.
	OpMkdir Operation = "mkdir"
)

// Operations returns all operations in a fixed order. The order is used for
// deterministic iteration when building rules and dumping permission tables.
func Operations() []Operation {
	return []Operation{OpList, OpRead, OpWrite, OpDelete, OpMkdir}
}

// Valid reports whether op is one of the known operations.
func (op Operation) Valid() bool {
	switch op {
	case OpList, OpRead, OpWrite, OpDelete, OpMkdir:
		return true
	default:
		return false
	}
}

// String returns the wire name of the operation.
func (op Operation) String() string {
	return string(op)
}

// ParseOperation converts a string to an Operation.
// Returns an error for unknown operation names.
func ParseOperation(s string) (Operation, error) {
	op := Operation(s)
	if !op.Valid() {
		return "", fmt.Errorf("unknown operation %q", s)
	}
	return op, nil
}
