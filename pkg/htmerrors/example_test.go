package htmerrors_test

import (
	"fmt"
	"io"

	"github.com/ajitpratap0/htm/pkg/htmerrors"
)

// Example demonstrates basic error creation with details.
func Example() {
	err := htmerrors.New(htmerrors.ErrorTypeConstruction, "data_T and data_y lengths differ").
		WithDetail("data_t", 5).
		WithDetail("data_y", 4)

	fmt.Println(err.Error())

	// Output:
	// construction: data_T and data_y lengths differ
}

// ExampleWrap shows how to wrap an underlying error with context.
func ExampleWrap() {
	err := htmerrors.Wrap(io.ErrUnexpectedEOF, htmerrors.ErrorTypeFile, "failed to read table").
		WithDetail("file", "reiter_1991/diffusivity.csv")

	if htmerrors.IsType(err, htmerrors.ErrorTypeFile) {
		fmt.Println("file error")
	}
	fmt.Println(err)

	// Output:
	// file error
	// file: failed to read table: unexpected EOF
}

// ExampleIsFatal shows which errors halt a loader.
func ExampleIsFatal() {
	fmt.Println(htmerrors.IsFatal(htmerrors.New(htmerrors.ErrorTypeUnit, "bad unit")))
	fmt.Println(htmerrors.IsFatal(htmerrors.New(htmerrors.ErrorTypeOutOfRange, "T=2000 K outside (300, 1200)")))
	fmt.Println(htmerrors.IsFatal(nil))

	// Output:
	// true
	// false
	// false
}
