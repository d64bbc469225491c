package inkwell

import (
	"errors"
	"fmt"
	"log"
)

func wrapIO(op string, err error) error {
	if errors.Is(err, ErrIO) {
		return err
	}
	return fmt.Errorf("inkwell: %s: %w: %w", op, ErrIO, err)
}

func logAllocationFailure(what string, size int) {
	log.Printf("inkwell: cannot allocate %d bytes for %s", size, what)
}

func logLoadFailure(name string, err error) {
	log.Printf("inkwell: load %s: %v", name, err)
}

// allocPlanes allocates a data plane and, when withMask is set, a mask plane
// of size bytes each. Nothing stays allocated on failure.
func allocPlanes(alloc Allocator, size int, withMask bool) (data, mask []byte, err error) {
	data, err = alloc.Alloc(size)
	if err != nil {
		logAllocationFailure("data plane", size)
		return nil, nil, err
	}
	if withMask {
		mask, err = alloc.Alloc(size)
		if err != nil {
			logAllocationFailure("mask plane", size)
			alloc.Free(data)
			return nil, nil, err
		}
	}
	return data, mask, nil
}
