// Package iterator converts the products that pass a filter chain on a
// pool of workers and hands the results to one consumer in candidate
// order.
//
// Usage:
//
//	it := iterator.New(iterator.Options{File: f, Chain: chain, Kernel: factory, Threads: 4})
//	if err := it.Initialize(); err != nil {
//	    return err // errors.ErrNothingToConvert, errors.ErrNoGeometryProduced, ...
//	}
//	defer it.Close()
//	for ok := true; ok; ok = it.Next() {
//	    write(it.Get())
//	}
//
// Conversion failures of single products are logged and skipped; they
// never surface from Get or Next.
package iterator
