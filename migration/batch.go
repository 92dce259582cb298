package migration

// Partition splits items into consecutive batches of size, keeping order.
// Every batch but the last has exactly size items. Batches share the backing array of items.
func Partition[T any](items []T, size int) [][]T {
	if len(items) == 0 {
		return nil
	}
	if size <= 0 {
		size = len(items)
	}

	batches := make([][]T, 0, (len(items)+size-1)/size)
	for i := 0; i < len(items); i += size {
		end := i + size
		if end > len(items) {
			end = len(items)
		}
		batches = append(batches, items[i:end:end])
	}
	return batches
}
