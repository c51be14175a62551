package utils

// BatchQuantity разбивает общее количество на партии не больше batchSize.
// Example: total=7, batchSize=3 => [3 3 1]
func BatchQuantity(total, batchSize uint64) []uint64 {
	if total == 0 {
		return []uint64{}
	}
	if batchSize == 0 || batchSize >= total {
		return []uint64{total} // Если размер партии некорректен, обрабатываем все как одну партию
	}

	batches := make([]uint64, 0, (total+batchSize-1)/batchSize)
	for remaining := total; remaining > 0; {
		n := batchSize
		if remaining < n {
			n = remaining
		}
		batches = append(batches, n)
		remaining -= n
	}
	return batches
}
