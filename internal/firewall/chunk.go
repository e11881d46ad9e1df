package firewall

// ChunkSize is the number of addresses per rule. Larger RemoteAddress
// lists hit the platform's rule expression limit.
const ChunkSize = 200

// Chunk splits ips into consecutive groups of at most size entries. The
// groups share ips' backing array.
func Chunk(ips []string, size int) [][]string {
	if size <= 0 {
		size = ChunkSize
	}
	chunks := make([][]string, 0, (len(ips)+size-1)/size)
	for start := 0; start < len(ips); start += size {
		end := min(start+size, len(ips))
		chunks = append(chunks, ips[start:end:end])
	}
	return chunks
}
