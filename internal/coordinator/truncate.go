package coordinator

const truncationSuffix = "\n\n[truncated]\n"

// Truncate returns s unchanged if it fits within n bytes, otherwise
// keeps the first n-20 bytes and appends truncationSuffix, itself
// clipped if needed so the result never exceeds n bytes. Idempotent:
// Truncate(Truncate(s, n), n) == Truncate(s, n).
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	keep := n - 20
	if keep < 0 {
		keep = 0
	}
	if keep > len(s) {
		keep = len(s)
	}
	out := s[:keep] + truncationSuffix
	if len(out) > n {
		out = out[:n]
	}
	return out
}
