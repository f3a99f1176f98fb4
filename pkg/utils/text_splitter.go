package utils

import "unicode"

// SplitText splits a long string into chunks of at most chunkSize runes with
// the given overlap between neighbours. Chunk boundaries are nudged back to
// the nearest whitespace so clinical phrases survive intact; a chunk is only
// cut mid-word when it contains no whitespace at all.
func SplitText(text string, chunkSize int, overlap int) []string {
	runes := []rune(text)
	totalLen := len(runes)
	if totalLen <= chunkSize {
		return []string{text}
	}

	step := chunkSize - overlap
	if step <= 0 {
		step = chunkSize
	}

	var chunks []string
	for i := 0; i < totalLen; {
		end := i + chunkSize
		if end >= totalLen {
			chunks = append(chunks, string(runes[i:totalLen]))
			break
		}

		// Walk back to whitespace so the cut lands between words.
		cut := end
		for cut > i && !unicode.IsSpace(runes[cut-1]) {
			cut--
		}
		if cut == i {
			cut = end
		}

		chunks = append(chunks, string(runes[i:cut]))

		next := cut - overlap
		if next <= i {
			next = cut
		}
		i = next
	}

	return chunks
}
