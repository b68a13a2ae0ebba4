// Package textdiff computes line-level alignments between two text
// bodies using a longest-common-subsequence match.
//
// The output is a pair of equal-length row columns suitable for
// side-by-side display: matched lines appear as "same" rows in both
// columns, insertions pair an "added" row with an "empty" placeholder,
// deletions pair a "removed" row with an "empty" placeholder.
package textdiff

import (
	"errors"
	"strings"
)

// Kind classifies one alignment row.
type Kind string

const (
	KindSame    Kind = "same"
	KindAdded   Kind = "added"
	KindRemoved Kind = "removed"
	KindEmpty   Kind = "empty"
)

// DefaultMaxLines bounds each input side of a diff. The alignment costs
// O(n·m) time and memory and runs synchronously inside a request, so
// unbounded inputs would stall the shared message-processing path.
const DefaultMaxLines = 5000

// ErrTooLarge indicates an input side exceeds the line cap.
var ErrTooLarge = errors.New("textdiff: input exceeds line limit")

// Row is one line slot in an alignment column. SourceLine is the
// 1-based line number in the originating text, 0 for empty placeholders.
type Row struct {
	Content    string
	Kind       Kind
	SourceLine int
}

// Alignment is the result of diffing two line sequences. Left and Right
// always have equal length.
type Alignment struct {
	Left         []Row
	Right        []Row
	AddedCount   int
	RemovedCount int
}

// Diff aligns original against modified with the default line cap.
func Diff(original, modified []string) (*Alignment, error) {
	return DiffMax(original, modified, DefaultMaxLines)
}

// DiffMax aligns original against modified, rejecting inputs where
// either side exceeds maxLines. A maxLines of 0 or less means no cap.
//
// When the dynamic-programming backtrack meets a tie between the up and
// left neighbor it always moves up, attributing the divergence to a
// removal. This is one of several equally minimal edit scripts; it is
// fixed so identical inputs always produce identical alignments.
func DiffMax(original, modified []string, maxLines int) (*Alignment, error) {
	if maxLines > 0 && (len(original) > maxLines || len(modified) > maxLines) {
		return nil, ErrTooLarge
	}

	common := lcs(original, modified)

	alignment := &Alignment{}
	i, j, k := 0, 0, 0
	for i < len(original) || j < len(modified) {
		switch {
		case k < len(common) && i < len(original) && j < len(modified) &&
			original[i] == common[k] && modified[j] == common[k]:
			alignment.Left = append(alignment.Left, Row{Content: original[i], Kind: KindSame, SourceLine: i + 1})
			alignment.Right = append(alignment.Right, Row{Content: modified[j], Kind: KindSame, SourceLine: j + 1})
			i++
			j++
			k++
		case i < len(original) && (k >= len(common) || original[i] != common[k]):
			alignment.Left = append(alignment.Left, Row{Content: original[i], Kind: KindRemoved, SourceLine: i + 1})
			alignment.Right = append(alignment.Right, Row{Kind: KindEmpty})
			alignment.RemovedCount++
			i++
		default:
			alignment.Left = append(alignment.Left, Row{Kind: KindEmpty})
			alignment.Right = append(alignment.Right, Row{Content: modified[j], Kind: KindAdded, SourceLine: j + 1})
			alignment.AddedCount++
			j++
		}
	}

	return alignment, nil
}

// lcs returns one longest common subsequence of a and b, computed from
// the standard O(len(a)·len(b)) dynamic-programming table. Lines are
// compared by whole-line equality.
func lcs(a, b []string) []string {
	m, n := len(a), len(b)
	if m == 0 || n == 0 {
		return nil
	}

	dp := make([][]int, m+1)
	for i := range dp {
		dp[i] = make([]int, n+1)
	}
	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			if a[i-1] == b[j-1] {
				dp[i][j] = dp[i-1][j-1] + 1
			} else if dp[i-1][j] >= dp[i][j-1] {
				dp[i][j] = dp[i-1][j]
			} else {
				dp[i][j] = dp[i][j-1]
			}
		}
	}

	// Backtrack; ties between up and left move up (removal first).
	sequence := make([]string, 0, dp[m][n])
	i, j := m, n
	for i > 0 && j > 0 {
		switch {
		case a[i-1] == b[j-1]:
			sequence = append(sequence, a[i-1])
			i--
			j--
		case dp[i-1][j] >= dp[i][j-1]:
			i--
		default:
			j--
		}
	}
	for left, right := 0, len(sequence)-1; left < right; left, right = left+1, right-1 {
		sequence[left], sequence[right] = sequence[right], sequence[left]
	}
	return sequence
}

// SplitLines splits a text body into lines for diffing. CRLF endings
// are normalized and a single trailing newline does not produce a
// phantom empty line. An empty body yields no lines.
func SplitLines(s string) []string {
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}
