// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package engine

import (
	"github.com/petar-djukic/go-patcher/pkg/types"
)

// Apply locates every hunk against the original lines and assembles the
// patched result. Hunks that cannot be located are reported and leave
// their region untouched; Apply never fails outright.
//
// When two hunks resolve to the same start the first one governs. A
// hunk whose start lands inside a region an earlier splice already
// consumed is skipped. Both cases still count as applied and are marked
// StatusShadowed in the report.
func Apply(original []string, hunks []types.Hunk) types.PatchReport {
	report := types.PatchReport{
		Total: len(hunks),
		Hunks: make([]types.HunkOutcome, len(hunks)),
	}

	trimmed := trimAll(original)
	starts := make(map[int]int, len(hunks)) // source index -> hunk index

	for i, h := range hunks {
		outcome := types.HunkOutcome{Number: i + 1, Start: -1}
		m := locate(trimmed, h)
		if !m.Found {
			outcome.Status = types.StatusNotFound
			outcome.Diagnostic = Diagnose(original, h, i+1)
			report.Hunks[i] = outcome
			continue
		}

		report.Applied++
		outcome.Start = m.Start
		outcome.Status = types.StatusApplied
		if _, taken := starts[m.Start]; taken {
			outcome.Status = types.StatusShadowed
		} else {
			starts[m.Start] = i
		}
		report.Hunks[i] = outcome
	}

	lines, spliced := assemble(original, hunks, starts)
	report.Lines = lines

	for i := range report.Hunks {
		o := &report.Hunks[i]
		if o.Status == types.StatusApplied && !spliced[i] {
			o.Status = types.StatusShadowed
		}
	}

	return report
}

// assemble walks the original once, splicing each registered hunk at its
// start. It returns the new lines and which hunks were actually spliced.
func assemble(original []string, hunks []types.Hunk, starts map[int]int) ([]string, map[int]bool) {
	out := make([]string, 0, len(original))
	spliced := make(map[int]bool, len(starts))

	for idx := 0; idx < len(original); {
		hi, ok := starts[idx]
		if !ok {
			out = append(out, original[idx])
			idx++
			continue
		}

		h := hunks[hi]
		out = append(out, h.Emitted()...)
		spliced[hi] = true

		// A located hunk has at least one Context or Remove line, so this
		// always makes progress.
		idx += h.Consumed()
	}

	return out, spliced
}
