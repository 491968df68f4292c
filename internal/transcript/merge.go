package transcript

import "strings"

// AssignSpeakers labels each transcribed segment with the speaker whose
// diarization turn overlaps it the most. Both inputs must be sorted by start
// time and non-overlapping within themselves. The output has exactly one
// labeled segment per input segment, in the same order.
//
// Ties on overlap go to the earlier-starting turn. Segments no turn touches
// get the UnknownSpeaker sentinel instead of failing; diarization gaps are
// normal around silence and cross-talk.
func AssignSpeakers(segments []Segment, turns []SpeakerTurn) []LabeledSegment {
	labeled := make([]LabeledSegment, 0, len(segments))
	// Both sequences are time-ordered, so each segment's candidate turns
	// begin at or after the turns the previous segment already passed.
	cursor := 0
	for _, seg := range segments {
		for cursor < len(turns) && turns[cursor].End <= seg.Start {
			cursor++
		}
		labeled = append(labeled, LabeledSegment{
			Start:    seg.Start,
			End:      seg.End,
			Text:     strings.TrimSpace(seg.Text),
			Speaker:  bestSpeaker(seg, turns[cursor:]),
			Language: seg.Language,
		})
	}
	return labeled
}

func bestSpeaker(seg Segment, turns []SpeakerTurn) string {
	best := UnknownSpeaker
	bestOverlap := 0.0
	for _, turn := range turns {
		if turn.Start >= seg.End && !containsPoint(turn, seg) {
			break
		}
		// Strictly-greater keeps the earlier-starting turn on equal overlap.
		if overlap := overlapSeconds(seg, turn); overlap > bestOverlap {
			best = turn.Speaker
			bestOverlap = overlap
		}
	}
	if bestOverlap == 0 {
		// A zero-length segment carries no overlap mass; fall back to
		// point containment so it still picks up the surrounding turn.
		for _, turn := range turns {
			if containsPoint(turn, seg) {
				return turn.Speaker
			}
			if turn.Start > seg.Start {
				break
			}
		}
	}
	return best
}

func overlapSeconds(seg Segment, turn SpeakerTurn) float64 {
	start := seg.Start
	if turn.Start > start {
		start = turn.Start
	}
	end := seg.End
	if turn.End < end {
		end = turn.End
	}
	if end <= start {
		return 0
	}
	return end - start
}

func containsPoint(turn SpeakerTurn, seg Segment) bool {
	return seg.Start >= seg.End && seg.Start >= turn.Start && seg.Start < turn.End
}

// CoalesceBySpeaker merges runs of consecutive segments that share a speaker
// into single segments, joining their text. The renderer uses this so one
// uninterrupted speaker does not produce a wall of one-line paragraphs.
func CoalesceBySpeaker(segments []LabeledSegment) []LabeledSegment {
	if len(segments) == 0 {
		return nil
	}

	merged := make([]LabeledSegment, 0, len(segments))
	current := segments[0]
	for _, seg := range segments[1:] {
		if seg.Speaker == current.Speaker && seg.Language == current.Language {
			current.End = seg.End
			current.Text = joinText(current.Text, seg.Text)
			current.Translation = joinText(current.Translation, seg.Translation)
			continue
		}
		merged = append(merged, current)
		current = seg
	}
	return append(merged, current)
}

func joinText(a, b string) string {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " " + b
	}
}
