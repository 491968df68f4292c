package transcript

// UnknownSpeaker labels segments that no diarization interval covers.
const UnknownSpeaker = "SPEAKER_UNKNOWN"

// Segment is a time-stamped piece of transcribed speech. Start and End are
// seconds from the beginning of the recording.
type Segment struct {
	Start    float64
	End      float64
	Text     string
	Language string
}

// SpeakerTurn is a diarization interval attributed to one speaker.
type SpeakerTurn struct {
	Start   float64
	End     float64
	Speaker string
}

// LabeledSegment is a transcribed segment with an assigned speaker and,
// optionally, a translation of its text.
type LabeledSegment struct {
	Start       float64
	End         float64
	Text        string
	Speaker     string
	Language    string
	Translation string
}

// Transcript is the fully assembled result for one recording.
type Transcript struct {
	SourcePath string
	Language   string
	Segments   []LabeledSegment
}

// Duration returns the end time of the last segment in seconds.
func (t Transcript) Duration() float64 {
	if len(t.Segments) == 0 {
		return 0
	}
	return t.Segments[len(t.Segments)-1].End
}

// Speakers returns the distinct speaker labels in order of first appearance.
func (t Transcript) Speakers() []string {
	seen := make(map[string]struct{}, 4)
	var speakers []string
	for _, seg := range t.Segments {
		if _, ok := seen[seg.Speaker]; ok {
			continue
		}
		seen[seg.Speaker] = struct{}{}
		speakers = append(speakers, seg.Speaker)
	}
	return speakers
}
