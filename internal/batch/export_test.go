package batch

// Exported for testing.
var (
	TranscriptDocument = transcriptDocument
	SubtitleDocument   = subtitleDocument
	WriteFileAtomic    = writeFileAtomic
)
