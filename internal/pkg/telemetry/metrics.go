package telemetry

// Span names used for instrumentation.
const (
	SpanEncode       = "grid.encode"
	SpanLocate       = "grid.locate"
	SpanArea         = "grid.area"
	SpanBatch        = "grid.batch"
	SpanWordsEncode  = "words.encode"
	SpanWordsDecode  = "words.decode"
	SpanWordlistLoad = "words.wordlist_load"
)
